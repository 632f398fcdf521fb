package search

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-records/handlers"
	"github.com/sahilchouksey/campus-records/services"
	"github.com/sahilchouksey/campus-records/utils/response"
)

// SearchHandler serves the cross-entity search
type SearchHandler struct {
	store *services.EntityStore
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(store *services.EntityStore) *SearchHandler {
	return &SearchHandler{store: store}
}

// Search handles GET /api/v1/search?query=
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	results, err := h.store.Search(c.UserContext(), c.Query("query"))
	if err != nil {
		return handlers.StoreError(c, err)
	}
	return response.List(c, results, len(results))
}
