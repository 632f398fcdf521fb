package institute

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-records/handlers"
	"github.com/sahilchouksey/campus-records/services"
	"github.com/sahilchouksey/campus-records/utils/response"
)

// InstituteHandler handles institute-related requests
type InstituteHandler struct {
	store *services.EntityStore
}

// NewInstituteHandler creates a new institute handler
func NewInstituteHandler(store *services.EntityStore) *InstituteHandler {
	return &InstituteHandler{store: store}
}

// ListInstitutes handles GET /api/v1/institutes
func (h *InstituteHandler) ListInstitutes(c *fiber.Ctx) error {
	institutes, err := h.store.ListInstitutes(c.UserContext())
	if err != nil {
		return handlers.StoreError(c, err)
	}
	return response.List(c, institutes, len(institutes))
}

// GetInstitute handles GET /api/v1/institutes/:id
func (h *InstituteHandler) GetInstitute(c *fiber.Ctx) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	institute, err := h.store.GetInstitute(c.UserContext(), id)
	if err != nil {
		return handlers.StoreError(c, err)
	}
	return response.Success(c, institute)
}

// CreateInstitute handles POST /api/v1/institutes
func (h *InstituteHandler) CreateInstitute(c *fiber.Ctx) error {
	var req services.CreateInstituteInput
	if err := c.BodyParser(&req); err != nil {
		return handlers.InvalidBody(c, err)
	}

	institute, err := h.store.CreateInstitute(c.UserContext(), req)
	if err != nil {
		return handlers.StoreError(c, err)
	}
	return response.Created(c, institute)
}

// UpdateInstitute handles PUT and PATCH /api/v1/institutes/:id
func (h *InstituteHandler) UpdateInstitute(c *fiber.Ctx) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req services.InstituteUpdate
	if err := c.BodyParser(&req); err != nil {
		return handlers.InvalidBody(c, err)
	}

	institute, err := h.store.UpdateInstitute(c.UserContext(), id, req)
	if err != nil {
		return handlers.StoreError(c, err)
	}
	return response.SuccessWithMessage(c, "Institute updated successfully", institute)
}

// DeleteInstitute handles DELETE /api/v1/institutes/:id
func (h *InstituteHandler) DeleteInstitute(c *fiber.Ctx) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.store.DeleteInstitute(c.UserContext(), id); err != nil {
		return handlers.StoreError(c, err)
	}
	return response.SuccessWithMessage(c, "Institute deleted successfully", nil)
}
