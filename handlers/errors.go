package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-records/services"
	"github.com/sahilchouksey/campus-records/utils/response"
)

// StoreError writes the response for an error returned by the services layer
func StoreError(c *fiber.Ctx, err error) error {
	var storeErr *services.StoreError
	if !errors.As(err, &storeErr) {
		return response.ErrorWithDetails(c, fiber.StatusInternalServerError,
			"Internal server error", "INTERNAL_ERROR", err.Error())
	}

	switch storeErr.Kind {
	case services.KindValidation:
		return response.ValidationError(c, storeErr)
	case services.KindNotFound:
		return response.NotFound(c, storeErr.Message)
	case services.KindDuplicateName:
		return response.Error(c, fiber.StatusConflict, storeErr.Message, "DUPLICATE_NAME")
	case services.KindReferentialIntegrity:
		return response.Error(c, fiber.StatusConflict, storeErr.Message, "REFERENTIAL_INTEGRITY")
	default:
		return response.ErrorWithDetails(c, fiber.StatusInternalServerError,
			storeErr.Message, "INTERNAL_ERROR", storeErr.Error())
	}
}

// ParseID reads a positive integer path parameter
func ParseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name + ": must be a positive integer")
	}
	return uint(id), nil
}

// InvalidBody answers a request whose body could not be decoded
func InvalidBody(c *fiber.Ctx, err error) error {
	return response.ErrorWithDetails(c, fiber.StatusBadRequest,
		"Invalid request body", "BAD_REQUEST", err.Error())
}
