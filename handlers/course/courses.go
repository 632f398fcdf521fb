package course

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-records/handlers"
	"github.com/sahilchouksey/campus-records/services"
	"github.com/sahilchouksey/campus-records/utils/response"
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	store *services.EntityStore
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(store *services.EntityStore) *CourseHandler {
	return &CourseHandler{store: store}
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.store.ListCourses(c.UserContext())
	if err != nil {
		return handlers.StoreError(c, err)
	}
	return response.List(c, courses, len(courses))
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	course, err := h.store.GetCourse(c.UserContext(), id)
	if err != nil {
		return handlers.StoreError(c, err)
	}
	return response.Success(c, course)
}

// CreateCourse handles POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req services.CreateCourseInput
	if err := c.BodyParser(&req); err != nil {
		return handlers.InvalidBody(c, err)
	}

	course, err := h.store.CreateCourse(c.UserContext(), req)
	if err != nil {
		return handlers.StoreError(c, err)
	}
	return response.Created(c, course)
}

// UpdateCourse handles PUT and PATCH /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req services.CourseUpdate
	if err := c.BodyParser(&req); err != nil {
		return handlers.InvalidBody(c, err)
	}

	course, err := h.store.UpdateCourse(c.UserContext(), id, req)
	if err != nil {
		return handlers.StoreError(c, err)
	}
	return response.SuccessWithMessage(c, "Course updated successfully", course)
}

// DeleteCourse handles DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.store.DeleteCourse(c.UserContext(), id); err != nil {
		return handlers.StoreError(c, err)
	}
	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}
