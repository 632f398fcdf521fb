package student

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-records/handlers"
	"github.com/sahilchouksey/campus-records/services"
	"github.com/sahilchouksey/campus-records/utils/response"
)

// StudentHandler handles student-related requests, including photo upload
// and identity card download
type StudentHandler struct {
	store   *services.EntityStore
	photos  *services.PhotoService
	idCards *services.IDCardService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(store *services.EntityStore, photos *services.PhotoService, idCards *services.IDCardService) *StudentHandler {
	return &StudentHandler{
		store:   store,
		photos:  photos,
		idCards: idCards,
	}
}

// ListStudents handles GET /api/v1/students
func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	students, err := h.store.ListStudents(c.UserContext())
	if err != nil {
		return handlers.StoreError(c, err)
	}
	return response.List(c, students, len(students))
}

// GetStudent handles GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	student, err := h.store.GetStudent(c.UserContext(), id)
	if err != nil {
		return handlers.StoreError(c, err)
	}
	return response.Success(c, student)
}

// CreateStudent handles POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	var req services.CreateStudentInput
	if err := c.BodyParser(&req); err != nil {
		return handlers.InvalidBody(c, err)
	}

	student, err := h.store.CreateStudent(c.UserContext(), req)
	if err != nil {
		return handlers.StoreError(c, err)
	}
	return response.Created(c, student)
}

// UpdateStudent handles PUT and PATCH /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *fiber.Ctx) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req services.StudentUpdate
	if err := c.BodyParser(&req); err != nil {
		return handlers.InvalidBody(c, err)
	}

	student, err := h.store.UpdateStudent(c.UserContext(), id, req)
	if err != nil {
		return handlers.StoreError(c, err)
	}
	return response.SuccessWithMessage(c, "Student updated successfully", student)
}

// DeleteStudent handles DELETE /api/v1/students/:id
func (h *StudentHandler) DeleteStudent(c *fiber.Ctx) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.store.DeleteStudent(c.UserContext(), id); err != nil {
		return handlers.StoreError(c, err)
	}
	return response.SuccessWithMessage(c, "Student deleted successfully", nil)
}

// UploadPhoto handles POST /api/v1/students/:id/photo (multipart field "file")
func (h *StudentHandler) UploadPhoto(c *fiber.Ctx) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "File is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	upload, err := h.photos.Upload(c.UserContext(), id, fileHeader.Filename, file)
	if err != nil {
		return handlers.StoreError(c, err)
	}
	return response.CreatedWithMessage(c, upload.Info, upload)
}

// DownloadIDCard handles GET /api/v1/students/:id/id-card
func (h *StudentHandler) DownloadIDCard(c *fiber.Ctx) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	card, err := h.idCards.Generate(c.UserContext(), id)
	if err != nil {
		return handlers.StoreError(c, err)
	}

	c.Attachment(card.FileName)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Status(fiber.StatusOK).Send(card.Content)
}
