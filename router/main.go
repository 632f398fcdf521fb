package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sahilchouksey/campus-records/database"
	"github.com/sahilchouksey/campus-records/handlers"
	course_handlers "github.com/sahilchouksey/campus-records/handlers/course"
	institute_handlers "github.com/sahilchouksey/campus-records/handlers/institute"
	search_handlers "github.com/sahilchouksey/campus-records/handlers/search"
	student_handlers "github.com/sahilchouksey/campus-records/handlers/student"
	"github.com/sahilchouksey/campus-records/services"
	"github.com/sahilchouksey/campus-records/utils"
	"github.com/sahilchouksey/campus-records/utils/metrics"
	"github.com/sahilchouksey/campus-records/utils/middleware"
)

// Dependencies are the services the routes are served from
type Dependencies struct {
	Store    *services.EntityStore
	Photos   *services.PhotoService
	IDCards  *services.IDCardService
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Security middleware.SecurityConfig
}

func SetupRoutes(app *fiber.App, store database.Storage, deps Dependencies) {
	instituteHandler := institute_handlers.NewInstituteHandler(deps.Store)
	courseHandler := course_handlers.NewCourseHandler(deps.Store)
	studentHandler := student_handlers.NewStudentHandler(deps.Store, deps.Photos, deps.IDCards)
	searchHandler := search_handlers.NewSearchHandler(deps.Store)

	// Apply security middleware
	middleware.SetupSecurity(app, deps.Security)
	app.Use(middleware.Metrics(deps.Metrics))

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// API v1 group
	api := app.Group("/api/v1")
	api.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// Institutes routes
	institutes := api.Group("/institutes")
	institutes.Get("/", instituteHandler.ListInstitutes)
	institutes.Post("/", instituteHandler.CreateInstitute)
	institutes.Get("/:id", instituteHandler.GetInstitute)
	institutes.Put("/:id", instituteHandler.UpdateInstitute)
	institutes.Patch("/:id", instituteHandler.UpdateInstitute)
	institutes.Delete("/:id", instituteHandler.DeleteInstitute)

	// Courses routes
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.ListCourses)
	courses.Post("/", courseHandler.CreateCourse)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Put("/:id", courseHandler.UpdateCourse)
	courses.Patch("/:id", courseHandler.UpdateCourse)
	courses.Delete("/:id", courseHandler.DeleteCourse)

	// Students routes
	students := api.Group("/students")
	students.Get("/", studentHandler.ListStudents)
	students.Post("/", studentHandler.CreateStudent)
	students.Get("/:id", studentHandler.GetStudent)
	students.Put("/:id", studentHandler.UpdateStudent)
	students.Patch("/:id", studentHandler.UpdateStudent)
	students.Delete("/:id", studentHandler.DeleteStudent)
	students.Post("/:id/photo", studentHandler.UploadPhoto)
	students.Get("/:id/id-card", studentHandler.DownloadIDCard)

	// Cross-entity search
	api.Get("/search", searchHandler.Search)

	// 404 for anything else
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    "NOT_FOUND",
				"message": "Route not found",
			},
		})
	})
}
