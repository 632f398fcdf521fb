package router

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sahilchouksey/campus-records/database"
	"github.com/sahilchouksey/campus-records/services"
	"github.com/sahilchouksey/campus-records/services/blob"
	"github.com/sahilchouksey/campus-records/utils/metrics"
	"github.com/sahilchouksey/campus-records/utils/middleware"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   int             `json:"count"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

type RouterSuite struct {
	suite.Suite
	app      *fiber.App
	photoDir string
	cardDir  string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	t := s.T()
	dir := t.TempDir()

	store, err := database.Open(sqlite.Open(database.SQLiteDSN(filepath.Join(dir, "campus.db"))), logger.Discard)
	s.Require().NoError(err)
	s.Require().NoError(store.Init())
	t.Cleanup(func() { _ = store.Close() })

	s.photoDir = filepath.Join(dir, "photos")
	s.cardDir = filepath.Join(dir, "cards")
	blobs, err := blob.NewLocalStore(s.photoDir)
	s.Require().NoError(err)

	registry := prometheus.NewRegistry()
	appMetrics := metrics.New(registry)
	entityStore := services.NewEntityStore(store.GetDB(), services.WithMetrics(appMetrics))

	s.app = fiber.New()
	SetupRoutes(s.app, store, Dependencies{
		Store:    entityStore,
		Photos:   services.NewPhotoService(entityStore, blobs),
		IDCards:  services.NewIDCardService(entityStore, nil, s.cardDir),
		Metrics:  appMetrics,
		Gatherer: registry,
		Security: middleware.SecurityConfig{AllowedOrigins: "http://localhost:3000"},
	})
}

func (s *RouterSuite) do(method, path string, body interface{}) (*http.Response, envelope) {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			s.Require().NoError(err)
			reader = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req)
}

func (s *RouterSuite) send(req *http.Request) (*http.Response, envelope) {
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	_ = resp.Body.Close()

	var env envelope
	if len(raw) > 0 && bytes.HasPrefix(raw, []byte("{")) {
		s.Require().NoError(json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func (s *RouterSuite) seed() (instituteID, courseID, studentID uint) {
	resp, env := s.do(http.MethodPost, "/api/v1/institutes", map[string]interface{}{"institute_name": "MIT"})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var institute struct {
		InstituteID uint `json:"institute_id"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &institute))

	resp, env = s.do(http.MethodPost, "/api/v1/courses", map[string]interface{}{"institute_id": institute.InstituteID, "course_name": "CS"})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var course struct {
		CourseID uint `json:"course_id"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &course))

	resp, env = s.do(http.MethodPost, "/api/v1/students", map[string]interface{}{
		"institute_id": institute.InstituteID,
		"course_id":    course.CourseID,
		"student_name": "Alice",
		"joining_date": "2024-01-01",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var student struct {
		StudentID uint `json:"student_id"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &student))

	return institute.InstituteID, course.CourseID, student.StudentID
}

func (s *RouterSuite) TestPing() {
	for _, path := range []string{"/ping", "/api/v1/ping"} {
		resp, _ := s.do(http.MethodGet, path, nil)
		s.Equal(http.StatusOK, resp.StatusCode)
	}
}

func (s *RouterSuite) TestInstituteEndpoints() {
	resp, env := s.do(http.MethodGet, "/api/v1/institutes", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`[]`, string(env.Data))

	resp, env = s.do(http.MethodPost, "/api/v1/institutes", map[string]interface{}{"institute_name": "MIT"})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	s.True(env.Success)

	resp, env = s.do(http.MethodPost, "/api/v1/institutes", map[string]interface{}{"institute_name": "MIT"})
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Require().NotNil(env.Error)
	s.Equal("DUPLICATE_NAME", env.Error.Code)
	s.Equal(`Institute with name "MIT" already exists`, env.Error.Message)

	resp, env = s.do(http.MethodPost, "/api/v1/institutes", map[string]interface{}{"institute_name": ""})
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Equal("VALIDATION_ERROR", env.Error.Code)

	resp, _ = s.do(http.MethodPost, "/api/v1/institutes", `{"institute_name":`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, env = s.do(http.MethodPatch, "/api/v1/institutes/1", map[string]interface{}{"institute_name": "Massachusetts"})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(env.Data), `"institute_name":"Massachusetts"`)

	resp, env = s.do(http.MethodGet, "/api/v1/institutes/999", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("Institute 999 not found", env.Error.Message)

	resp, _ = s.do(http.MethodGet, "/api/v1/institutes/abc", nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(http.MethodDelete, "/api/v1/institutes/1", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = s.do(http.MethodDelete, "/api/v1/institutes/1", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *RouterSuite) TestReferentialErrors() {
	instituteID, courseID, _ := s.seed()

	resp, env := s.do(http.MethodPost, "/api/v1/courses", map[string]interface{}{"institute_id": 999, "course_name": "Ghost"})
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal("REFERENTIAL_INTEGRITY", env.Error.Code)
	s.Equal("Institute ID does not exist", env.Error.Message)

	resp, env = s.do(http.MethodPost, "/api/v1/students", map[string]interface{}{
		"institute_id": instituteID,
		"course_id":    999,
		"student_name": "Bob",
		"joining_date": "2024-01-01",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal("Course ID does not exist", env.Error.Message)

	resp, _ = s.do(http.MethodDelete, "/api/v1/institutes/1", nil)
	s.Equal(http.StatusConflict, resp.StatusCode)

	resp, env = s.do(http.MethodPut, "/api/v1/courses/1", map[string]interface{}{"course_name": "Computer Science"})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(env.Data), `"institute_id":1`)
	s.Equal(uint(1), courseID)
}

func (s *RouterSuite) TestStudentDateValidation() {
	instituteID, courseID, _ := s.seed()

	resp, _ := s.do(http.MethodPost, "/api/v1/students", map[string]interface{}{
		"institute_id": instituteID,
		"course_id":    courseID,
		"student_name": "Bob",
		"joining_date": "01/02/2024",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, env := s.do(http.MethodPatch, "/api/v1/students/1", map[string]interface{}{"student_name": nil})
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Contains(env.Error.Details, "student_name cannot be null")
}

func (s *RouterSuite) TestSearch() {
	s.seed()

	resp, env := s.do(http.MethodGet, "/api/v1/search?query=mit", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(1, env.Count)
	s.JSONEq(`[{"institute_name":"MIT","course_name":"CS","student_name":"Alice","joining_date":"2024-01-01"}]`, string(env.Data))

	resp, env = s.do(http.MethodGet, "/api/v1/search?query=zzz", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`[]`, string(env.Data))

	resp, env = s.do(http.MethodGet, "/api/v1/search", nil)
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Equal("query is required", env.Error.Details)
}

func (s *RouterSuite) TestPhotoUpload() {
	_, _, studentID := s.seed()

	upload := func(filename string, content []byte) (*http.Response, envelope) {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("file", filename)
		s.Require().NoError(err)
		_, err = part.Write(content)
		s.Require().NoError(err)
		s.Require().NoError(writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/students/1/photo", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return s.send(req)
	}

	resp, env := upload("face.jpg", []byte("jpeg bytes"))
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	s.Contains(env.Message, "File saved at")
	s.FileExists(filepath.Join(s.photoDir, "photos", "1_face.jpg"))
	s.Equal(uint(1), studentID)

	resp, env = upload("notes.txt", []byte("text"))
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Contains(env.Error.Details, "Only jpg, png and pdf files are allowed")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/1/photo", nil)
	resp, _ = s.send(req)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *RouterSuite) TestIDCardDownload() {
	s.seed()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/1/id-card", nil)
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/pdf", resp.Header.Get("Content-Type"))
	s.Contains(resp.Header.Get("Content-Disposition"), `filename="id_card_1.pdf"`)

	content, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.True(bytes.HasPrefix(content, []byte("%PDF-")))
	s.FileExists(filepath.Join(s.cardDir, "id_card_1.pdf"))

	resp2, env := s.do(http.MethodGet, "/api/v1/students/42/id-card", nil)
	s.Equal(http.StatusNotFound, resp2.StatusCode)
	s.Equal("Student 42 not found", env.Error.Message)
}

func (s *RouterSuite) TestMetricsAndUnknownRoute() {
	s.do(http.MethodGet, "/api/v1/institutes", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(body), "campus_http_requests_total")
	s.Contains(string(body), "campus_store_operations_total")

	notFound, env := s.do(http.MethodGet, "/api/v2/nothing", nil)
	s.Equal(http.StatusNotFound, notFound.StatusCode)
	s.Equal("NOT_FOUND", env.Error.Code)
}
