package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/campus-records/services/blob"
	"github.com/sahilchouksey/campus-records/utils/pdfvalidation"
)

// allowedPhotoExtensions are the accepted upload types
var allowedPhotoExtensions = map[string]bool{
	"jpg": true,
	"png": true,
	"pdf": true,
}

// MaxPhotoBytes bounds a single upload
const MaxPhotoBytes = 10 * 1024 * 1024

// PhotoUpload describes where an uploaded photo was stored
type PhotoUpload struct {
	StudentID uint   `json:"student_id"`
	Key       string `json:"key"`
	Location  string `json:"location"`
	Info      string `json:"info"`
}

// PhotoService stores student photos in a blob store
type PhotoService struct {
	store *EntityStore
	blobs blob.Store
}

// NewPhotoService creates a new photo service
func NewPhotoService(store *EntityStore, blobs blob.Store) *PhotoService {
	return &PhotoService{store: store, blobs: blobs}
}

// PhotoKey is the blob key of a student's upload
func PhotoKey(studentID uint, filename string) string {
	return fmt.Sprintf("photos/%d_%s", studentID, filename)
}

// Upload validates and stores a photo for an existing student
func (s *PhotoService) Upload(ctx context.Context, studentID uint, filename string, data io.Reader) (*PhotoUpload, error) {
	filename = filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if filename == "." || filename == "/" || filename == "" {
		return nil, validationError(entityStudent, "file name is required")
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if !allowedPhotoExtensions[ext] {
		return nil, validationError(entityStudent, "Only jpg, png and pdf files are allowed")
	}

	if _, err := s.store.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(io.LimitReader(data, MaxPhotoBytes+1))
	if err != nil {
		return nil, internalError(entityStudent, "Failed to read upload", err)
	}
	if len(content) > MaxPhotoBytes {
		return nil, validationError(entityStudent, fmt.Sprintf("File exceeds %d bytes", MaxPhotoBytes))
	}
	if len(content) == 0 {
		return nil, validationError(entityStudent, "File is empty")
	}

	if ext == "pdf" {
		if result := pdfvalidation.ValidatePDFBytes(content, pdfvalidation.PhotoLimits); !result.Valid {
			return nil, validationError(entityStudent, result.Error)
		}
	}

	key := PhotoKey(studentID, filename)
	location, err := s.blobs.Put(ctx, key, bytes.NewReader(content), blob.ContentType(filename))
	if errors.Is(err, blob.ErrInvalidKey) {
		return nil, validationError(entityStudent, "Invalid file name")
	}
	if err != nil {
		return nil, internalError(entityStudent, "Failed to store photo", err)
	}

	// the student may have been deleted while the file was being written
	if _, err := s.store.GetStudent(ctx, studentID); err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			log.Warnf("Failed to remove orphaned photo %s: %v", key, delErr)
		}
		return nil, err
	}

	log.Infof("Stored photo for student %d at %s", studentID, location)
	return &PhotoUpload{
		StudentID: studentID,
		Key:       key,
		Location:  location,
		Info:      "File saved at " + location,
	}, nil
}
