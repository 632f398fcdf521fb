package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/campus-records/model"
)

// CardRenderer turns a student card record into a document
type CardRenderer interface {
	Render(card model.StudentCard) ([]byte, error)
}

// FPDFRenderer renders identity cards as a one page A4 PDF
type FPDFRenderer struct{}

// Render lays out the four card lines in Arial 12
func (FPDFRenderer) Render(card model.StudentCard) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("ID Card %d", card.StudentID), true)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	lines := []string{
		"Student Name: " + card.StudentName,
		"Course Name: " + card.CourseName,
		"Institution Name: " + card.InstituteName,
		"Joining Date: " + card.JoiningDate.String(),
	}
	for _, line := range lines {
		pdf.CellFormat(200, 10, tr(line), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render id card: %w", err)
	}
	return buf.Bytes(), nil
}

// IDCard is a generated identity card document
type IDCard struct {
	StudentID uint
	FileName  string
	Path      string
	Content   []byte
}

// IDCardService generates identity cards and keeps the latest copy on disk
type IDCardService struct {
	store    *EntityStore
	renderer CardRenderer
	dir      string
}

// NewIDCardService creates a new ID card service writing into dir
func NewIDCardService(store *EntityStore, renderer CardRenderer, dir string) *IDCardService {
	if renderer == nil {
		renderer = FPDFRenderer{}
	}
	return &IDCardService{store: store, renderer: renderer, dir: dir}
}

// CardFileName is the file name of a student's card
func CardFileName(studentID uint) string {
	return fmt.Sprintf("id_card_%d.pdf", studentID)
}

// Generate renders the card for studentID and writes it to the card directory
func (s *IDCardService) Generate(ctx context.Context, studentID uint) (*IDCard, error) {
	card, err := s.store.StudentCard(ctx, studentID)
	if err != nil {
		return nil, err
	}

	content, err := s.renderer.Render(*card)
	if err != nil {
		return nil, internalError(entityStudent, "Failed to render ID card", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, internalError(entityStudent, "Failed to prepare ID card directory", err)
	}
	name := CardFileName(studentID)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, internalError(entityStudent, "Failed to write ID card", err)
	}

	log.Infof("Generated ID card for student %d at %s", studentID, path)
	return &IDCard{StudentID: studentID, FileName: name, Path: path, Content: content}, nil
}
