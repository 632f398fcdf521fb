package services

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/campus-records/model"
	"gorm.io/gorm"
)

// likeEscaper makes the query a literal substring inside LIKE
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const searchPredicate = `LOWER(institute.institute_name) LIKE ? ESCAPE '\' ` +
	`OR LOWER(course.course_name) LIKE ? ESCAPE '\' ` +
	`OR LOWER(student.student_name) LIKE ? ESCAPE '\'`

const searchColumns = "institute.institute_name, course.course_name, student.student_name, student.joining_date"

// Search returns every enrolled student whose institute, course or own name
// contains query, case-insensitively. Students whose course or institute no
// longer exists drop out through the inner joins. Order is unspecified.
func (s *EntityStore) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		err := validationError(entitySearch, "query is required")
		s.metrics.ObserveStore(entitySearch, "search", string(KindValidation), time.Now())
		return nil, err
	}

	cached, generation, ok := s.cachedSearch(ctx, query)
	if ok {
		return cached, nil
	}

	results := []model.SearchResult{}
	err := s.run(ctx, entitySearch, "search", false, func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "sqlite" {
			return searchFolded(tx, query, &results)
		}
		pattern := "%" + strings.ToLower(likeEscaper.Replace(query)) + "%"
		return joinedStudents(tx).
			Select(searchColumns).
			Where(searchPredicate, pattern, pattern, pattern).
			Scan(&results).Error
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil && generation != "" {
		if err := s.cache.SetSearch(ctx, generation, query, results); err != nil {
			log.Warnf("[STORE] search cache write failed: %v", err)
		}
	}
	return results, nil
}

// searchFolded matches in Go. SQLite's LOWER folds ASCII only, so a
// predicate there would miss names such as "École".
func searchFolded(tx *gorm.DB, query string, results *[]model.SearchResult) error {
	var rows []model.SearchResult
	if err := joinedStudents(tx).Select(searchColumns).Scan(&rows).Error; err != nil {
		return err
	}
	needle := strings.ToLower(query)
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.InstituteName), needle) ||
			strings.Contains(strings.ToLower(row.CourseName), needle) ||
			strings.Contains(strings.ToLower(row.StudentName), needle) {
			*results = append(*results, row)
		}
	}
	return nil
}

// StudentCard loads the flat record printed on a student's identity card
func (s *EntityStore) StudentCard(ctx context.Context, studentID uint) (*model.StudentCard, error) {
	var card model.StudentCard
	err := s.run(ctx, entityStudent, "card", false, func(tx *gorm.DB) error {
		result := joinedStudents(tx).
			Select("student.student_id, student.student_name, course.course_name, institute.institute_name, student.joining_date").
			Where("student.student_id = ?", studentID).
			Limit(1).
			Scan(&card)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFoundError(entityStudent, studentID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func joinedStudents(tx *gorm.DB) *gorm.DB {
	return tx.Table("student").
		Joins("JOIN course ON student.course_id = course.course_id").
		Joins("JOIN institute ON student.institute_id = institute.institute_id")
}

// cachedSearch returns a hit, or the generation a fresh result must be
// stored under. An empty generation means the result is not cached.
func (s *EntityStore) cachedSearch(ctx context.Context, query string) ([]model.SearchResult, string, bool) {
	if s.cache == nil {
		return nil, "", false
	}
	results, generation, ok, err := s.cache.GetSearch(ctx, query)
	switch {
	case err != nil:
		log.Warnf("[STORE] search cache read failed: %v", err)
		s.metrics.ObserveSearchCache("error")
		return nil, "", false
	case ok:
		s.metrics.ObserveSearchCache("hit")
		return results, generation, true
	default:
		s.metrics.ObserveSearchCache("miss")
		return nil, generation, false
	}
}
