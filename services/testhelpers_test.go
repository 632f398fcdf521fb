package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sahilchouksey/campus-records/database"
	"github.com/sahilchouksey/campus-records/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a migrated sqlite database in a temp dir
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "campus.db")
	store, err := database.Open(sqlite.Open(database.SQLiteDSN(path)), logger.Discard)
	require.NoError(t, err)
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })

	return store.GetDB()
}

// fixture creates an institute, a course under it and a student in both
func fixture(t *testing.T, s *EntityStore, instituteName, courseName, studentName string) (*model.Institute, *model.Course, *model.Student) {
	t.Helper()
	ctx := context.Background()

	institute, err := s.CreateInstitute(ctx, CreateInstituteInput{InstituteName: instituteName})
	require.NoError(t, err)

	course, err := s.CreateCourse(ctx, CreateCourseInput{InstituteID: institute.InstituteID, CourseName: courseName})
	require.NoError(t, err)

	student, err := s.CreateStudent(ctx, CreateStudentInput{
		InstituteID: institute.InstituteID,
		CourseID:    course.CourseID,
		StudentName: studentName,
		JoiningDate: model.NewDate(2024, 1, 1),
	})
	require.NoError(t, err)

	return institute, course, student
}
