package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sahilchouksey/campus-records/model"
	"github.com/sahilchouksey/campus-records/utils/metrics"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type EntityStoreSuite struct {
	suite.Suite
	db      *gorm.DB
	store   *EntityStore
	metrics *metrics.Metrics
	ctx     context.Context
}

func TestEntityStoreSuite(t *testing.T) {
	suite.Run(t, new(EntityStoreSuite))
}

func (s *EntityStoreSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.store = NewEntityStore(s.db, WithMetrics(s.metrics))
	s.ctx = context.Background()
}

func (s *EntityStoreSuite) createInstitute(name string) *model.Institute {
	institute, err := s.store.CreateInstitute(s.ctx, CreateInstituteInput{InstituteName: name})
	s.Require().NoError(err)
	return institute
}

func (s *EntityStoreSuite) createCourse(instituteID uint, name string) *model.Course {
	course, err := s.store.CreateCourse(s.ctx, CreateCourseInput{InstituteID: instituteID, CourseName: name})
	s.Require().NoError(err)
	return course
}

// TestInstituteCreation verifies creation, listing and name validation.
func (s *EntityStoreSuite) TestInstituteCreation() {
	s.Run("created institute is listed exactly once", func() {
		created := s.createInstitute("MIT")
		s.NotZero(created.InstituteID)

		institutes, err := s.store.ListInstitutes(s.ctx)
		s.Require().NoError(err)

		matches := 0
		for _, institute := range institutes {
			if institute.InstituteName == "MIT" {
				matches++
			}
		}
		s.Equal(1, matches)
	})

	s.Run("names are trimmed", func() {
		created := s.createInstitute("  Stanford  ")
		s.Equal("Stanford", created.InstituteName)
	})

	s.Run("empty name is a validation error", func() {
		_, err := s.store.CreateInstitute(s.ctx, CreateInstituteInput{InstituteName: "   "})
		s.Require().ErrorIs(err, ErrValidation)
		s.Contains(err.Error(), "institute_name is required")
	})

	s.Run("name over 100 characters is a validation error", func() {
		_, err := s.store.CreateInstitute(s.ctx, CreateInstituteInput{InstituteName: strings.Repeat("a", 101)})
		s.Require().ErrorIs(err, ErrValidation)
	})

	s.Run("name of exactly 100 characters is accepted", func() {
		s.createInstitute(strings.Repeat("b", 100))
	})
}

// TestInstituteNameUniqueness verifies DuplicateName on both the pre-check
// and the storage constraint path.
func (s *EntityStoreSuite) TestInstituteNameUniqueness() {
	s.Run("second create with same name fails", func() {
		s.createInstitute("X")

		_, err := s.store.CreateInstitute(s.ctx, CreateInstituteInput{InstituteName: "X"})
		s.Require().ErrorIs(err, ErrDuplicateName)
		s.Equal(KindDuplicateName, KindOf(err))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.StoreOperations.WithLabelValues("institute", "create", "duplicate_name")))
	})

	s.Run("unique index rejects a raw duplicate insert", func() {
		s.Require().NoError(s.db.Create(&model.Institute{InstituteName: "Raw"}).Error)

		err := s.db.Create(&model.Institute{InstituteName: "Raw"}).Error
		s.Require().Error(err)
		s.True(isUniqueViolation(err))

		classified := classifyWrite(entityInstitute, err, "Raw")
		s.ErrorIs(classified, ErrDuplicateName)
	})

	s.Run("renaming onto an existing name fails", func() {
		s.createInstitute("Harvard")
		yale := s.createInstitute("Yale")

		_, err := s.store.UpdateInstitute(s.ctx, yale.InstituteID, InstituteUpdate{InstituteName: model.Some("Harvard")})
		s.Require().ErrorIs(err, ErrDuplicateName)
	})
}

// TestInstituteUpdateAndDelete covers partial updates and dependency-aware deletes.
func (s *EntityStoreSuite) TestInstituteUpdateAndDelete() {
	s.Run("update renames", func() {
		institute := s.createInstitute("Old Name")

		updated, err := s.store.UpdateInstitute(s.ctx, institute.InstituteID, InstituteUpdate{InstituteName: model.Some("New Name")})
		s.Require().NoError(err)
		s.Equal("New Name", updated.InstituteName)
		s.Equal(institute.InstituteID, updated.InstituteID)
	})

	s.Run("update with no fields returns the record unchanged", func() {
		institute := s.createInstitute("Untouched")

		updated, err := s.store.UpdateInstitute(s.ctx, institute.InstituteID, InstituteUpdate{})
		s.Require().NoError(err)
		s.Equal("Untouched", updated.InstituteName)
	})

	s.Run("explicit null is rejected", func() {
		institute := s.createInstitute("Nullable")

		_, err := s.store.UpdateInstitute(s.ctx, institute.InstituteID, InstituteUpdate{InstituteName: model.Null[string]()})
		s.Require().ErrorIs(err, ErrValidation)
	})

	s.Run("update of unknown id is NotFound", func() {
		_, err := s.store.UpdateInstitute(s.ctx, 9999, InstituteUpdate{InstituteName: model.Some("Ghost")})
		s.Require().ErrorIs(err, ErrNotFound)
	})

	s.Run("delete of unknown id is NotFound", func() {
		err := s.store.DeleteInstitute(s.ctx, 9999)
		s.Require().ErrorIs(err, ErrNotFound)
	})

	s.Run("delete with dependent course is rejected", func() {
		institute := s.createInstitute("Has Courses")
		s.createCourse(institute.InstituteID, "Physics")

		err := s.store.DeleteInstitute(s.ctx, institute.InstituteID)
		s.Require().ErrorIs(err, ErrReferentialIntegrity)

		_, err = s.store.GetInstitute(s.ctx, institute.InstituteID)
		s.NoError(err)
	})

	s.Run("foreign key restricts a raw delete", func() {
		institute := s.createInstitute("Raw Delete")
		s.createCourse(institute.InstituteID, "Chemistry")

		err := s.db.Delete(&model.Institute{}, institute.InstituteID).Error
		s.Require().Error(err)
		s.True(isForeignKeyViolation(err))
	})

	s.Run("delete without dependents succeeds", func() {
		institute := s.createInstitute("Lonely")

		s.Require().NoError(s.store.DeleteInstitute(s.ctx, institute.InstituteID))

		_, err := s.store.GetInstitute(s.ctx, institute.InstituteID)
		s.ErrorIs(err, ErrNotFound)
	})
}

// TestCourseReferentialIntegrity verifies institute resolution on create and update.
func (s *EntityStoreSuite) TestCourseReferentialIntegrity() {
	s.Run("create under missing institute fails without insert", func() {
		_, err := s.store.CreateCourse(s.ctx, CreateCourseInput{InstituteID: 999, CourseName: "Orphan"})
		s.Require().ErrorIs(err, ErrReferentialIntegrity)
		s.Equal("Institute ID does not exist", err.Error())

		var count int64
		s.Require().NoError(s.db.Model(&model.Course{}).Count(&count).Error)
		s.Zero(count)
	})

	s.Run("foreign key rejects a raw orphan insert", func() {
		err := s.db.Create(&model.Course{InstituteID: 12345, CourseName: "Raw Orphan"}).Error
		s.Require().Error(err)
		s.True(isForeignKeyViolation(err))
	})

	s.Run("missing course name is a validation error", func() {
		institute := s.createInstitute("Validation U")
		_, err := s.store.CreateCourse(s.ctx, CreateCourseInput{InstituteID: institute.InstituteID})
		s.Require().ErrorIs(err, ErrValidation)
	})
}

// TestCoursePartialUpdate verifies only supplied fields change.
func (s *EntityStoreSuite) TestCoursePartialUpdate() {
	first := s.createInstitute("First")
	second := s.createInstitute("Second")
	course := s.createCourse(first.InstituteID, "Old")

	s.Run("name only leaves institute_id unchanged", func() {
		updated, err := s.store.UpdateCourse(s.ctx, course.CourseID, CourseUpdate{CourseName: model.Some("New")})
		s.Require().NoError(err)
		s.Equal("New", updated.CourseName)
		s.Equal(first.InstituteID, updated.InstituteID)
	})

	s.Run("institute move is checked", func() {
		_, err := s.store.UpdateCourse(s.ctx, course.CourseID, CourseUpdate{InstituteID: model.Some[uint](777)})
		s.Require().ErrorIs(err, ErrReferentialIntegrity)

		updated, err := s.store.UpdateCourse(s.ctx, course.CourseID, CourseUpdate{InstituteID: model.Some(second.InstituteID)})
		s.Require().NoError(err)
		s.Equal(second.InstituteID, updated.InstituteID)
		s.Equal("New", updated.CourseName)
	})

	s.Run("unknown course is NotFound", func() {
		_, err := s.store.UpdateCourse(s.ctx, 4242, CourseUpdate{CourseName: model.Some("X")})
		s.Require().ErrorIs(err, ErrNotFound)
	})
}

// TestCourseDelete verifies students block course deletion.
func (s *EntityStoreSuite) TestCourseDelete() {
	_, course, student := fixture(s.T(), s.store, "Delete U", "Delete Course", "Dana")

	err := s.store.DeleteCourse(s.ctx, course.CourseID)
	s.Require().ErrorIs(err, ErrReferentialIntegrity)

	s.Require().NoError(s.store.DeleteStudent(s.ctx, student.StudentID))
	s.Require().NoError(s.store.DeleteCourse(s.ctx, course.CourseID))

	s.ErrorIs(s.store.DeleteCourse(s.ctx, course.CourseID), ErrNotFound)
}

// TestStudentLifecycle covers creation checks, partial updates and deletes.
func (s *EntityStoreSuite) TestStudentLifecycle() {
	institute := s.createInstitute("Lifecycle U")
	course := s.createCourse(institute.InstituteID, "Biology")

	s.Run("missing course fails and persists nothing", func() {
		_, err := s.store.CreateStudent(s.ctx, CreateStudentInput{
			InstituteID: institute.InstituteID,
			CourseID:    9999,
			StudentName: "Nobody",
			JoiningDate: model.NewDate(2024, 2, 1),
		})
		s.Require().ErrorIs(err, ErrReferentialIntegrity)
		s.Equal("Course ID does not exist", err.Error())

		students, err := s.store.ListStudents(s.ctx)
		s.Require().NoError(err)
		s.Empty(students)
	})

	s.Run("missing institute fails", func() {
		_, err := s.store.CreateStudent(s.ctx, CreateStudentInput{
			InstituteID: 9999,
			CourseID:    course.CourseID,
			StudentName: "Nobody",
			JoiningDate: model.NewDate(2024, 2, 1),
		})
		s.Require().ErrorIs(err, ErrReferentialIntegrity)
		s.Equal("Institute ID does not exist", err.Error())
	})

	s.Run("missing joining date is a validation error", func() {
		_, err := s.store.CreateStudent(s.ctx, CreateStudentInput{
			InstituteID: institute.InstituteID,
			CourseID:    course.CourseID,
			StudentName: "Undated",
		})
		s.Require().ErrorIs(err, ErrValidation)
	})

	s.Run("create, update and delete", func() {
		student, err := s.store.CreateStudent(s.ctx, CreateStudentInput{
			InstituteID: institute.InstituteID,
			CourseID:    course.CourseID,
			StudentName: "Eve",
			JoiningDate: model.NewDate(2024, 3, 15),
		})
		s.Require().NoError(err)

		updated, err := s.store.UpdateStudent(s.ctx, student.StudentID, StudentUpdate{
			JoiningDate: model.Some(model.NewDate(2024, 9, 1)),
		})
		s.Require().NoError(err)
		s.Equal("2024-09-01", updated.JoiningDate.String())
		s.Equal("Eve", updated.StudentName)
		s.Equal(course.CourseID, updated.CourseID)

		_, err = s.store.UpdateStudent(s.ctx, student.StudentID, StudentUpdate{CourseID: model.Some[uint](31337)})
		s.Require().ErrorIs(err, ErrReferentialIntegrity)

		_, err = s.store.UpdateStudent(s.ctx, student.StudentID, StudentUpdate{StudentName: model.Null[string]()})
		s.Require().ErrorIs(err, ErrValidation)

		s.Require().NoError(s.store.DeleteStudent(s.ctx, student.StudentID))
		s.ErrorIs(s.store.DeleteStudent(s.ctx, student.StudentID), ErrNotFound)
	})
}

// TestStorageForeignKeys verifies the engine rejects orphans that bypass the
// pre-checks, and that the rejection classifies as referential integrity.
func (s *EntityStoreSuite) TestStorageForeignKeys() {
	institute := s.createInstitute("Constraint U")
	course := s.createCourse(institute.InstituteID, "Physics")
	joined := model.NewDate(2024, time.January, 1)

	s.Run("institute insert is unaffected by child tables", func() {
		s.Require().NoError(s.db.Create(&model.Institute{InstituteName: "Parent Only"}).Error)
	})

	s.Run("course with missing institute", func() {
		err := s.db.Create(&model.Course{InstituteID: 777, CourseName: "Orphan"}).Error
		s.Require().Error(err)

		classified := classifyWrite(entityCourse, err, "")
		s.ErrorIs(classified, ErrReferentialIntegrity)
	})

	s.Run("student with missing course", func() {
		err := s.db.Create(&model.Student{
			InstituteID: institute.InstituteID,
			CourseID:    888,
			StudentName: "No Course",
			JoiningDate: joined,
		}).Error
		s.Require().Error(err)

		classified := classifyWrite(entityStudent, err, "")
		s.ErrorIs(classified, ErrReferentialIntegrity)
	})

	s.Run("student with missing institute", func() {
		err := s.db.Create(&model.Student{
			InstituteID: 999,
			CourseID:    course.CourseID,
			StudentName: "No Institute",
			JoiningDate: joined,
		}).Error
		s.Require().Error(err)

		classified := classifyWrite(entityStudent, err, "")
		s.ErrorIs(classified, ErrReferentialIntegrity)
	})

	s.Run("course with students cannot be removed directly", func() {
		s.Require().NoError(s.db.Create(&model.Student{
			InstituteID: institute.InstituteID,
			CourseID:    course.CourseID,
			StudentName: "Enrolled",
			JoiningDate: joined,
		}).Error)

		err := s.db.Delete(&model.Course{}, course.CourseID).Error
		s.Require().Error(err)
		s.ErrorIs(classifyWrite(entityCourse, err, ""), ErrReferentialIntegrity)
	})
}

// TestStorageFailureIsInternal verifies unclassified engine errors surface as internal.
func (s *EntityStoreSuite) TestStorageFailureIsInternal() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	s.Require().NoError(sqlDB.Close())

	_, err = s.store.ListInstitutes(s.ctx)
	s.Require().ErrorIs(err, ErrInternal)
	s.Contains(err.Error(), "Failed to list institute")
}
