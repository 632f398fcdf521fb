package services

import (
	"context"
	"errors"

	"github.com/sahilchouksey/campus-records/model"
	"github.com/sahilchouksey/campus-records/utils/validation"
	"gorm.io/gorm"
)

// CreateStudentInput is the payload for enrolling a student
type CreateStudentInput struct {
	InstituteID uint       `json:"institute_id" validate:"required"`
	CourseID    uint       `json:"course_id" validate:"required"`
	StudentName string     `json:"student_name" validate:"required,max=100"`
	JoiningDate model.Date `json:"joining_date"`
}

// StudentUpdate lists the mutable student fields
type StudentUpdate struct {
	InstituteID model.Optional[uint]       `json:"institute_id"`
	CourseID    model.Optional[uint]       `json:"course_id"`
	StudentName model.Optional[string]     `json:"student_name"`
	JoiningDate model.Optional[model.Date] `json:"joining_date"`
}

const msgCourseMissing = "Course ID does not exist"

// CreateStudent enrolls a student. Both foreign keys are checked up front so
// the caller gets a descriptive error; the engine constraints still back them.
func (s *EntityStore) CreateStudent(ctx context.Context, input CreateStudentInput) (*model.Student, error) {
	input.StudentName = validation.SanitizeString(input.StudentName)

	var student model.Student
	err := s.run(ctx, entityStudent, "create", true, func(tx *gorm.DB) error {
		if err := s.validateStruct(entityStudent, input); err != nil {
			return err
		}
		if input.JoiningDate.IsZero() {
			return validationError(entityStudent, "joining_date is required")
		}

		if err := checkStudentRefs(tx, input.InstituteID, input.CourseID); err != nil {
			return err
		}

		student = model.Student{
			InstituteID: input.InstituteID,
			CourseID:    input.CourseID,
			StudentName: input.StudentName,
			JoiningDate: input.JoiningDate,
		}
		if err := tx.Create(&student).Error; err != nil {
			return classifyWrite(entityStudent, err, "")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// GetStudent returns one student by id
func (s *EntityStore) GetStudent(ctx context.Context, id uint) (*model.Student, error) {
	var student *model.Student
	err := s.run(ctx, entityStudent, "get", false, func(tx *gorm.DB) error {
		found, err := findStudent(tx, id)
		student = found
		return err
	})
	if err != nil {
		return nil, err
	}
	return student, nil
}

// UpdateStudent applies only the supplied fields and returns the full record
func (s *EntityStore) UpdateStudent(ctx context.Context, id uint, update StudentUpdate) (*model.Student, error) {
	var student *model.Student
	err := s.run(ctx, entityStudent, "update", true, func(tx *gorm.DB) error {
		found, err := findStudent(tx, id)
		if err != nil {
			return err
		}
		student = found

		changes := map[string]interface{}{}

		instituteID, ok, err := optionalID(entityStudent, "institute_id", update.InstituteID)
		if err != nil {
			return err
		}
		if ok && instituteID != student.InstituteID {
			found, err := exists(tx, &model.Institute{}, "institute_id", instituteID)
			if err != nil {
				return err
			}
			if !found {
				return referentialError(entityStudent, msgInstituteMissing, nil)
			}
			changes["institute_id"] = instituteID
		}

		courseID, ok, err := optionalID(entityStudent, "course_id", update.CourseID)
		if err != nil {
			return err
		}
		if ok && courseID != student.CourseID {
			found, err := exists(tx, &model.Course{}, "course_id", courseID)
			if err != nil {
				return err
			}
			if !found {
				return referentialError(entityStudent, msgCourseMissing, nil)
			}
			changes["course_id"] = courseID
		}

		name, ok, err := s.optionalName(entityStudent, "student_name", update.StudentName)
		if err != nil {
			return err
		}
		if ok && name != student.StudentName {
			changes["student_name"] = name
		}

		if update.JoiningDate.IsSet() {
			date, ok := update.JoiningDate.Get()
			if !ok || date.IsZero() {
				return validationError(entityStudent, "joining_date cannot be null")
			}
			if !date.Equal(student.JoiningDate.Time) {
				changes["joining_date"] = date
			}
		}

		if len(changes) == 0 {
			return nil
		}

		if err := tx.Model(&model.Student{StudentID: id}).Updates(changes).Error; err != nil {
			return classifyWrite(entityStudent, err, "")
		}

		student, err = findStudent(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return student, nil
}

// DeleteStudent removes a student; nothing references students
func (s *EntityStore) DeleteStudent(ctx context.Context, id uint) error {
	return s.run(ctx, entityStudent, "delete", true, func(tx *gorm.DB) error {
		result := tx.Delete(&model.Student{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFoundError(entityStudent, id)
		}
		return nil
	})
}

// ListStudents returns every student ordered by id
func (s *EntityStore) ListStudents(ctx context.Context) ([]model.Student, error) {
	students := []model.Student{}
	err := s.run(ctx, entityStudent, "list", false, func(tx *gorm.DB) error {
		return tx.Order("student_id").Find(&students).Error
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

func checkStudentRefs(tx *gorm.DB, instituteID, courseID uint) error {
	found, err := exists(tx, &model.Institute{}, "institute_id", instituteID)
	if err != nil {
		return err
	}
	if !found {
		return referentialError(entityStudent, msgInstituteMissing, nil)
	}

	found, err = exists(tx, &model.Course{}, "course_id", courseID)
	if err != nil {
		return err
	}
	if !found {
		return referentialError(entityStudent, msgCourseMissing, nil)
	}
	return nil
}

func findStudent(tx *gorm.DB, id uint) (*model.Student, error) {
	var student model.Student
	if err := tx.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError(entityStudent, id)
		}
		return nil, err
	}
	return &student, nil
}
