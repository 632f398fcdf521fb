package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sahilchouksey/campus-records/model"
	"github.com/sahilchouksey/campus-records/utils/validation"
	"gorm.io/gorm"
)

// CreateCourseInput is the payload for creating a course
type CreateCourseInput struct {
	InstituteID uint   `json:"institute_id" validate:"required"`
	CourseName  string `json:"course_name" validate:"required,max=100"`
}

// CourseUpdate lists the mutable course fields
type CourseUpdate struct {
	InstituteID model.Optional[uint]   `json:"institute_id"`
	CourseName  model.Optional[string] `json:"course_name"`
}

const msgInstituteMissing = "Institute ID does not exist"

// CreateCourse persists a course under an existing institute
func (s *EntityStore) CreateCourse(ctx context.Context, input CreateCourseInput) (*model.Course, error) {
	input.CourseName = validation.SanitizeString(input.CourseName)

	var course model.Course
	err := s.run(ctx, entityCourse, "create", true, func(tx *gorm.DB) error {
		if err := s.validateStruct(entityCourse, input); err != nil {
			return err
		}

		found, err := exists(tx, &model.Institute{}, "institute_id", input.InstituteID)
		if err != nil {
			return err
		}
		if !found {
			return referentialError(entityCourse, msgInstituteMissing, nil)
		}

		course = model.Course{InstituteID: input.InstituteID, CourseName: input.CourseName}
		if err := tx.Create(&course).Error; err != nil {
			if isForeignKeyViolation(err) {
				return referentialError(entityCourse, msgInstituteMissing, err)
			}
			return internalError(entityCourse, "Failed to create course", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// GetCourse returns one course by id
func (s *EntityStore) GetCourse(ctx context.Context, id uint) (*model.Course, error) {
	var course *model.Course
	err := s.run(ctx, entityCourse, "get", false, func(tx *gorm.DB) error {
		found, err := findCourse(tx, id)
		course = found
		return err
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

// UpdateCourse applies only the supplied fields and returns the full record
func (s *EntityStore) UpdateCourse(ctx context.Context, id uint, update CourseUpdate) (*model.Course, error) {
	var course *model.Course
	err := s.run(ctx, entityCourse, "update", true, func(tx *gorm.DB) error {
		found, err := findCourse(tx, id)
		if err != nil {
			return err
		}
		course = found

		changes := map[string]interface{}{}

		instituteID, ok, err := optionalID(entityCourse, "institute_id", update.InstituteID)
		if err != nil {
			return err
		}
		if ok && instituteID != course.InstituteID {
			found, err := exists(tx, &model.Institute{}, "institute_id", instituteID)
			if err != nil {
				return err
			}
			if !found {
				return referentialError(entityCourse, msgInstituteMissing, nil)
			}
			changes["institute_id"] = instituteID
		}

		name, ok, err := s.optionalName(entityCourse, "course_name", update.CourseName)
		if err != nil {
			return err
		}
		if ok && name != course.CourseName {
			changes["course_name"] = name
		}

		if len(changes) == 0 {
			return nil
		}

		if err := tx.Model(&model.Course{CourseID: id}).Updates(changes).Error; err != nil {
			if isForeignKeyViolation(err) {
				return referentialError(entityCourse, msgInstituteMissing, err)
			}
			return internalError(entityCourse, "Failed to update course", err)
		}

		course, err = findCourse(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

// DeleteCourse removes a course that no student references
func (s *EntityStore) DeleteCourse(ctx context.Context, id uint) error {
	return s.run(ctx, entityCourse, "delete", true, func(tx *gorm.DB) error {
		if _, err := findCourse(tx, id); err != nil {
			return err
		}

		var students int64
		if err := tx.Model(&model.Student{}).Where("course_id = ?", id).Count(&students).Error; err != nil {
			return err
		}
		if students > 0 {
			return referentialError(entityCourse,
				fmt.Sprintf("Cannot delete course %d: %d student(s) still reference it", id, students), nil)
		}

		result := tx.Delete(&model.Course{}, id)
		if result.Error != nil {
			if isForeignKeyViolation(result.Error) {
				return referentialError(entityCourse, fmt.Sprintf("Cannot delete course %d: it is still referenced", id), result.Error)
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFoundError(entityCourse, id)
		}
		return nil
	})
}

// ListCourses returns every course ordered by id
func (s *EntityStore) ListCourses(ctx context.Context) ([]model.Course, error) {
	courses := []model.Course{}
	err := s.run(ctx, entityCourse, "list", false, func(tx *gorm.DB) error {
		return tx.Order("course_id").Find(&courses).Error
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func findCourse(tx *gorm.DB, id uint) (*model.Course, error) {
	var course model.Course
	if err := tx.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError(entityCourse, id)
		}
		return nil, err
	}
	return &course, nil
}
