package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sahilchouksey/campus-records/model"
	"github.com/sahilchouksey/campus-records/utils/validation"
	"gorm.io/gorm"
)

// CreateInstituteInput is the payload for creating an institute
type CreateInstituteInput struct {
	InstituteName string `json:"institute_name" validate:"required,max=100"`
}

// InstituteUpdate lists the mutable institute fields
type InstituteUpdate struct {
	InstituteName model.Optional[string] `json:"institute_name"`
}

// CreateInstitute persists a new institute with a unique name
func (s *EntityStore) CreateInstitute(ctx context.Context, input CreateInstituteInput) (*model.Institute, error) {
	input.InstituteName = validation.SanitizeString(input.InstituteName)

	var institute model.Institute
	err := s.run(ctx, entityInstitute, "create", true, func(tx *gorm.DB) error {
		if err := s.validateStruct(entityInstitute, input); err != nil {
			return err
		}

		// Fast path only; the unique index decides races
		taken, err := instituteNameTaken(tx, input.InstituteName, 0)
		if err != nil {
			return err
		}
		if taken {
			return duplicateNameError(input.InstituteName, nil)
		}

		institute = model.Institute{InstituteName: input.InstituteName}
		if err := tx.Create(&institute).Error; err != nil {
			return classifyWrite(entityInstitute, err, input.InstituteName)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &institute, nil
}

// GetInstitute returns one institute by id
func (s *EntityStore) GetInstitute(ctx context.Context, id uint) (*model.Institute, error) {
	var institute *model.Institute
	err := s.run(ctx, entityInstitute, "get", false, func(tx *gorm.DB) error {
		found, err := findInstitute(tx, id)
		institute = found
		return err
	})
	if err != nil {
		return nil, err
	}
	return institute, nil
}

// UpdateInstitute applies only the supplied fields and returns the full record
func (s *EntityStore) UpdateInstitute(ctx context.Context, id uint, update InstituteUpdate) (*model.Institute, error) {
	var institute *model.Institute
	err := s.run(ctx, entityInstitute, "update", true, func(tx *gorm.DB) error {
		found, err := findInstitute(tx, id)
		if err != nil {
			return err
		}
		institute = found

		name, ok, err := s.optionalName(entityInstitute, "institute_name", update.InstituteName)
		if err != nil {
			return err
		}
		if !ok || name == institute.InstituteName {
			return nil
		}

		taken, err := instituteNameTaken(tx, name, id)
		if err != nil {
			return err
		}
		if taken {
			return duplicateNameError(name, nil)
		}

		if err := tx.Model(&model.Institute{InstituteID: id}).Updates(map[string]interface{}{"institute_name": name}).Error; err != nil {
			return classifyWrite(entityInstitute, err, name)
		}

		institute, err = findInstitute(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return institute, nil
}

// DeleteInstitute removes an institute that no course or student references
func (s *EntityStore) DeleteInstitute(ctx context.Context, id uint) error {
	return s.run(ctx, entityInstitute, "delete", true, func(tx *gorm.DB) error {
		if _, err := findInstitute(tx, id); err != nil {
			return err
		}

		var courses, students int64
		if err := tx.Model(&model.Course{}).Where("institute_id = ?", id).Count(&courses).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Student{}).Where("institute_id = ?", id).Count(&students).Error; err != nil {
			return err
		}
		if courses > 0 || students > 0 {
			return referentialError(entityInstitute,
				fmt.Sprintf("Cannot delete institute %d: %d course(s) and %d student(s) still reference it", id, courses, students), nil)
		}

		result := tx.Delete(&model.Institute{}, id)
		if result.Error != nil {
			if isForeignKeyViolation(result.Error) {
				return referentialError(entityInstitute, fmt.Sprintf("Cannot delete institute %d: it is still referenced", id), result.Error)
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFoundError(entityInstitute, id)
		}
		return nil
	})
}

// ListInstitutes returns every institute ordered by id
func (s *EntityStore) ListInstitutes(ctx context.Context) ([]model.Institute, error) {
	institutes := []model.Institute{}
	err := s.run(ctx, entityInstitute, "list", false, func(tx *gorm.DB) error {
		return tx.Order("institute_id").Find(&institutes).Error
	})
	if err != nil {
		return nil, err
	}
	return institutes, nil
}

func findInstitute(tx *gorm.DB, id uint) (*model.Institute, error) {
	var institute model.Institute
	if err := tx.First(&institute, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError(entityInstitute, id)
		}
		return nil, err
	}
	return &institute, nil
}

func instituteNameTaken(tx *gorm.DB, name string, excludeID uint) (bool, error) {
	var count int64
	query := tx.Model(&model.Institute{}).Where("institute_name = ?", name)
	if excludeID != 0 {
		query = query.Where("institute_id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
