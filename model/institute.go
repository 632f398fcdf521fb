package model

import "time"

// Institute represents an educational institution that owns courses
type Institute struct {
	InstituteID   uint      `gorm:"column:institute_id;primaryKey" json:"institute_id"`
	InstituteName string    `gorm:"column:institute_name;type:varchar(100);not null;uniqueIndex:uq_institute_name" json:"institute_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	Courses  []Course  `gorm:"foreignKey:InstituteID;references:InstituteID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Students []Student `gorm:"foreignKey:InstituteID;references:InstituteID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (Institute) TableName() string {
	return "institute"
}
