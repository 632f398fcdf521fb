package model

import "time"

// Course represents a program offered by exactly one institute (e.g., "CS", "MCA")
type Course struct {
	CourseID    uint      `gorm:"column:course_id;primaryKey" json:"course_id"`
	InstituteID uint      `gorm:"column:institute_id;not null;index" json:"institute_id"`
	CourseName  string    `gorm:"column:course_name;type:varchar(100);not null" json:"course_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Students []Student `gorm:"foreignKey:CourseID;references:CourseID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (Course) TableName() string {
	return "course"
}
