package model

import "time"

// Student is an enrollee linked to one institute and one course
type Student struct {
	StudentID   uint      `gorm:"column:student_id;primaryKey" json:"student_id"`
	InstituteID uint      `gorm:"column:institute_id;not null;index" json:"institute_id"`
	CourseID    uint      `gorm:"column:course_id;not null;index" json:"course_id"`
	StudentName string    `gorm:"column:student_name;type:varchar(100);not null" json:"student_name"`
	JoiningDate Date      `gorm:"column:joining_date;not null" json:"joining_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Student) TableName() string {
	return "student"
}

// SearchResult is one row of the student/course/institute join
type SearchResult struct {
	InstituteName string `json:"institute_name"`
	CourseName    string `json:"course_name"`
	StudentName   string `json:"student_name"`
	JoiningDate   Date   `json:"joining_date"`
}

// StudentCard is the flat record printed on a student's identity card
type StudentCard struct {
	StudentID     uint   `json:"student_id"`
	StudentName   string `json:"student_name"`
	CourseName    string `json:"course_name"`
	InstituteName string `json:"institute_name"`
	JoiningDate   Date   `json:"joining_date"`
}
