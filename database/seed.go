package database

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/campus-records/model"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Info("🌱 Starting database seeding...")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedInstitutes(); err != nil {
		return fmt.Errorf("failed to seed institutes: %w", err)
	}

	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	if err := s.SeedStudents(); err != nil {
		return fmt.Errorf("failed to seed students: %w", err)
	}

	log.Info("✅ Database seeding completed successfully!")
	return nil
}

// SeedInstitutes creates sample institutes
func (s *Seeder) SeedInstitutes() error {
	var count int64
	if err := s.db.Model(&model.Institute{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Info("⏭️  Institutes already exist, skipping...")
		return nil
	}

	institutes := []model.Institute{
		{InstituteName: "Massachusetts Institute of Technology"},
		{InstituteName: "Indian Institute of Technology Kanpur"},
		{InstituteName: "University of Delhi"},
	}

	if err := s.db.Create(&institutes).Error; err != nil {
		return err
	}

	log.Infof("✅ Created %d institutes", len(institutes))
	return nil
}

// SeedCourses creates sample courses, two per institute
func (s *Seeder) SeedCourses() error {
	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Info("⏭️  Courses already exist, skipping...")
		return nil
	}

	var institutes []model.Institute
	if err := s.db.Order("institute_id").Find(&institutes).Error; err != nil {
		return err
	}

	if len(institutes) == 0 {
		return fmt.Errorf("no institutes found, seed institutes first")
	}

	var courses []model.Course
	for _, institute := range institutes {
		courses = append(courses,
			model.Course{InstituteID: institute.InstituteID, CourseName: "Computer Science"},
			model.Course{InstituteID: institute.InstituteID, CourseName: "Master of Computer Applications"},
		)
	}

	if err := s.db.Create(&courses).Error; err != nil {
		return err
	}

	log.Infof("✅ Created %d courses", len(courses))
	return nil
}

// SeedStudents enrolls a few sample students in the first courses
func (s *Seeder) SeedStudents() error {
	var count int64
	if err := s.db.Model(&model.Student{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Info("⏭️  Students already exist, skipping...")
		return nil
	}

	var courses []model.Course
	if err := s.db.Order("course_id").Find(&courses).Error; err != nil {
		return err
	}

	if len(courses) == 0 {
		return fmt.Errorf("no courses found, seed courses first")
	}

	names := []string{"Alice Johnson", "Rahul Sharma", "Priya Verma", "Bob Smith"}
	students := make([]model.Student, 0, len(names))
	for i, name := range names {
		course := courses[i%len(courses)]
		students = append(students, model.Student{
			InstituteID: course.InstituteID,
			CourseID:    course.CourseID,
			StudentName: name,
			JoiningDate: model.NewDate(2024, time.January+time.Month(i), 1),
		})
	}

	if err := s.db.Create(&students).Error; err != nil {
		return err
	}

	log.Infof("✅ Created %d students", len(students))
	return nil
}

// RunSeeds is the entry point used by cmd/seed
func RunSeeds(db *gorm.DB) error {
	return NewSeeder(db).SeedAll()
}
