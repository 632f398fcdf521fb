package database

import (
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2/log"
)

// SchemaStatements is the DDL for the record tables and the job log. Uniqueness of
// institute_name and every foreign key live here, in the engine, so they hold
// even when two requests race past the service pre-checks.
var SchemaStatements = []string{
	// institute table
	`CREATE TABLE IF NOT EXISTS institute (
		institute_id BIGINT PRIMARY KEY GENERATED ALWAYS AS IDENTITY,
		institute_name VARCHAR(100) NOT NULL,
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ,
		CONSTRAINT uq_institute_name UNIQUE (institute_name)
	);`,

	// course table
	`CREATE TABLE IF NOT EXISTS course (
		course_id BIGINT PRIMARY KEY GENERATED ALWAYS AS IDENTITY,
		institute_id BIGINT NOT NULL REFERENCES institute(institute_id) ON UPDATE CASCADE ON DELETE RESTRICT,
		course_name VARCHAR(100) NOT NULL,
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_course_institute_id ON course(institute_id);`,

	// student table
	`CREATE TABLE IF NOT EXISTS student (
		student_id BIGINT PRIMARY KEY GENERATED ALWAYS AS IDENTITY,
		institute_id BIGINT NOT NULL REFERENCES institute(institute_id) ON UPDATE CASCADE ON DELETE RESTRICT,
		course_id BIGINT NOT NULL REFERENCES course(course_id) ON UPDATE CASCADE ON DELETE RESTRICT,
		student_name VARCHAR(100) NOT NULL,
		joining_date DATE NOT NULL,
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_student_institute_id ON student(institute_id);`,
	`CREATE INDEX IF NOT EXISTS idx_student_course_id ON student(course_id);`,

	// scheduled job history
	`CREATE TABLE IF NOT EXISTS cron_job_logs (
		id BIGSERIAL PRIMARY KEY,
		job_name VARCHAR(100) NOT NULL,
		status VARCHAR(20) NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ,
		duration BIGINT,
		message TEXT,
		error_msg TEXT,
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_cron_job_logs_job_name ON cron_job_logs(job_name);`,
}

// Relationships lists the foreign keys, used for startup logging
var Relationships = map[string]string{
	"course":  "institute_id -> institute(institute_id)",
	"student": "institute_id -> institute(institute_id), course_id -> course(course_id)",
}

func (s *PostgreSQLStore) Initialize() error {
	log.Info("Initializing PostgresSQL Database. Initializing Tables")

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(strings.Join(SchemaStatements, "\n")); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	PrintAllRelationships()
	return nil
}

func PrintAllRelationships() {
	tables := make([]string, 0, len(Relationships))
	for table := range Relationships {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		log.Infof("Relationships for %s table: %s", table, Relationships[table])
	}
}
