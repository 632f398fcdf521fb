package database

import (
	"database/sql"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	_ "github.com/lib/pq"
	"github.com/sahilchouksey/campus-records/config"
)

// Storage defines the lifecycle every database implementation must satisfy
type Storage interface {
	Init() error
	Close() error
	HealthCheck() error
}

// PostgreSQLStore applies the schema with plain SQL over lib/pq. It exists for
// environments where the DDL must be reviewed and run explicitly instead of
// through AutoMigrate.
type PostgreSQLStore struct {
	db *sql.DB
}

func Start(getEnv *config.EnvironmentVariable) (*PostgreSQLStore, error) {
	connectStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv.DBHost, getEnv.DBPort, getEnv.DBUserName, getEnv.DBPassword, getEnv.DBName, getEnv.DBSSLMode)

	db, err := sql.Open("postgres", connectStr)
	if err != nil {
		log.Error("Unable to Start PostgresSQL Database.")
		return nil, err
	}

	log.Info("Successfully connected to PostgresSQL Database.")
	return &PostgreSQLStore{
		db: db,
	}, nil
}

func (s *PostgreSQLStore) Init() error {
	log.Info("Initializing PostgresSQL Database.")
	return s.Initialize()
}

func (s *PostgreSQLStore) Close() error {
	log.Info("Closing PostgresSQL Database.")
	return s.db.Close()
}

// HealthCheck verifies the database connection is alive
func (s *PostgreSQLStore) HealthCheck() error {
	return s.db.Ping()
}
