package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/campus-records/config"
	"github.com/sahilchouksey/campus-records/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GORMStore struct {
	db *gorm.DB
}

// StartGORM opens a GORM connection using the configured driver
func StartGORM(getEnv *config.EnvironmentVariable) (*GORMStore, error) {
	var dialector gorm.Dialector
	switch getEnv.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(SQLiteDSN(getEnv.DBPath))
	case "postgres", "":
		// Build DSN (Data Source Name)
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			getEnv.DBHost,
			getEnv.DBUserName,
			getEnv.DBPassword,
			getEnv.DBName,
			getEnv.DBPort,
			getEnv.DBSSLMode,
		)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", getEnv.DBDriver)
	}

	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)
	if getEnv.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	store, err := Open(dialector, gormLogger)
	if err != nil {
		log.Errorf("Unable to connect to %s with GORM: %v", getEnv.DBDriver, err)
		return nil, err
	}

	if getEnv.DBDriver != "sqlite" {
		// Get underlying *sql.DB to configure connection pool
		sqlDB, err := store.db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Infof("Successfully connected to %s database with GORM.", getEnv.DBDriver)
	return store, nil
}

// Open wraps an already chosen dialector. Constraint errors are translated to
// gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated where the driver supports it.
func Open(dialector gorm.Dialector, gormLogger logger.Interface) (*GORMStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: false,
		TranslateError:         true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, err
	}
	return &GORMStore{db: db}, nil
}

// SQLiteDSN enables foreign key enforcement on every pooled connection
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	log.Info("Running GORM AutoMigrate for institute, course, student and cron_job_logs...")

	// Order matters: referenced tables first
	err := s.db.AutoMigrate(
		&model.Institute{},
		&model.Course{},
		&model.Student{},
		&model.CronJobLog{},
	)
	if err != nil {
		log.Errorf("Error running AutoMigrate: %v", err)
		return err
	}

	log.Info("GORM AutoMigrate completed successfully!")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	log.Info("Closing GORM database connection...")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM DB instance for use in services/handlers
func (s *GORMStore) GetDB() *gorm.DB {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
