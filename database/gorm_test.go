package database

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sahilchouksey/campus-records/config"
	"github.com/sahilchouksey/campus-records/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *GORMStore {
	t.Helper()

	store, err := Open(sqlite.Open(SQLiteDSN(filepath.Join(t.TempDir(), "campus.db"))), logger.Discard)
	require.NoError(t, err)
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestInitCreatesTables(t *testing.T) {
	store := openSQLite(t)
	migrator := store.GetDB().Migrator()

	for _, table := range []string{"institute", "course", "student"} {
		assert.True(t, migrator.HasTable(table), table)
	}
	assert.True(t, migrator.HasIndex(&model.Institute{}, "uq_institute_name"))
	assert.NoError(t, store.HealthCheck())

	// second run is a no-op
	require.NoError(t, store.Init())
}

func TestSQLiteEnforcesConstraints(t *testing.T) {
	db := openSQLite(t).GetDB()

	err := db.Create(&model.Course{InstituteID: 42, CourseName: "Orphan"}).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(err.Error(), "FOREIGN KEY constraint failed"), err.Error())

	require.NoError(t, db.Create(&model.Institute{InstituteName: "MIT"}).Error)
	err = db.Create(&model.Institute{InstituteName: "MIT"}).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed"), err.Error())
}

func TestForeignKeysLiveOnChildTables(t *testing.T) {
	db := openSQLite(t).GetDB()

	tableSQL := func(table string) string {
		var ddl string
		require.NoError(t, db.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&ddl).Error)
		return ddl
	}
	references := func(parent string) *regexp.Regexp {
		return regexp.MustCompile("REFERENCES\\W*" + parent + "\\W")
	}

	assert.NotContains(t, tableSQL("institute"), "REFERENCES")
	assert.Regexp(t, references("institute"), tableSQL("course"))
	assert.NotRegexp(t, references("student"), tableSQL("course"))
	assert.Regexp(t, references("institute"), tableSQL("student"))
	assert.Regexp(t, references("course"), tableSQL("student"))

	institute := model.Institute{InstituteName: "Parent"}
	require.NoError(t, db.Create(&institute).Error)
	course := model.Course{InstituteID: institute.InstituteID, CourseName: "Child"}
	require.NoError(t, db.Create(&course).Error)

	err := db.Create(&model.Student{InstituteID: institute.InstituteID, CourseID: 9999, StudentName: "Ghost", JoiningDate: model.NewDate(2024, time.March, 1)}).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(err.Error(), "FOREIGN KEY constraint failed"), err.Error())
}

func TestStartGORMRejectsUnknownDriver(t *testing.T) {
	_, err := StartGORM(&config.EnvironmentVariable{DBDriver: "oracle"})
	assert.ErrorContains(t, err, `unsupported DB_DRIVER "oracle"`)
}

func TestStartGORMWithSQLite(t *testing.T) {
	store, err := StartGORM(&config.EnvironmentVariable{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "campus.db"),
		GoEnv:    "production",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	assert.NoError(t, store.HealthCheck())
}

func TestSeedAllIsIdempotent(t *testing.T) {
	db := openSQLite(t).GetDB()

	require.NoError(t, RunSeeds(db))
	require.NoError(t, RunSeeds(db))

	var institutes, courses, students int64
	require.NoError(t, db.Model(&model.Institute{}).Count(&institutes).Error)
	require.NoError(t, db.Model(&model.Course{}).Count(&courses).Error)
	require.NoError(t, db.Model(&model.Student{}).Count(&students).Error)

	assert.EqualValues(t, 3, institutes)
	assert.EqualValues(t, 6, courses)
	assert.EqualValues(t, 4, students)
}

func TestSeedCoursesNeedsInstitutes(t *testing.T) {
	seeder := NewSeeder(openSQLite(t).GetDB())
	assert.ErrorContains(t, seeder.SeedCourses(), "seed institutes first")
}

func TestPrintAllRelationshipsCoversEveryChildTable(t *testing.T) {
	assert.Contains(t, Relationships, "course")
	assert.Contains(t, Relationships, "student")
	PrintAllRelationships()
}
