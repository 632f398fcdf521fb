//go:build integration

package database

import (
	"database/sql"
	"testing"

	"github.com/sahilchouksey/campus-records/internal/testutil/containers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm/logger"
)

func TestPostgreSQLStoreAppliesSchema(t *testing.T) {
	pg := containers.NewPostgresContainer(t)

	sqlDB, err := sql.Open("postgres", pg.DSN)
	require.NoError(t, err)
	store := &PostgreSQLStore{db: sqlDB}
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.HealthCheck())
	require.NoError(t, store.Init())
	// IF NOT EXISTS makes a second run safe
	require.NoError(t, store.Init())

	_, err = sqlDB.Exec(`INSERT INTO institute (institute_name) VALUES ('MIT')`)
	require.NoError(t, err)

	_, err = sqlDB.Exec(`INSERT INTO institute (institute_name) VALUES ('MIT')`)
	assert.ErrorContains(t, err, "uq_institute_name")

	_, err = sqlDB.Exec(`INSERT INTO course (institute_id, course_name) VALUES (999, 'Orphan')`)
	assert.ErrorContains(t, err, "violates foreign key constraint")
}

func TestGORMStoreOnPostgres(t *testing.T) {
	pg := containers.NewPostgresContainer(t)

	store, err := Open(postgres.Open(pg.DSN), logger.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Init())
	require.NoError(t, RunSeeds(store.GetDB()))

	var students int64
	require.NoError(t, store.GetDB().Table("student").Count(&students).Error)
	assert.EqualValues(t, 4, students)
}
