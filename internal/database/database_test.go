package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateRunsBothSchemas(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS security_events").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`embedding vector\(768\) NOT NULL`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, Wrap(db).Migrate(context.Background(), 768))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE EXTENSION IF NOT EXISTS vector").WillReturnError(errors.New("extension \"vector\" is not available"))
	mock.ExpectRollback()

	err = Wrap(db).Migrate(context.Background(), 1024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vector schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateRejectsBadDimensions(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assert.Error(t, Wrap(db).Migrate(context.Background(), 0))
}

func TestHealth(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	assert.NoError(t, Wrap(db).Health(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthNilDatabase(t *testing.T) {
	var d *Database
	assert.Error(t, d.Health(context.Background()))
}
