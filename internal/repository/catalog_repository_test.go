package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-schedule-engine/internal/models"
)

func TestCatalogRepositoryLookup(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name FROM subjects WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name"}).AddRow("math", "MTH", "Mathematics"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, email FROM instructors WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email"}).AddRow("P1", "Ada Lovelace", "ada@example.com"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, capacity FROM rooms WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "capacity"}).AddRow("R1", "Lab 1", 32))

	index, err := repo.Lookup(context.Background(), models.CatalogRefs{
		SubjectIDs:    []string{"math"},
		InstructorIDs: []string{"P1"},
		RoomIDs:       []string{"R1", "R9"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", index.Subjects["math"].Name)
	assert.Equal(t, "Ada Lovelace", index.Instructors["P1"].FullName)
	require.NotNil(t, index.Rooms["R1"].Capacity)
	assert.Equal(t, 32, *index.Rooms["R1"].Capacity)
	_, ok := index.Rooms["R9"]
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryLookupSkipsEmptyKinds(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM instructors")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(errors.New("relation does not exist"))

	_, err := repo.Lookup(context.Background(), models.CatalogRefs{InstructorIDs: []string{"P1"}})
	require.Error(t, err)

	index, err := repo.Lookup(context.Background(), models.CatalogRefs{})
	require.NoError(t, err)
	assert.Empty(t, index.Subjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryLookupNullableColumns(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, email FROM instructors WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email"}).
			AddRow("P1", "Ana Silva", nil).
			AddRow("P2", "Ada Lovelace", "ada@example.com"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, capacity FROM rooms WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "capacity"}).AddRow("R1", "Hall", nil))

	index, err := repo.Lookup(context.Background(), models.CatalogRefs{
		InstructorIDs: []string{"P1", "P2"},
		RoomIDs:       []string{"R1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", index.Instructors["P1"].FullName)
	assert.Nil(t, index.Instructors["P1"].Email)
	require.NotNil(t, index.Instructors["P2"].Email)
	assert.Equal(t, "ada@example.com", *index.Instructors["P2"].Email)
	assert.Equal(t, "Hall", index.Rooms["R1"].Name)
	assert.Nil(t, index.Rooms["R1"].Capacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}
