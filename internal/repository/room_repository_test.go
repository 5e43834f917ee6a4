package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "capacity", "category", "building_id", "created_at", "updated_at"})
}

func TestRoomRepositoryListWithMinCapacity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms WHERE capacity >= $1 ORDER BY capacity ASC, name ASC")).
		WithArgs(15).
		WillReturnRows(roomRows().
			AddRow("rA", "Room A", 20, "lecture", "b1", time.Now(), time.Now()).
			AddRow("rC", "Room C", 40, "lecture", "b1", time.Now(), time.Now()))

	rooms, err := repo.ListWithMinCapacity(context.Background(), 15)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "rA", rooms[0].ID)
	assert.GreaterOrEqual(t, rooms[0].Capacity, 15)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms WHERE id = $1")).
		WithArgs("rA").
		WillReturnRows(roomRows().AddRow("rA", "Room A", 20, "lecture", "b1", time.Now(), time.Now()))

	room, err := repo.FindByID(context.Background(), "rA")
	require.NoError(t, err)
	assert.Equal(t, 20, room.Capacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}
