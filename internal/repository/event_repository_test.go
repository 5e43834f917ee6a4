package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func eventRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "date", "timeslot_id", "module_id", "course_id", "room_id", "staff_id", "student_count", "tag", "created_at", "updated_at"})
}

func TestEventRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	rows := eventRows().
		AddRow("e1", "Algorithms", "", time.Now(), "ts1", "m1", "c1", "r1", "s1", 30, "CLASS", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, date, timeslot_id, module_id, course_id, room_id, staff_id, student_count, tag, created_at, updated_at FROM events WHERE 1=1 ORDER BY date ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM events WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.EventFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryListByRoomSlot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE room_id = $1 AND date = $2 AND timeslot_id = $3")).
		WithArgs("r1", date, "ts1").
		WillReturnRows(eventRows().AddRow("e1", "Algorithms", "", date, "ts1", "m1", "c1", "r1", "s1", 30, "CLASS", time.Now(), time.Now()))

	events, err := repo.ListByRoomSlot(context.Background(), "r1", date, "ts1")
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryCreateInsertsRoster(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO events").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO event_students (event_id, student_id) VALUES ($1, $2)")).
		WithArgs(sqlmock.AnyArg(), "st1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO event_students (event_id, student_id) VALUES ($1, $2)")).
		WithArgs(sqlmock.AnyArg(), "st2").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	event := &models.Event{
		Title:        "Algorithms",
		Date:         time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		TimeslotID:   "ts1",
		ModuleID:     "m1",
		RoomID:       "r1",
		StaffID:      "s1",
		StudentCount: 2,
		Tag:          models.EventTagClass,
		StudentIDs:   []string{"st1", "st2"},
	}
	require.NoError(t, repo.Create(context.Background(), event))
	assert.NotEmpty(t, event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryDeleteCascadesRoster(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM event_students WHERE event_id = $1")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM events WHERE id = $1")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "e1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
