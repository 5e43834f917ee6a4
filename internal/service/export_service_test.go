package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/pkg/storage"
)

type mockExportEvents struct {
	events []models.Event
}

func (m *mockExportEvents) ListBetween(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	return m.events, nil
}

func newExportFixture(t *testing.T) (*ExportService, *mockExportEvents) {
	t.Helper()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Minute)

	events := &mockExportEvents{events: []models.Event{
		{
			ID:           "evt-1",
			Title:        "Databases",
			Date:         time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
			TimeslotID:   "slot-10",
			ModuleID:     "module-1",
			RoomID:       "room-a",
			StaffID:      "staff-1",
			StudentCount: 25,
			Tag:          models.EventTagClass,
		},
	}}
	slots := &mockSlotCatalog{slots: map[string]models.Timeslot{
		"slot-10": slotAt("slot-10", "10:00", 60),
	}}

	return NewExportService(events, slots, store, signer, nil, nil, ExportConfig{}), events
}

func TestExportCSVRoundTrip(t *testing.T) {
	svc, _ := newExportFixture(t)

	resp, err := svc.Export(context.Background(), dto.ExportQuery{Format: "csv"})
	require.NoError(t, err)

	assert.Equal(t, "csv", resp.Format)
	assert.NotEmpty(t, resp.ExportID)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	file, name, err := svc.Download(downloadToken(t, resp.URL))
	require.NoError(t, err)
	defer file.Close()

	assert.Contains(t, name, resp.ExportID)
	payload, err := io.ReadAll(file)
	require.NoError(t, err)

	text := string(payload)
	assert.Contains(t, text, "Date,Start,End,Title")
	assert.Contains(t, text, "2026-09-07,10:00,11:00,Databases")
}

func TestExportPDF(t *testing.T) {
	svc, _ := newExportFixture(t)

	resp, err := svc.Export(context.Background(), dto.ExportQuery{Format: "pdf"})
	require.NoError(t, err)

	file, _, err := svc.Download(downloadToken(t, resp.URL))
	require.NoError(t, err)
	defer file.Close()

	header := make([]byte, 5)
	_, err = io.ReadFull(file, header)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(header))
}

func TestExportRejectsInvertedRange(t *testing.T) {
	svc, _ := newExportFixture(t)

	_, err := svc.Export(context.Background(), dto.ExportQuery{From: "2026-09-30", To: "2026-09-01"})
	require.Error(t, err)
}

func TestExportDownloadRejectsTamperedToken(t *testing.T) {
	svc, _ := newExportFixture(t)

	resp, err := svc.Export(context.Background(), dto.ExportQuery{})
	require.NoError(t, err)

	token := downloadToken(t, resp.URL)
	tampered := strings.Replace(token, resp.ExportID[:4], "zzzz", 1)
	_, _, err = svc.Download(tampered)
	require.Error(t, err)
}

func downloadToken(t *testing.T, url string) string {
	t.Helper()
	_, token, found := strings.Cut(url, "token=")
	require.True(t, found)
	return token
}
