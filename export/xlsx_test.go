package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/presenca-digital/lista-presenca/meetings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRosterXLSX(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	meeting := meetings.Meeting{
		ID:        uuid.New(),
		Name:      "Board Session",
		CreatedAt: now,
		Participants: []meetings.Participant{
			{ID: uuid.New(), FullName: "Ana Silva", CPF: "123.456.789-00", Email: "ana@x.com", Entity: "Finance", Timestamp: now},
			{ID: uuid.New(), FullName: "Bruno Costa", CPF: "987.654.321-00", Email: "bruno@x.com", Entity: "Legal", Timestamp: now.Add(time.Minute)},
		},
	}

	b, err := RosterXLSX(meeting, Options{ExportedAt: now})
	require.NoError(t, err)
	require.Greater(t, len(b), 1000)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	_, err = f.GetSheetIndex(rosterSheet)
	require.NoError(t, err)

	title, err := f.GetCellValue(rosterSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Board Session", title)

	name, err := f.GetCellValue(rosterSheet, "A5")
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", name)

	cpf, err := f.GetCellValue(rosterSheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "123.456.789-00", cpf)

	secondName, err := f.GetCellValue(rosterSheet, "A6")
	require.NoError(t, err)
	assert.Equal(t, "Bruno Costa", secondName)
}

func TestRosterXLSXEmptyRoster(t *testing.T) {
	meeting := meetings.Meeting{
		ID:        uuid.New(),
		Name:      "Nobody Came",
		CreatedAt: time.Now(),
	}

	b, err := RosterXLSX(meeting, Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}
