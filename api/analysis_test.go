package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/presenca-digital/lista-presenca/meetings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostMeetingAnalysis(t *testing.T) {
	meeting := meetings.Meeting{
		ID:        uuid.New(),
		Name:      "Board Session",
		CreatedAt: time.Now().UTC(),
		Participants: []meetings.Participant{
			{ID: uuid.New(), FullName: "Ana Silva", CPF: "123.456.789-00", Email: "ana@x.com", Entity: "Finance", Timestamp: time.Now().UTC()},
		},
	}
	dbWithMeeting := func() *mockDB {
		return &mockDB{
			GetMeetingFunc: func(ctx context.Context, id uuid.UUID) (meetings.Meeting, error) {
				return meeting, nil
			},
		}
	}

	t.Run("returns the generated summary", func(t *testing.T) {
		analyzer := &mockAnalyzer{
			AnalyzeAttendanceFunc: func(ctx context.Context, meetingName string, participants []meetings.Participant) (string, error) {
				assert.Equal(t, "Board Session", meetingName)
				assert.Len(t, participants, 1)
				return "Resumo executivo gerado.", nil
			},
		}
		a := newTestAPI(dbWithMeeting(), analyzer)

		req := asAdmin(httptest.NewRequest(http.MethodPost, "/meetings/"+meeting.ID.String()+"/analysis", nil))
		w := doRequest(a, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp AnalysisResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Resumo executivo gerado.", resp.Summary)
	})

	t.Run("unknown meeting is a 404", func(t *testing.T) {
		a := newTestAPI(&mockDB{}, &mockAnalyzer{})

		req := asAdmin(httptest.NewRequest(http.MethodPost, "/meetings/"+uuid.NewString()+"/analysis", nil))
		w := doRequest(a, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("analyzer failure is a 500", func(t *testing.T) {
		analyzer := &mockAnalyzer{
			AnalyzeAttendanceFunc: func(ctx context.Context, meetingName string, participants []meetings.Participant) (string, error) {
				return "", errors.New("model unavailable")
			},
		}
		a := newTestAPI(dbWithMeeting(), analyzer)

		req := asAdmin(httptest.NewRequest(http.MethodPost, "/meetings/"+meeting.ID.String()+"/analysis", nil))
		w := doRequest(a, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("requires an admin session", func(t *testing.T) {
		a := newTestAPI(dbWithMeeting(), &mockAnalyzer{})

		req := httptest.NewRequest(http.MethodPost, "/meetings/"+meeting.ID.String()+"/analysis", nil)
		w := doRequest(a, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetMeetingExport(t *testing.T) {
	meeting := meetings.Meeting{
		ID:        uuid.New(),
		Name:      "Board Session",
		CreatedAt: time.Now().UTC(),
		Participants: []meetings.Participant{
			{ID: uuid.New(), FullName: "Ana Silva", CPF: "123.456.789-00", Email: "ana@x.com", Entity: "Finance", Timestamp: time.Now().UTC()},
		},
	}

	t.Run("serves the workbook as an attachment", func(t *testing.T) {
		db := &mockDB{
			GetMeetingFunc: func(ctx context.Context, id uuid.UUID) (meetings.Meeting, error) {
				return meeting, nil
			},
		}
		a := newTestAPI(db, &mockAnalyzer{})

		req := asAdmin(httptest.NewRequest(http.MethodGet, "/meetings/"+meeting.ID.String()+"/export", nil))
		w := doRequest(a, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
		assert.Greater(t, w.Body.Len(), 1000)
	})

	t.Run("unknown meeting is a 404", func(t *testing.T) {
		a := newTestAPI(&mockDB{}, &mockAnalyzer{})

		req := asAdmin(httptest.NewRequest(http.MethodGet, "/meetings/"+uuid.NewString()+"/export", nil))
		w := doRequest(a, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
