package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"
	"github.com/presenca-digital/lista-presenca/meetings"
)

var noopLogger = slog.New(slog.DiscardHandler)

const testAccessCode = "216635"

var _ DB = &mockDB{}

type mockDB struct {
	CreateMeetingFunc  func(ctx context.Context, meeting meetings.Meeting) error
	GetMeetingFunc     func(ctx context.Context, id uuid.UUID) (meetings.Meeting, error)
	ListMeetingsFunc   func(ctx context.Context, limit int32, cursor *string) (meetings.ListMeetingsResponse, error)
	AddParticipantFunc func(ctx context.Context, meetingID uuid.UUID, participant meetings.Participant) error
	DeleteMeetingFunc  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDB) CreateMeeting(ctx context.Context, meeting meetings.Meeting) error {
	if m.CreateMeetingFunc != nil {
		return m.CreateMeetingFunc(ctx, meeting)
	}
	return nil
}

func (m *mockDB) GetMeeting(ctx context.Context, id uuid.UUID) (meetings.Meeting, error) {
	if m.GetMeetingFunc != nil {
		return m.GetMeetingFunc(ctx, id)
	}
	return meetings.Meeting{}, meetings.NewMeetingDoesNotExistError("not found", nil)
}

func (m *mockDB) ListMeetings(ctx context.Context, limit int32, cursor *string) (meetings.ListMeetingsResponse, error) {
	if m.ListMeetingsFunc != nil {
		return m.ListMeetingsFunc(ctx, limit, cursor)
	}
	return meetings.ListMeetingsResponse{Data: []meetings.Meeting{}}, nil
}

func (m *mockDB) AddParticipant(ctx context.Context, meetingID uuid.UUID, participant meetings.Participant) error {
	if m.AddParticipantFunc != nil {
		return m.AddParticipantFunc(ctx, meetingID, participant)
	}
	return nil
}

func (m *mockDB) DeleteMeeting(ctx context.Context, id uuid.UUID) error {
	if m.DeleteMeetingFunc != nil {
		return m.DeleteMeetingFunc(ctx, id)
	}
	return nil
}

type mockAnalyzer struct {
	AnalyzeAttendanceFunc func(ctx context.Context, meetingName string, participants []meetings.Participant) (string, error)
}

func (m *mockAnalyzer) AnalyzeAttendance(ctx context.Context, meetingName string, participants []meetings.Participant) (string, error) {
	if m.AnalyzeAttendanceFunc != nil {
		return m.AnalyzeAttendanceFunc(ctx, meetingName, participants)
	}
	return "summary", nil
}

func newTestAPI(db *mockDB, analyzer *mockAnalyzer) *API {
	return NewAPI(db, analyzer, noopLogger, Config{
		Env:             LOCAL,
		AdminAccessCode: testAccessCode,
	})
}

// doRequest runs req through the full handler chain.
func doRequest(a *API, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, req)
	return w
}

func asAdmin(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sessionCookieValue})
	return req
}
