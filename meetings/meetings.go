package meetings

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Meeting is a named attendance event. Participants is append-only and
// keeps arrival order; individual entries are never edited or removed.
type Meeting struct {
	ID           uuid.UUID
	Name         string
	CreatedAt    time.Time
	Participants []Participant
}

// Participant is one attendance record, owned by exactly one Meeting.
// There is no uniqueness constraint on the attendee-supplied fields; the
// same person may sign the sheet twice.
type Participant struct {
	ID        uuid.UUID
	FullName  string
	CPF       string
	Email     string
	Entity    string
	Timestamp time.Time
}

type ListMeetingsResponse struct {
	Data        []Meeting
	Cursor      *string
	HasNextPage bool
}

// Repository is the roster store. ListMeetings orders by CreatedAt
// descending, ties broken by ID so paging stays deterministic. Absence of
// a meeting is always signaled as an Error with REASON_MEETING_DOES_NOT_EXIST,
// except from DeleteMeeting, which is a no-op for unknown ids.
type Repository interface {
	CreateMeeting(ctx context.Context, meeting Meeting) error
	GetMeeting(ctx context.Context, id uuid.UUID) (Meeting, error)
	ListMeetings(ctx context.Context, limit int32, cursor *string) (ListMeetingsResponse, error)
	AddParticipant(ctx context.Context, meetingID uuid.UUID, participant Participant) error
	DeleteMeeting(ctx context.Context, id uuid.UUID) error
}
