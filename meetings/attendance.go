package meetings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParticipantInput is the attendee-supplied portion of a Participant.
// ID and Timestamp are assigned at registration time, never by the caller.
type ParticipantInput struct {
	FullName string
	CPF      string
	Email    string
	Entity   string
}

func (in ParticipantInput) validate() error {
	if strings.TrimSpace(in.FullName) == "" {
		return NewValidationFailedError("fullName must not be empty")
	}
	if strings.TrimSpace(in.Email) == "" {
		return NewValidationFailedError("email must not be empty")
	}
	if strings.TrimSpace(in.Entity) == "" {
		return NewValidationFailedError("entity must not be empty")
	}
	if !ValidCPFShape(in.CPF) {
		return NewValidationFailedError(fmt.Sprintf("cpf %q is not in the ###.###.###-## shape", in.CPF))
	}
	return nil
}

// NewMeeting builds a meeting record with a fresh id, the current time,
// and an empty roster. It does not persist anything.
func NewMeeting(name string) (Meeting, error) {
	if strings.TrimSpace(name) == "" {
		return Meeting{}, NewValidationFailedError("meeting name must not be empty")
	}

	return Meeting{
		ID:           uuid.New(),
		Name:         name,
		CreatedAt:    time.Now().UTC(),
		Participants: []Participant{},
	}, nil
}

// RegisterAttendance validates the attendee input, stamps it with a fresh
// id and registration time, and appends it to the meeting's roster. A
// missing meeting surfaces as REASON_MEETING_DOES_NOT_EXIST and leaves the
// store untouched.
func RegisterAttendance(ctx context.Context, repo Repository, meetingID uuid.UUID, input ParticipantInput) (Participant, error) {
	if err := input.validate(); err != nil {
		return Participant{}, err
	}

	participant := Participant{
		ID:        uuid.New(),
		FullName:  strings.TrimSpace(input.FullName),
		CPF:       input.CPF,
		Email:     strings.TrimSpace(input.Email),
		Entity:    strings.TrimSpace(input.Entity),
		Timestamp: time.Now().UTC(),
	}

	err := repo.AddParticipant(ctx, meetingID, participant)
	if err != nil {
		var meetingErr *Error
		if errors.As(err, &meetingErr) {
			return Participant{}, err
		}
		return Participant{}, NewFailedToWriteError(fmt.Sprintf("Failed to register attendance for meeting %q", meetingID), err)
	}

	return participant, nil
}
