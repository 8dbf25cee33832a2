package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/presenca-digital/lista-presenca/meetings"
	"github.com/presenca-digital/lista-presenca/slices"
)

type ErrorCode string

const (
	InternalError        ErrorCode = "InternalError"
	NotFound             ErrorCode = "NotFound"
	EmptyBody            ErrorCode = "EmptyBody"
	InvalidBody          ErrorCode = "InvalidBody"
	InputValidationError ErrorCode = "InputValidationError"
	InvalidCursor        ErrorCode = "InvalidCursor"
	LimitOutOfBounds     ErrorCode = "LimitOutOfBounds"
	AuthError            ErrorCode = "AuthError"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type Meeting struct {
	Id           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	CreatedAt    time.Time     `json:"createdAt"`
	Participants []Participant `json:"participants"`
}

type Participant struct {
	Id        uuid.UUID `json:"id"`
	FullName  string    `json:"fullName"`
	Cpf       string    `json:"cpf"`
	Email     string    `json:"email"`
	Entity    string    `json:"entity"`
	Timestamp time.Time `json:"timestamp"`
}

type MeetingsPage struct {
	Data        []Meeting `json:"data"`
	Cursor      *string   `json:"cursor,omitempty"`
	HasNextPage bool      `json:"hasNextPage"`
}

type CreateMeetingRequest struct {
	Name string `json:"name"`
}

type RegisterParticipantRequest struct {
	FullName string `json:"fullName"`
	Cpf      string `json:"cpf"`
	Email    string `json:"email"`
	Entity   string `json:"entity"`
}

type LoginRequest struct {
	AccessCode string `json:"accessCode"`
}

type AnalysisResponse struct {
	Summary string `json:"summary"`
}

func meetingToApiMeeting(m meetings.Meeting) Meeting {
	return Meeting{
		Id:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		Participants: slices.Map(m.Participants, func(p meetings.Participant) Participant {
			return participantToApiParticipant(p)
		}),
	}
}

func participantToApiParticipant(p meetings.Participant) Participant {
	return Participant{
		Id:        p.ID,
		FullName:  p.FullName,
		Cpf:       p.CPF,
		Email:     p.Email,
		Entity:    p.Entity,
		Timestamp: p.Timestamp,
	}
}

func (a *API) writeJSON(w http.ResponseWriter, statusCode int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		a.logger.Error("failed to marshal response body", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":"InternalError","message":"failed to encode response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func (a *API) writeError(w http.ResponseWriter, statusCode int, code ErrorCode, message string) {
	a.writeJSON(w, statusCode, Error{Code: code, Message: message})
}
