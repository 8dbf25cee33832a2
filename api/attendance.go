package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/presenca-digital/lista-presenca/meetings"
)

func (a *API) postParticipants(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		a.writeError(w, http.StatusNotFound, NotFound, "Meeting to register with was not found")
		return
	}

	var body RegisterParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			a.writeError(w, http.StatusBadRequest, EmptyBody, "Must specify a body")
			return
		}
		a.writeError(w, http.StatusBadRequest, InvalidBody, "Invalid body")
		return
	}

	participant, err := meetings.RegisterAttendance(r.Context(), a.db, id, meetings.ParticipantInput{
		FullName: body.FullName,
		CPF:      meetings.FormatCPF(body.Cpf),
		Email:    body.Email,
		Entity:   body.Entity,
	})
	if err != nil {
		var meetingErr *meetings.Error
		if errors.As(err, &meetingErr) {
			switch meetingErr.Reason {
			case meetings.REASON_VALIDATION_FAILED:
				a.logger.Warn("Invalid attendance submission", "error", err)

				a.writeError(w, http.StatusBadRequest, InputValidationError, "All fields are required and the CPF must be complete")
				return
			case meetings.REASON_MEETING_DOES_NOT_EXIST:
				a.writeError(w, http.StatusNotFound, NotFound, "Meeting to register with was not found")
				return
			}
		}
		a.logger.Error("Error trying to register attendance", "error", err, "meetingId", id)

		a.writeError(w, http.StatusInternalServerError, InternalError, "Failed to register attendance")
		return
	}

	a.writeJSON(w, http.StatusCreated, participantToApiParticipant(participant))
}
