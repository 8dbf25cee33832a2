package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/presenca-digital/lista-presenca/meetings"
	"github.com/presenca-digital/lista-presenca/slices"
)

func (a *API) getMeetings(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		userLimit, err := strconv.Atoi(rawLimit)
		if err != nil || userLimit < 1 || userLimit > 50 {
			a.writeError(w, http.StatusBadRequest, LimitOutOfBounds, "Limit must be between 1 and 50")
			return
		}
		limit = userLimit
	}

	var cursor *string
	if rawCursor := r.URL.Query().Get("cursor"); rawCursor != "" {
		cursor = &rawCursor
	}

	result, err := a.db.ListMeetings(r.Context(), int32(limit), cursor)
	if err != nil {
		a.logger.Error("Failed to list meetings", "error", err)

		var meetingErr *meetings.Error
		if errors.As(err, &meetingErr) {
			switch meetingErr.Reason {
			case meetings.REASON_INVALID_CURSOR:
				a.writeError(w, http.StatusBadRequest, InvalidCursor, "Passed in cursor is invalid")
				return
			}
		}
		a.writeError(w, http.StatusInternalServerError, InternalError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, MeetingsPage{
		Data: slices.Map(result.Data, func(m meetings.Meeting) Meeting {
			return meetingToApiMeeting(m)
		}),
		Cursor:      result.Cursor,
		HasNextPage: result.HasNextPage,
	})
}

func (a *API) postMeetings(w http.ResponseWriter, r *http.Request) {
	var body CreateMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			a.writeError(w, http.StatusBadRequest, EmptyBody, "Must specify a JSON body in the request")
			return
		}
		a.writeError(w, http.StatusBadRequest, InvalidBody, "Invalid body")
		return
	}

	meeting, err := meetings.NewMeeting(body.Name)
	if err != nil {
		a.logger.Warn("Invalid meeting name", "error", err)

		a.writeError(w, http.StatusBadRequest, InputValidationError, "Meeting name must not be empty")
		return
	}

	if err := a.db.CreateMeeting(r.Context(), meeting); err != nil {
		a.logger.Error("Failed to create a meeting", "error", err)

		a.writeError(w, http.StatusInternalServerError, InternalError, "Failed to create the meeting")
		return
	}

	a.writeJSON(w, http.StatusCreated, meetingToApiMeeting(meeting))
}

func (a *API) getMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		// An unparseable id can't name a meeting; same outcome as an
		// unknown one.
		a.writeError(w, http.StatusNotFound, NotFound, "Meeting was not found")
		return
	}

	meeting, err := a.db.GetMeeting(r.Context(), id)
	if err != nil {
		if meetings.IsNotFound(err) {
			a.writeError(w, http.StatusNotFound, NotFound, "Meeting was not found")
			return
		}
		a.logger.Error("Failed to get meeting", "error", err, "meetingId", id)

		a.writeError(w, http.StatusInternalServerError, InternalError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, meetingToApiMeeting(meeting))
}

func (a *API) deleteMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		// Deleting something that can't exist is still a no-op.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := a.db.DeleteMeeting(r.Context(), id); err != nil {
		a.logger.Error("Failed to delete meeting", "error", err, "meetingId", id)

		a.writeError(w, http.StatusInternalServerError, InternalError, "Failed to delete the meeting")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
