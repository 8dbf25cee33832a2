package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/presenca-digital/lista-presenca/export"
	"github.com/presenca-digital/lista-presenca/meetings"
)

func (a *API) getMeetingExport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		a.writeError(w, http.StatusNotFound, NotFound, "Meeting was not found")
		return
	}

	meeting, err := a.db.GetMeeting(r.Context(), id)
	if err != nil {
		if meetings.IsNotFound(err) {
			a.writeError(w, http.StatusNotFound, NotFound, "Meeting was not found")
			return
		}
		a.logger.Error("Failed to get meeting for export", "error", err, "meetingId", id)

		a.writeError(w, http.StatusInternalServerError, InternalError, "Internal server error")
		return
	}

	data, err := export.RosterXLSX(meeting, export.Options{})
	if err != nil {
		a.logger.Error("Failed to render roster export", "error", err, "meetingId", id)

		a.writeError(w, http.StatusInternalServerError, InternalError, "Failed to render the export")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("lista-presenca-%s.xlsx", meeting.ID)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
