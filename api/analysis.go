package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/presenca-digital/lista-presenca/meetings"
)

func (a *API) postMeetingAnalysis(w http.ResponseWriter, r *http.Request) {
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
		a.logger.Error("Failed to get meeting for analysis", "error", err, "meetingId", id)

		a.writeError(w, http.StatusInternalServerError, InternalError, "Internal server error")
		return
	}

	summary, err := a.analyzer.AnalyzeAttendance(r.Context(), meeting.Name, meeting.Participants)
	if err != nil {
		a.logger.Error("Failed to analyze attendance", "error", err, "meetingId", id)

		a.writeError(w, http.StatusInternalServerError, InternalError, "Failed to generate the analysis")
		return
	}

	a.writeJSON(w, http.StatusOK, AnalysisResponse{Summary: summary})
}
