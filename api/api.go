package api

import (
	"log/slog"
	"net/http"

	"github.com/presenca-digital/lista-presenca/analysis"
	"github.com/presenca-digital/lista-presenca/meetings"
)

type Env string

const (
	LOCAL Env = "local"
	PROD  Env = "prod"
)

type DB interface {
	meetings.Repository
}

type Config struct {
	Env Env
	// AdminAccessCode is the shared secret behind the dashboard. See
	// auth.go for what this is and is not.
	AdminAccessCode string
	// AllowedOrigin is the CORS origin allowed in PROD.
	AllowedOrigin string
}

type API struct {
	db       DB
	analyzer analysis.Analyzer
	logger   *slog.Logger
	config   Config
}

func NewAPI(db DB, analyzer analysis.Analyzer, logger *slog.Logger, config Config) *API {
	return &API{
		db:       db,
		analyzer: analyzer,
		logger:   logger,
		config:   config,
	}
}

// Handler wires every route plus the middleware chain. Meeting lookup and
// attendance submission are public so the shared /meeting/{id} link works
// without a session; everything else sits behind the admin gate.
func (a *API) Handler() http.Handler {
	r := http.NewServeMux()

	r.HandleFunc("POST /admin/login", a.postAdminLogin)
	r.HandleFunc("POST /admin/logout", a.postAdminLogout)

	r.HandleFunc("GET /meetings", a.requireAdmin(a.getMeetings))
	r.HandleFunc("POST /meetings", a.requireAdmin(a.postMeetings))
	r.HandleFunc("GET /meetings/{id}", a.getMeeting)
	r.HandleFunc("DELETE /meetings/{id}", a.requireAdmin(a.deleteMeeting))
	r.HandleFunc("POST /meetings/{id}/participants", a.postParticipants)
	r.HandleFunc("GET /meetings/{id}/export", a.requireAdmin(a.getMeetingExport))
	r.HandleFunc("POST /meetings/{id}/analysis", a.requireAdmin(a.postMeetingAnalysis))

	return useMiddlewares(r,
		a.corsMiddleware(),
		a.loggingMiddleware(),
		a.requestIdMiddleware(),
	)
}
