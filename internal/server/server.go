package server

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"mandir/internal/mailer"
	"mandir/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type submissionStore interface {
	CreateSubmission(ctx context.Context, sub *types.Submission) error
	UpdateSyncStatus(ctx context.Context, submissionID, syncStatus string) error
	Submissions(ctx context.Context, filter types.SubmissionFilter) ([]*types.Submission, error)
	SubmissionByTransactionID(ctx context.Context, transactionID string) (*types.Submission, error)
	Ping(ctx context.Context) error
}

type pujaStore interface {
	ActivePujas(ctx context.Context) ([]*types.Puja, error)
}

type mirrorClient interface {
	Enabled() bool
	Mirror(ctx context.Context, resource string, data map[string]any) bool
}

type emailSender interface {
	Send(ctx context.Context, email mailer.Email) (string, error)
}

// AttachmentStore is optional; a nil value disables attachment uploads.
type AttachmentStore interface {
	Upload(ctx context.Context, key string, file multipart.File, contentType string) (string, error)
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	submissions submissionStore
	pujas       pujaStore
	cms         mirrorClient
	mailer      emailSender
	attachments AttachmentStore

	jwksCache *jwk.Cache
	jwksURL   string

	mux    *flow.Mux
	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	submissions submissionStore,
	pujas pujaStore,
	cms mirrorClient,
	sender emailSender,
	attachments AttachmentStore,
	jwkCache *jwk.Cache,
	jwksURL string,
) (*Service, error) {
	mux := flow.New()

	s := &Service{
		logger: logger,
		config: config,

		submissions: submissions,
		pujas:       pujas,
		cms:         cms,
		mailer:      sender,
		attachments: attachments,

		jwksCache: jwkCache,
		jwksURL:   jwksURL,

		mux: mux,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.Recover)
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)
	r.Use(s.MetricsMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", promhttp.Handler(), http.MethodGet)

	r.HandleFunc("/api/v1/pujas", s.handleListPujas, http.MethodGet)
	r.HandleFunc("/api/v1/forms/:type", s.handleFormSubmit, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAdmin)

		r.HandleFunc("/api/v1/admin/submissions", s.handleAdminSubmissions, http.MethodGet)
		r.HandleFunc("/api/v1/admin/submissions/:transactionID", s.handleAdminSubmissionDetail, http.MethodGet)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.submissions.Ping(ctx); err != nil {
		s.logger.WithError(err).Error("health check failed")
		s.respondError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}

	s.respondJSON(w, http.StatusOK, envelope{Status: "success", Message: "ok"})
}
