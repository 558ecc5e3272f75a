package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"mandir/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// RequireAdmin verifies a bearer token against the configured JWKS before
// admitting admin routes.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.jwksCache == nil || s.jwksURL == "" {
			s.respondError(w, http.StatusServiceUnavailable, "admin access is not configured")
			return
		}

		authHeader := r.Header.Get("Authorization")
		raw, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || raw == "" {
			s.respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		set, err := s.jwksCache.Lookup(r.Context(), s.jwksURL)
		if err != nil {
			s.logger.WithError(err).Error("failed to fetch JWKS")
			s.respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		token, err := jwt.Parse(
			[]byte(raw),
			jwt.WithKeySet(set),
			jwt.WithValidate(true),
		)
		if err != nil {
			s.logger.WithError(err).Debug("failed to parse admin JWT")
			s.respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		adminID, _ := token.Subject()
		s.logger.WithField("admin_id", adminID).Debug("admin request")

		next.ServeHTTP(w, r)
	})
}

type adminListParams struct {
	FormType   string `form:"formType"`
	SyncStatus string `form:"syncStatus"`
	Limit      uint64 `form:"limit"`
}

func (s *Service) handleAdminSubmissions(w http.ResponseWriter, r *http.Request) {
	var params adminListParams
	if err := decoder.Decode(&params, r.URL.Query()); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	if params.Limit == 0 {
		params.Limit = 50
	}
	if params.Limit > 200 {
		params.Limit = 200
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	subs, err := s.submissions.Submissions(ctx, types.SubmissionFilter{
		FormType:   params.FormType,
		SyncStatus: params.SyncStatus,
		Limit:      params.Limit,
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to list submissions")
		s.respondError(w, http.StatusInternalServerError, "unable to list submissions")
		return
	}

	s.respondData(w, subs)
}

func (s *Service) handleAdminSubmissionDetail(w http.ResponseWriter, r *http.Request) {
	transactionID := flow.Param(r.Context(), "transactionID")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sub, err := s.submissions.SubmissionByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, types.ErrSubmissionNotFound) {
			s.respondError(w, http.StatusNotFound, "submission not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch submission")
		s.respondError(w, http.StatusInternalServerError, "unable to fetch submission")
		return
	}

	s.respondData(w, sub)
}
