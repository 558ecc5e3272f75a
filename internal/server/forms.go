package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"mandir/internal/forms"
	"mandir/internal/mailer"
	"mandir/internal/metrics"
	"mandir/internal/utils"
	"mandir/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/sirupsen/logrus"
)

const (
	maxJSONBodyBytes  = 1 << 20  // 1 MiB
	maxMultipartBytes = 10 << 20 // 10 MiB, attachments included
)

// handleFormSubmit is the single pipeline behind every form type:
// parse, validate, persist, mirror (detached), notify, respond. The form
// descriptor selected by the :type parameter supplies everything that varies.
func (s *Service) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	formType := flow.Param(r.Context(), "type")

	desc, ok := forms.Lookup(formType)
	if !ok {
		s.respondError(w, http.StatusNotFound, "unknown form type")
		return
	}

	raw, err := parseSubmissionBody(w, r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	values, issues := forms.Validate(desc, raw)
	if len(issues) > 0 {
		s.respondValidationIssues(w, issues)
		return
	}

	sub := &types.Submission{
		TransactionID: utils.TransactionID(),
		FormType:      desc.Type,
		Payload:       values,
		Status:        types.SubmissionStatusPending,
		SyncStatus:    types.SyncStatusSkipped,
	}
	if s.cms != nil && s.cms.Enabled() {
		sub.SyncStatus = types.SyncStatusPending
	}

	s.attachSubmissionFile(r, desc, sub)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.submissions.CreateSubmission(ctx, sub); err != nil {
		s.logger.WithError(err).WithField("form_type", desc.Type).Error("failed to persist submission")
		s.respondError(w, http.StatusInternalServerError, "unable to process submission")
		return
	}

	metrics.SubmissionsTotal.WithLabelValues(desc.Type).Inc()

	// Fire and forget: the success response never waits on the CMS. The
	// outcome lands in sync_status for the admin view.
	go s.mirrorSubmission(desc, sub)

	s.notifySubmission(r.Context(), desc, sub)

	s.respondCreated(w, fmt.Sprintf("%s submitted successfully", desc.Title), sub.TransactionID)
}

func parseSubmissionBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	contentType := r.Header.Get("Content-Type")

	switch {
	case strings.HasPrefix(contentType, "application/json"):
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

		raw := make(map[string]any)
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode json body: %w", err)
		}
		return raw, nil

	case strings.HasPrefix(contentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxMultipartBytes); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		return formValuesToMap(r.MultipartForm.Value), nil

	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		return formValuesToMap(r.PostForm), nil
	}
}

func formValuesToMap(values url.Values) map[string]any {
	raw := make(map[string]any, len(values))
	for name, v := range values {
		if len(v) > 0 {
			raw[name] = v[0]
		}
	}
	return raw
}

// attachSubmissionFile stores an optional multipart attachment. A failed
// upload is logged and the submission proceeds without it.
func (s *Service) attachSubmissionFile(r *http.Request, desc *forms.Descriptor, sub *types.Submission) {
	if !desc.AllowAttachment || s.attachments == nil || r.MultipartForm == nil {
		return
	}

	file, header, err := r.FormFile("attachment")
	if err != nil {
		return
	}
	defer file.Close()

	key := fmt.Sprintf("forms/%s/%s/%s", desc.Type, sub.TransactionID, filepath.Base(header.Filename))

	stored, err := s.attachments.Upload(r.Context(), key, file, header.Header.Get("Content-Type"))
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"form_type":      desc.Type,
			"transaction_id": sub.TransactionID,
		}).Warn("failed to store attachment")
		return
	}

	sub.AttachmentKey = &stored
}

// mirrorSubmission runs detached from the request. It posts the denormalized
// copy to the CMS and records the outcome; it never influences the response
// already sent to the client.
func (s *Service) mirrorSubmission(desc *forms.Descriptor, sub *types.Submission) {
	if s.cms == nil || !s.cms.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data := make(map[string]any, len(sub.Payload)+4)
	for name, v := range sub.Payload {
		data[name] = v
	}
	data["transactionId"] = sub.TransactionID
	data["formType"] = sub.FormType
	data["status"] = sub.Status
	data["postgresId"] = sub.ID
	if sub.AttachmentKey != nil {
		data["attachmentKey"] = *sub.AttachmentKey
	}

	syncStatus := types.SyncStatusSynced
	if !s.cms.Mirror(ctx, desc.Resource, data) {
		syncStatus = types.SyncStatusFailed
		metrics.SyncFailuresTotal.WithLabelValues(desc.Type).Inc()
	}

	if err := s.submissions.UpdateSyncStatus(ctx, sub.ID, syncStatus); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"form_type":      desc.Type,
			"transaction_id": sub.TransactionID,
		}).Error("failed to record sync status")
	}
}

// notifySubmission sends the admin alert (when configured) and the submitter
// confirmation. Failures are logged and counted; the 201 already earned by
// the persisted row stands.
func (s *Service) notifySubmission(ctx context.Context, desc *forms.Descriptor, sub *types.Submission) {
	if s.mailer == nil {
		return
	}

	if s.config.AdminAlertEmail != "" {
		if _, err := s.mailer.Send(ctx, mailer.AdminAlert(s.config.AdminAlertEmail, desc, sub)); err != nil {
			metrics.EmailFailuresTotal.WithLabelValues(desc.Type, "admin_alert").Inc()
			s.logger.WithError(err).WithFields(logrus.Fields{
				"form_type":      desc.Type,
				"transaction_id": sub.TransactionID,
			}).Error("failed to send admin alert")
		}
	}

	if _, err := s.mailer.Send(ctx, mailer.Confirmation(desc, sub)); err != nil {
		metrics.EmailFailuresTotal.WithLabelValues(desc.Type, "confirmation").Inc()
		s.logger.WithError(err).WithFields(logrus.Fields{
			"form_type":      desc.Type,
			"transaction_id": sub.TransactionID,
		}).Error("failed to send confirmation email")
	}
}
