package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"mandir/internal/mailer"
	"mandir/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmissionStore struct {
	mu            sync.Mutex
	subs          []*types.Submission
	syncStatuses  map[string]string
	createErr     error
	panicOnCreate bool
}

func (f *fakeSubmissionStore) CreateSubmission(_ context.Context, sub *types.Submission) error {
	if f.panicOnCreate {
		panic("store exploded")
	}
	if f.createErr != nil {
		return f.createErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	sub.ID = fmt.Sprintf("row-%d", len(f.subs)+1)
	sub.CreatedAt = now
	sub.UpdatedAt = now

	stored := *sub
	f.subs = append(f.subs, &stored)
	return nil
}

func (f *fakeSubmissionStore) UpdateSyncStatus(_ context.Context, submissionID, syncStatus string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.syncStatuses == nil {
		f.syncStatuses = make(map[string]string)
	}
	f.syncStatuses[submissionID] = syncStatus
	return nil
}

func (f *fakeSubmissionStore) Submissions(_ context.Context, _ types.SubmissionFilter) ([]*types.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*types.Submission(nil), f.subs...), nil
}

func (f *fakeSubmissionStore) SubmissionByTransactionID(_ context.Context, transactionID string) (*types.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if sub.TransactionID == transactionID {
			return sub, nil
		}
	}
	return nil, types.ErrSubmissionNotFound
}

func (f *fakeSubmissionStore) Ping(context.Context) error { return nil }

func (f *fakeSubmissionStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *fakeSubmissionStore) syncStatusOf(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncStatuses[id]
}

type fakeAttachmentStore struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeAttachmentStore) Upload(_ context.Context, key string, _ multipart.File, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return key, nil
}

type fakePujaStore struct{}

func (fakePujaStore) ActivePujas(context.Context) ([]*types.Puja, error) {
	return []*types.Puja{{ID: "p1", Name: "Ganesh Puja", Slug: "ganesh-puja", IsActive: true}}, nil
}

type fakeMirror struct {
	mu      sync.Mutex
	enabled bool
	succeed bool
	calls   int
}

func (f *fakeMirror) Enabled() bool { return f.enabled }

func (f *fakeMirror) Mirror(context.Context, string, map[string]any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.succeed
}

func (f *fakeMirror) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSender struct {
	mu     sync.Mutex
	emails []mailer.Email
	err    error
}

func (f *fakeSender) Send(_ context.Context, email mailer.Email) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, email)
	if f.err != nil {
		return "", f.err
	}
	return "msg-1", nil
}

func (f *fakeSender) sent() []mailer.Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Email(nil), f.emails...)
}

func newTestService(t *testing.T, store *fakeSubmissionStore, mirror *fakeMirror, sender *fakeSender) *Service {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	config := &types.Config{
		ServerPort:      8080,
		AdminAlertEmail: "admin@temple.org",
	}

	s, err := New(config, logger, store, fakePujaStore{}, mirror, sender, nil, nil, "")
	require.NoError(t, err)
	return s
}

func postJSON(t *testing.T, s *Service, path string, payload map[string]any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

var sponsorshipPayload = map[string]any{
	"devoteeName":     "A",
	"email":           "a@x.com",
	"phone":           "555",
	"pujaId":          "p1",
	"sponsorshipDate": "2025-01-01",
}

func TestFormSubmit(t *testing.T) {
	t.Run("valid sponsorship persists one row and notifies twice", func(t *testing.T) {
		store := &fakeSubmissionStore{}
		sender := &fakeSender{}
		s := newTestService(t, store, &fakeMirror{}, sender)

		rec, env := postJSON(t, s, "/api/v1/forms/sponsorship", sponsorshipPayload)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "success", env.Status)
		assert.Regexp(t, `^req_[0-9a-f]{32}$`, env.TransactionID)

		require.Equal(t, 1, store.count())
		sub := store.subs[0]
		assert.Equal(t, types.SubmissionStatusPending, sub.Status)
		assert.Equal(t, "sponsorship", sub.FormType)
		assert.Equal(t, env.TransactionID, sub.TransactionID)
		assert.Equal(t, types.SyncStatusSkipped, sub.SyncStatus, "mirror not configured")

		emails := sender.sent()
		require.Len(t, emails, 2, "admin alert and submitter confirmation")
		assert.Equal(t, "admin@temple.org", emails[0].To)
		assert.Equal(t, "a@x.com", emails[1].To)
		assert.Contains(t, emails[1].Text, env.TransactionID)
	})

	t.Run("empty facility request reports every required field", func(t *testing.T) {
		store := &fakeSubmissionStore{}
		s := newTestService(t, store, &fakeMirror{}, &fakeSender{})

		rec, env := postJSON(t, s, "/api/v1/forms/facility-request", map[string]any{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "error", env.Status)

		fields := make([]string, 0, len(env.Errors))
		for _, issue := range env.Errors {
			fields = append(fields, issue.Field)
		}
		assert.Equal(t, []string{"name", "email", "phone", "facility", "eventDate", "attendees"}, fields)
		assert.Equal(t, 0, store.count())
	})

	t.Run("repeat submissions are not deduplicated", func(t *testing.T) {
		store := &fakeSubmissionStore{}
		s := newTestService(t, store, &fakeMirror{}, &fakeSender{})

		_, first := postJSON(t, s, "/api/v1/forms/sponsorship", sponsorshipPayload)
		_, second := postJSON(t, s, "/api/v1/forms/sponsorship", sponsorshipPayload)

		assert.Equal(t, 2, store.count())
		assert.NotEqual(t, first.TransactionID, second.TransactionID)
	})

	t.Run("store failure aborts with 500", func(t *testing.T) {
		store := &fakeSubmissionStore{createErr: errors.New("connection refused")}
		sender := &fakeSender{}
		s := newTestService(t, store, &fakeMirror{}, sender)

		rec, env := postJSON(t, s, "/api/v1/forms/sponsorship", sponsorshipPayload)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "error", env.Status)
		assert.NotContains(t, env.Message, "connection refused", "internal detail stays server-side")
		assert.Empty(t, sender.sent(), "no notifications without a persisted row")
	})

	t.Run("panic maps to a generic 500", func(t *testing.T) {
		store := &fakeSubmissionStore{panicOnCreate: true}
		s := newTestService(t, store, &fakeMirror{}, &fakeSender{})

		rec, env := postJSON(t, s, "/api/v1/forms/sponsorship", sponsorshipPayload)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "error", env.Status)
		assert.NotContains(t, rec.Body.String(), "exploded")
	})

	t.Run("unknown form type is 404", func(t *testing.T) {
		s := newTestService(t, &fakeSubmissionStore{}, &fakeMirror{}, &fakeSender{})

		rec, env := postJSON(t, s, "/api/v1/forms/payments", map[string]any{})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "error", env.Status)
	})

	t.Run("accepts form-encoded bodies", func(t *testing.T) {
		store := &fakeSubmissionStore{}
		s := newTestService(t, store, &fakeMirror{}, &fakeSender{})

		values := url.Values{}
		values.Set("email", "sub@x.com")
		values.Set("name", "Sub")

		req := httptest.NewRequest(http.MethodPost, "/api/v1/forms/email-subscription", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := httptest.NewRecorder()
		s.mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, 1, store.count())
		assert.Equal(t, "sub@x.com", store.subs[0].Payload["email"])
	})

	t.Run("multipart submission stores the attachment", func(t *testing.T) {
		store := &fakeSubmissionStore{}
		attachments := &fakeAttachmentStore{}
		s := newTestService(t, store, &fakeMirror{}, &fakeSender{})
		s.attachments = attachments

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for name, value := range map[string]string{
			"name":      "Ravi",
			"email":     "ravi@x.com",
			"phone":     "555",
			"facility":  "main-hall",
			"eventDate": "2025-06-14",
			"attendees": "120",
		} {
			require.NoError(t, mw.WriteField(name, value))
		}
		fw, err := mw.CreateFormFile("attachment", "letter.pdf")
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/forms/facility-request", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := httptest.NewRecorder()
		s.mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, 1, store.count())

		sub := store.subs[0]
		require.NotNil(t, sub.AttachmentKey)
		assert.Equal(t, fmt.Sprintf("forms/facility-request/%s/letter.pdf", sub.TransactionID), *sub.AttachmentKey)
		assert.Equal(t, int64(120), sub.Payload["attendees"])
		require.Len(t, attachments.keys, 1)
	})

	t.Run("malformed json is 400", func(t *testing.T) {
		s := newTestService(t, &fakeSubmissionStore{}, &fakeMirror{}, &fakeSender{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/forms/sponsorship", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")

		rec := httptest.NewRecorder()
		s.mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFormSubmitMirror(t *testing.T) {
	t.Run("successful mirror recorded as synced", func(t *testing.T) {
		store := &fakeSubmissionStore{}
		mirror := &fakeMirror{enabled: true, succeed: true}
		s := newTestService(t, store, mirror, &fakeSender{})

		rec, _ := postJSON(t, s, "/api/v1/forms/sponsorship", sponsorshipPayload)
		assert.Equal(t, http.StatusCreated, rec.Code)

		require.Equal(t, 1, store.count())
		assert.Equal(t, types.SyncStatusPending, store.subs[0].SyncStatus)

		assert.Eventually(t, func() bool {
			return store.syncStatusOf(store.subs[0].ID) == types.SyncStatusSynced
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("mirror failure never fails the request", func(t *testing.T) {
		store := &fakeSubmissionStore{}
		mirror := &fakeMirror{enabled: true, succeed: false}
		s := newTestService(t, store, mirror, &fakeSender{})

		rec, _ := postJSON(t, s, "/api/v1/forms/sponsorship", sponsorshipPayload)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Eventually(t, func() bool {
			return store.syncStatusOf(store.subs[0].ID) == types.SyncStatusFailed
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("disabled mirror is never invoked", func(t *testing.T) {
		mirror := &fakeMirror{enabled: false}
		s := newTestService(t, &fakeSubmissionStore{}, mirror, &fakeSender{})

		rec, _ := postJSON(t, s, "/api/v1/forms/sponsorship", sponsorshipPayload)

		assert.Equal(t, http.StatusCreated, rec.Code)
		// Give any stray goroutine a moment before asserting.
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, 0, mirror.callCount())
	})
}

func TestFormSubmitNotifications(t *testing.T) {
	t.Run("email failure never fails the request", func(t *testing.T) {
		store := &fakeSubmissionStore{}
		sender := &fakeSender{err: errors.New("provider down")}
		s := newTestService(t, store, &fakeMirror{}, sender)

		rec, env := postJSON(t, s, "/api/v1/forms/sponsorship", sponsorshipPayload)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "success", env.Status)
		assert.Len(t, sender.sent(), 2, "both sends attempted despite failure")
	})

	t.Run("no admin alert without a configured address", func(t *testing.T) {
		sender := &fakeSender{}
		s := newTestService(t, &fakeSubmissionStore{}, &fakeMirror{}, sender)
		s.config.AdminAlertEmail = ""

		postJSON(t, s, "/api/v1/forms/sponsorship", sponsorshipPayload)

		emails := sender.sent()
		require.Len(t, emails, 1)
		assert.Equal(t, "a@x.com", emails[0].To)
	})
}

func TestHealthAndPujas(t *testing.T) {
	s := newTestService(t, &fakeSubmissionStore{}, &fakeMirror{}, &fakeSender{})

	t.Run("healthz", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		s.mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("pujas listing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pujas", nil)
		rec := httptest.NewRecorder()
		s.mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ganesh-puja")
	})
}

func TestAdminRoutes(t *testing.T) {
	t.Run("unconfigured admin auth is 503", func(t *testing.T) {
		s := newTestService(t, &fakeSubmissionStore{}, &fakeMirror{}, &fakeSender{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/submissions", nil)
		rec := httptest.NewRecorder()
		s.mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
