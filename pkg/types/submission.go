package types

import "time"

const (
	SubmissionStatusPending = "pending"

	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
	SyncStatusFailed  = "failed"
	SyncStatusSkipped = "skipped"
)

// Submission is the envelope for one validated form POST. TransactionID is
// the correlation key carried across the database row, the CMS mirror copy
// and the notification emails; it is generated once and never reused.
type Submission struct {
	ID            string         `db:"id" json:"id"`
	TransactionID string         `db:"transaction_id" json:"transactionId"`
	FormType      string         `db:"form_type" json:"formType"`
	Payload       map[string]any `db:"payload" json:"payload"`
	Status        string         `db:"status" json:"status"`
	SyncStatus    string         `db:"sync_status" json:"syncStatus"`
	AttachmentKey *string        `db:"attachment_key" json:"attachmentKey,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// FieldIssue is one validation failure. The validator reports every violated
// field in a single pass, in field declaration order.
type FieldIssue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SubmissionFilter narrows admin submission listings.
type SubmissionFilter struct {
	FormType   string
	SyncStatus string
	Limit      uint64
}
