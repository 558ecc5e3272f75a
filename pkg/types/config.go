package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Headless CMS mirror. Both values must be set for mirroring to run;
	// otherwise submissions are recorded with sync_status=skipped.
	CMSBaseURL  string `envconfig:"CMS_BASE_URL"`
	CMSAPIToken string `envconfig:"CMS_API_TOKEN"`

	// Transactional email (SES)
	MailFrom    string `envconfig:"MAIL_FROM"`
	MailReplyTo string `envconfig:"MAIL_REPLY_TO"`

	// Admin alert recipient. Empty disables the admin alert email.
	AdminAlertEmail string `envconfig:"ADMIN_ALERT_EMAIL"`

	// S3 bucket for form attachments. Empty disables attachment uploads.
	AttachmentBucket string `envconfig:"ATTACHMENT_BUCKET"`

	// JWKS endpoint used to verify bearer tokens on admin routes.
	AdminJWKSURL string `envconfig:"ADMIN_JWKS_URL"`
}
