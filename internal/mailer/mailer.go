package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sirupsen/logrus"
)

// SESAPI is the slice of the SES v2 client the mailer uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends transactional email from a fixed configured sender. Send
// returns the provider message id or an error value; delivery failure never
// decides the HTTP outcome of a submission.
type Mailer struct {
	client  SESAPI
	from    string
	replyTo string
	logger  *logrus.Logger
}

func New(client SESAPI, from, replyTo string, logger *logrus.Logger) *Mailer {
	return &Mailer{
		client:  client,
		from:    from,
		replyTo: replyTo,
		logger:  logger,
	}
}

func (m *Mailer) Send(ctx context.Context, email Email) (string, error) {
	if email.To == "" {
		return "", fmt.Errorf("missing recipient")
	}

	if email.HTML == "" && email.Text == "" {
		return "", fmt.Errorf("at least one of html or text body is required")
	}

	body := &sestypes.Body{}
	if email.HTML != "" {
		body.Html = &sestypes.Content{Data: aws.String(email.HTML)}
	}
	if email.Text != "" {
		body.Text = &sestypes.Content{Data: aws.String(email.Text)}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &sestypes.Destination{
			ToAddresses: []string{email.To},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(email.Subject)},
				Body:    body,
			},
		},
	}

	if m.replyTo != "" {
		input.ReplyToAddresses = []string{m.replyTo}
	}

	out, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}

	messageID := aws.ToString(out.MessageId)
	m.logger.WithFields(logrus.Fields{
		"to":         email.To,
		"subject":    email.Subject,
		"message_id": messageID,
	}).Debug("email sent")

	return messageID, nil
}
