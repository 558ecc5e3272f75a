package mailer

import (
	"context"
	"errors"
	"io"
	"testing"

	"mandir/internal/forms"
	"mandir/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-123")}, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestMailerSend(t *testing.T) {
	t.Run("returns provider message id", func(t *testing.T) {
		ses := &fakeSES{}
		m := New(ses, "office@temple.org", "office@temple.org", testLogger())

		id, err := m.Send(context.Background(), Email{
			To:      "a@x.com",
			Subject: "hello",
			Text:    "body",
		})

		require.NoError(t, err)
		assert.Equal(t, "msg-123", id)
		require.Len(t, ses.inputs, 1)
		assert.Equal(t, "office@temple.org", aws.ToString(ses.inputs[0].FromEmailAddress))
		assert.Equal(t, []string{"a@x.com"}, ses.inputs[0].Destination.ToAddresses)
		assert.Equal(t, []string{"office@temple.org"}, ses.inputs[0].ReplyToAddresses)
	})

	t.Run("provider failure returns an error value", func(t *testing.T) {
		ses := &fakeSES{err: errors.New("throttled")}
		m := New(ses, "office@temple.org", "", testLogger())

		_, err := m.Send(context.Background(), Email{To: "a@x.com", Subject: "s", Text: "b"})
		assert.Error(t, err)
	})

	t.Run("requires a body", func(t *testing.T) {
		m := New(&fakeSES{}, "office@temple.org", "", testLogger())

		_, err := m.Send(context.Background(), Email{To: "a@x.com", Subject: "s"})
		assert.Error(t, err)
	})

	t.Run("requires a recipient", func(t *testing.T) {
		m := New(&fakeSES{}, "office@temple.org", "", testLogger())

		_, err := m.Send(context.Background(), Email{Subject: "s", Text: "b"})
		assert.Error(t, err)
	})
}

func TestTemplates(t *testing.T) {
	desc, ok := forms.Lookup("sponsorship")
	require.True(t, ok)

	sub := &types.Submission{
		TransactionID: "req_00000000000000000000000000000000",
		FormType:      "sponsorship",
		Payload: map[string]any{
			"devoteeName":     "Asha Patel",
			"email":           "asha@example.com",
			"phone":           "555-0100",
			"pujaId":          "p1",
			"sponsorshipDate": "2025-01-01",
		},
	}

	t.Run("confirmation addresses the submitter", func(t *testing.T) {
		email := Confirmation(desc, sub)

		assert.Equal(t, "asha@example.com", email.To)
		assert.Contains(t, email.Subject, sub.TransactionID)
		assert.Contains(t, email.HTML, "Asha Patel")
		assert.Contains(t, email.HTML, sub.TransactionID)
		assert.Contains(t, email.Text, "Devotee Name: Asha Patel")
	})

	t.Run("admin alert addresses the configured admin", func(t *testing.T) {
		email := AdminAlert("admin@temple.org", desc, sub)

		assert.Equal(t, "admin@temple.org", email.To)
		assert.Contains(t, email.Subject, "Puja Sponsorship")
		assert.Contains(t, email.HTML, sub.TransactionID)
	})
}
