package mailer

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	texttemplate "text/template"

	"mandir/internal/forms"
	"mandir/pkg/types"
)

type fieldView struct {
	Label string
	Value string
}

type emailView struct {
	Title         string
	TransactionID string
	Fields        []fieldView
}

var confirmationHTML = template.Must(template.New("confirmation").Parse(`
<p>Namaste,</p>
<p>We have received your {{.Title}} request. Our office will be in touch if anything further is needed.</p>
<table cellpadding="4">
{{range .Fields}}  <tr><td><strong>{{.Label}}</strong></td><td>{{.Value}}</td></tr>
{{end}}</table>
<p>Reference number: {{.TransactionID}}</p>
<p>With gratitude,<br>The Temple Office</p>
`))

var confirmationText = texttemplate.Must(texttemplate.New("confirmation").Parse(`Namaste,

We have received your {{.Title}} request.

{{range .Fields}}{{.Label}}: {{.Value}}
{{end}}
Reference number: {{.TransactionID}}

With gratitude,
The Temple Office
`))

var adminAlertHTML = template.Must(template.New("admin").Parse(`
<p>New {{.Title}} submission received.</p>
<table cellpadding="4">
{{range .Fields}}  <tr><td><strong>{{.Label}}</strong></td><td>{{.Value}}</td></tr>
{{end}}</table>
<p>Transaction: {{.TransactionID}}</p>
`))

// Confirmation builds the submitter-facing email for one submission.
func Confirmation(desc *forms.Descriptor, sub *types.Submission) Email {
	view := buildView(desc, sub)

	return Email{
		To:      recipient(desc, sub),
		Subject: fmt.Sprintf("We received your %s request (%s)", desc.Title, sub.TransactionID),
		HTML:    render(confirmationHTML.Execute, view),
		Text:    renderText(view),
	}
}

// AdminAlert builds the internal notification sent when an admin address is
// configured.
func AdminAlert(adminEmail string, desc *forms.Descriptor, sub *types.Submission) Email {
	view := buildView(desc, sub)

	return Email{
		To:      adminEmail,
		Subject: fmt.Sprintf("New %s submission %s", desc.Title, sub.TransactionID),
		HTML:    render(adminAlertHTML.Execute, view),
	}
}

func recipient(desc *forms.Descriptor, sub *types.Submission) string {
	email, _ := sub.Payload[desc.EmailField()].(string)
	return email
}

func buildView(desc *forms.Descriptor, sub *types.Submission) emailView {
	view := emailView{
		Title:         desc.Title,
		TransactionID: sub.TransactionID,
	}

	for _, f := range desc.Fields {
		v, ok := sub.Payload[f.Name]
		if !ok {
			continue
		}
		view.Fields = append(view.Fields, fieldView{
			Label: f.Label,
			Value: fmt.Sprintf("%v", v),
		})
	}

	return view
}

func render(execute func(wr io.Writer, data any) error, view emailView) string {
	var sb strings.Builder
	if err := execute(&sb, view); err != nil {
		return ""
	}
	return sb.String()
}

func renderText(view emailView) string {
	var sb strings.Builder
	if err := confirmationText.Execute(&sb, view); err != nil {
		return ""
	}
	return sb.String()
}
