package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/nextgencrm/nextgencrm-go/internal/infra/http/middleware"
)

var conversionNoticeTmpl = template.Must(template.New("conversion_notice").Parse(`
<p>Hi,</p>
<p>The lead <strong>{{.LeadName}}</strong> assigned to you was just converted.</p>
<p>A new organization <strong>{{.OrganizationName}}</strong> and its contact are now in the CRM.</p>
`))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

func (s *EmailSender) SendConversionNotice(to, leadName, organizationName string) error {
	data := ConversionNoticeData{
		LeadName:         leadName,
		OrganizationName: organizationName,
	}

	var body bytes.Buffer
	if err := conversionNoticeTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render conversion notice: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Lead converted: %s", leadName))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		middleware.RecordIntegrationError("smtp")
		return fmt.Errorf("failed to send SMTP email: %w", err)
	}

	return nil
}
