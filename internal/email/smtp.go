// Package email sends transactional email over the configured SMTP server.
package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"imovel_portal_backend/platform/config"
)

const (
	subjectNewLead      = "Novo lead recebido"
	subjectLeadAssigned = "Lead assumido"
)

// NewLeadNotice carries the fields of the admin notification for a new lead.
type NewLeadNotice struct {
	Nome         string
	Telefone     string
	Mensagem     string
	Origem       string
	ImovelTitulo string
}

// Sender delivers the lead notification emails.
type Sender interface {
	SendNewLeadEmail(ctx context.Context, toEmail string, notice NewLeadNotice) error
	SendLeadAssignedEmail(ctx context.Context, toEmail, corretorNome, leadNome string) error
}

// NewSender builds a Sender from configuration. Returns a no-op sender when
// email delivery is disabled.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return noopSender{}
	}

	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

// SMTPSender implements Sender using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendNewLeadEmail(ctx context.Context, toEmail string, notice NewLeadNotice) error {
	content, err := renderEmailTemplate("new_lead.html", newLeadEmailData{
		baseEmailData: baseEmailData{
			Title:   subjectNewLead,
			Heading: "Novo lead no portal",
		},
		Nome:         notice.Nome,
		Telefone:     notice.Telefone,
		Mensagem:     notice.Mensagem,
		Origem:       notice.Origem,
		ImovelTitulo: notice.ImovelTitulo,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectNewLead, content)
}

func (s *SMTPSender) SendLeadAssignedEmail(ctx context.Context, toEmail, corretorNome, leadNome string) error {
	content, err := renderEmailTemplate("lead_assigned.html", leadAssignedEmailData{
		baseEmailData: baseEmailData{
			Title:   subjectLeadAssigned,
			Heading: "Lead assumido",
		},
		CorretorNome: corretorNome,
		LeadNome:     leadNome,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectLeadAssigned, content)
}

// noopSender is used when SMTP is not configured.
type noopSender struct{}

func (noopSender) SendNewLeadEmail(context.Context, string, NewLeadNotice) error {
	return nil
}

func (noopSender) SendLeadAssignedEmail(context.Context, string, string, string) error {
	return nil
}
