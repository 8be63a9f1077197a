package delivery

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"go-broker/internal/config"

	"go.uber.org/zap"
)

// Message is one outgoing e-mail with an optional attachment
type Message struct {
	To             []string
	Subject        string
	Body           string
	AttachmentName string
	AttachmentType string
	Attachment     []byte
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends mail through the configured relay
type SMTPMailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
	send     sendFunc
}

// LogMailer only logs; it is used when no SMTP host is configured
type LogMailer struct {
	logger *zap.Logger
}

func NewMailer(cfg *config.Config, logger *zap.Logger) Mailer {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set, scheduled reports will be logged instead of e-mailed")
		return &LogMailer{logger: logger}
	}
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		send:     smtp.SendMail,
	}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info("report e-mail (not sent)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("attachment", msg.AttachmentName),
		zap.Int("bytes", len(msg.Attachment)),
	)
	return nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	if err := m.send(addr, auth, m.from, msg.To, buildMessage(m.from, msg)); err != nil {
		return fmt.Errorf("failed to send email with attachment: %w", err)
	}
	return nil
}

const boundary = "BrokerReportBoundary"

func buildMessage(from string, msg Message) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s\r\n", boundary))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.Body)
	buf.WriteString("\r\n")

	if len(msg.Attachment) > 0 {
		contentType := msg.AttachmentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		buf.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", contentType, msg.AttachmentName))
		buf.WriteString("Content-Transfer-Encoding: base64\r\n")
		buf.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n", msg.AttachmentName))
		buf.WriteString("\r\n")

		encoded := base64.StdEncoding.EncodeToString(msg.Attachment)
		for len(encoded) > 76 {
			buf.WriteString(encoded[:76] + "\r\n")
			encoded = encoded[76:]
		}
		buf.WriteString(encoded + "\r\n")
	}

	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return buf.Bytes()
}
