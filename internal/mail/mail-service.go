package mail

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/smtp"
	"strings"
	"time"
)

type MailService struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	mailFrom     string
	mailFromName string
}

func NewMailService(
	smtpHost string,
	smtpPort string,
	smtpUser string,
	smtpPassword string,
	mailFrom string,
	mailFromName string,
) *MailService {
	return &MailService{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		mailFrom:     mailFrom,
		mailFromName: mailFromName,
	}
}

var notificationTmpl = template.Must(template.New("notification").Parse(`
<div style="font-family:Arial,sans-serif;max-width:560px;margin:0 auto">
  <h2>{{.Title}}</h2>
  <p>{{.Body}}</p>
  {{if .Link}}<p><a href="{{.Link}}">View details</a></p>{{end}}
</div>
`))

func (s *MailService) SendNotification(to, subject, body, link string) error {
	htmlBody, err := s.renderNotification(subject, body, link)
	if err != nil {
		return err
	}

	fromHeader := fmt.Sprintf("%s <%s>", s.mailFromName, s.mailFrom)

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	addr := s.smtpHost + ":" + s.smtpPort
	log.Printf("[MAIL] smtp sending to=%s via=%s", to, addr)

	if err := s.sendSMTPWithTimeout(to, []byte(msg)); err != nil {
		return err
	}

	log.Printf("[MAIL] sent to=%s", to)
	return nil
}

func (s *MailService) renderNotification(title, body, link string) (string, error) {
	var buf bytes.Buffer
	err := notificationTmpl.Execute(&buf, map[string]string{
		"Title": title,
		"Body":  body,
		"Link":  link,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *MailService) sendSMTPWithTimeout(to string, msg []byte) error {
	addr := s.smtpHost + ":" + s.smtpPort

	conn, err := net.DialTimeout("tcp", addr, 8*time.Second)
	if err != nil {
		return err
	}
	// deadline covers the whole connection, not just the dial
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	c, err := smtp.NewClient(conn, s.smtpHost)
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	// STARTTLS
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.smtpHost}); err != nil {
			return err
		}
	}
	// Auth
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)
	if err := c.Auth(auth); err != nil {
		return err
	}

	// From/To
	if err := c.Mail(s.mailFrom); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	// Data
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
