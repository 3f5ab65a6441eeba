// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

// Package mailer delivers the account lifecycle emails over SMTP:
// verification links, password reset links and two-factor codes. Delivery
// is awaited, a failed send surfaces to the caller instead of being
// logged and dropped.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/campuskit/campuskit/internal/pkg/logger"
)

// Config holds the SMTP connection and sender settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	// UseTLS upgrades the connection with STARTTLS.
	UseTLS bool
	// UseSSL dials with implicit TLS (port 465).
	UseSSL bool
	// SkipVerify disables certificate verification, for self-signed
	// development servers only.
	SkipVerify bool

	FromAddress string
	FromName    string

	// FrontendURL is the base used in verification and reset links,
	// e.g. https://portal.example.edu.
	FrontendURL string

	Timeout time.Duration
}

// Mailer sends templated account emails through one SMTP server.
type Mailer struct {
	config Config
	send   sendFunc
	log    *logger.Logger
}

// sendFunc delivers one raw message. Swappable in tests.
type sendFunc func(ctx context.Context, to string, message []byte) error

// New creates a Mailer. Host and FromAddress are required.
func New(config Config, log *logger.Logger) (*Mailer, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("mailer: SMTP host is required")
	}
	if config.FromAddress == "" {
		return nil, fmt.Errorf("mailer: from address is required")
	}
	if config.Port == 0 {
		switch {
		case config.UseSSL:
			config.Port = 465
		case config.UseTLS:
			config.Port = 587
		default:
			config.Port = 25
		}
	}
	if config.FromName == "" {
		config.FromName = "campuskit"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}

	m := &Mailer{config: config, log: log.Named("mailer")}
	m.send = m.smtpSend
	return m, nil
}

// SendVerificationEmail mails the account verification link.
func (m *Mailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	link := m.frontendLink("verifyAccount", token)
	body := renderTemplate(verificationTemplate, templateData{Name: name, Link: link, Code: token})
	return m.deliver(ctx, to, "Verify your account", body)
}

// SendPasswordResetEmail mails the password reset link. The link expires
// in one hour.
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	link := m.frontendLink("resetPassword", token)
	body := renderTemplate(resetTemplate, templateData{Name: name, Link: link, Code: token})
	return m.deliver(ctx, to, "Reset your password", body)
}

// SendTwoFactorCode mails the login code. The code expires in five minutes.
func (m *Mailer) SendTwoFactorCode(ctx context.Context, to, name, code string) error {
	body := renderTemplate(twoFactorTemplate, templateData{Name: name, Code: code})
	return m.deliver(ctx, to, "Your login code", body)
}

func (m *Mailer) frontendLink(route, token string) string {
	base := strings.TrimRight(m.config.FrontendURL, "/")
	return fmt.Sprintf("%s/%s/%s", base, route, token)
}

func (m *Mailer) deliver(ctx context.Context, to, subject, htmlBody string) error {
	message := m.buildMessage(to, subject, htmlBody)
	if err := m.send(ctx, to, message); err != nil {
		m.log.Error("sending email", "subject", subject, "error", err)
		return fmt.Errorf("sending %q email: %w", subject, err)
	}
	m.log.Debug("email sent", "subject", subject)
	return nil
}

// buildMessage assembles the MIME message with a base64-encoded HTML body.
func (m *Mailer) buildMessage(to, subject, body string) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("From: %s\r\n", formatAddress(m.config.FromName, m.config.FromAddress)))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", encodeHeader(subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	buf.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	buf.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString([]byte(body))
	// RFC 2045 line limit.
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		buf.WriteString(encoded[i:end])
		buf.WriteString("\r\n")
	}

	return buf.Bytes()
}

// smtpSend performs one SMTP transaction.
func (m *Mailer) smtpSend(ctx context.Context, to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	tlsConfig := &tls.Config{
		ServerName:         m.config.Host,
		InsecureSkipVerify: m.config.SkipVerify, //nolint:gosec // configurable for self-signed dev servers
	}

	dialer := &net.Dialer{Timeout: m.config.Timeout}

	var conn net.Conn
	var err error
	if m.config.UseSSL {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("connecting to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	if m.config.UseTLS && !m.config.UseSSL {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("starting TLS: %w", err)
			}
		}
	}

	if m.config.Username != "" && m.config.Password != "" {
		auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication: %w", err)
		}
	}

	if err := client.Mail(m.config.FromAddress); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("opening data: %w", err)
	}
	if _, err := w.Write(message); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing data: %w", err)
	}

	return client.Quit()
}

func formatAddress(name, address string) string {
	if name == "" {
		return address
	}
	if needsEncoding(name) {
		return fmt.Sprintf("=?UTF-8?B?%s?= <%s>", base64.StdEncoding.EncodeToString([]byte(name)), address)
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

func encodeHeader(s string) string {
	if needsEncoding(s) {
		return fmt.Sprintf("=?UTF-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(s)))
	}
	return s
}

func needsEncoding(s string) bool {
	for _, r := range s {
		if r > 127 {
			return true
		}
	}
	return false
}
