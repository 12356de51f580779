// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email sends the activation email, over SMTP when a host is
// configured and to the log otherwise.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"codeberg.org/oliverandrich/nutrilab/internal/config"
	"codeberg.org/oliverandrich/nutrilab/internal/i18n"
)

// deliverer is satisfied by *mail.Client.
type deliverer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Service renders and sends emails.
type Service struct {
	cfg    *config.SMTPConfig
	client deliverer
}

// NewService creates a new email service. Without an SMTP host, messages
// are written to the log instead of being sent.
func NewService(cfg *config.SMTPConfig) (*Service, error) {
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	if cfg.Host == "" {
		slog.Warn("smtp_disabled", "reason", "no smtp host configured, emails are logged")
		return &Service{cfg: cfg, client: logDeliverer{}}, nil
	}

	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, client: client}, nil
}

// SendActivation sends the account activation email with the given link.
func (s *Service) SendActivation(ctx context.Context, to, username, link string) error {
	htmlBody, textBody, err := RenderActivation(ctx, ActivationData{Username: username, Link: link})
	if err != nil {
		return err
	}
	return s.send(ctx, to, i18n.T(ctx, "EmailActivationSubject"), textBody, htmlBody)
}

// send sends a message with a plain text body and an HTML alternative.
func (s *Service) send(ctx context.Context, to, subject, text, html string) error {
	msg, err := s.newMessage(to, subject)
	if err != nil {
		return err
	}
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

func (s *Service) newMessage(to, subject string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	return msg, nil
}

func newClient(cfg *config.SMTPConfig) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	// Implicit TLS on 465, STARTTLS elsewhere
	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating mail client: %w", err)
	}
	return client, nil
}

// logDeliverer writes messages to the log. Used in development.
type logDeliverer struct{}

func (logDeliverer) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	for _, msg := range messages {
		to, err := msg.GetRecipients()
		if err != nil {
			return err
		}
		slog.Info("email_logged", "to", to, "subject", msg.GetGenHeader(mail.HeaderSubject))
	}
	return nil
}
