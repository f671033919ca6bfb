package notification

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// SettingsLoader fetches the current SMTP settings from storage. It is
// called once, lazily, when the dispatcher first needs a mailer.
type SettingsLoader func(ctx context.Context) (Settings, bool, error)

// Dispatcher renders templates and delivers the result through the current
// mailer. Delivery is best-effort: failures are logged, never returned to
// the caller, so a broken SMTP server cannot block a mutation.
type Dispatcher struct {
	templates *TemplateRegistry
	logger    zerolog.Logger
	loader    SettingsLoader

	mu     sync.RWMutex
	mailer Mailer
	loaded bool
}

// NewDispatcher creates a dispatcher without a configured mailer. If loader
// is non-nil it is consulted on first dispatch to build an SMTP mailer from
// stored settings.
func NewDispatcher(logger zerolog.Logger, loader SettingsLoader) *Dispatcher {
	return &Dispatcher{
		templates: NewTemplateRegistry(),
		logger:    logger.With().Str("component", "notification").Logger(),
		loader:    loader,
	}
}

// SetMailer replaces the current mailer. Used by tests and by Reconfigure.
func (d *Dispatcher) SetMailer(m Mailer) {
	d.mu.Lock()
	d.mailer = m
	d.loaded = true
	d.mu.Unlock()
}

// Reconfigure swaps the mailer for one built from the given settings.
// Invalid settings disable delivery until valid ones arrive.
func (d *Dispatcher) Reconfigure(settings Settings) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loaded = true
	if !settings.Valid() {
		d.mailer = nil
		d.logger.Warn().Msg("smtp settings incomplete, email delivery disabled")
		return
	}
	d.mailer = NewSMTPMailer(settings)
	d.logger.Info().Str("host", settings.Host).Int("port", settings.Port).Msg("smtp mailer reconfigured")
}

// Templates exposes the registry so callers can add custom templates.
func (d *Dispatcher) Templates() *TemplateRegistry {
	return d.templates
}

func (d *Dispatcher) currentMailer(ctx context.Context) Mailer {
	d.mu.RLock()
	m, loaded := d.mailer, d.loaded
	d.mu.RUnlock()
	if loaded || d.loader == nil {
		return m
	}

	settings, found, err := d.loader(ctx)
	if err != nil {
		d.logger.Warn().Err(err).Msg("load smtp settings failed")
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loaded {
		return d.mailer
	}
	d.loaded = true
	if found && settings.Valid() {
		d.mailer = NewSMTPMailer(settings)
	}
	return d.mailer
}

// Dispatch renders the named template with data and sends it to recipient.
// Missing configuration and delivery errors are logged and swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, templateName, recipient string, data map[string]string) {
	if recipient == "" {
		return
	}

	subject, text, html, err := d.templates.Render(templateName, data)
	if err != nil {
		d.logger.Warn().Err(err).Str("template", templateName).Msg("render notification failed")
		return
	}

	mailer := d.currentMailer(ctx)
	if mailer == nil {
		d.logger.Debug().Str("template", templateName).Str("to", recipient).Msg("no mailer configured, notification dropped")
		return
	}

	if err := mailer.Send(ctx, Message{To: recipient, Subject: subject, Text: text, HTML: html}); err != nil {
		d.logger.Warn().Err(err).Str("template", templateName).Str("to", recipient).Msg("send notification failed")
		return
	}
	d.logger.Info().Str("template", templateName).Str("to", recipient).Msg("notification sent")
}
