package notification

import (
	"fmt"
	"strings"
	"sync"
)

// Template defines a reusable email template. Subject, text and HTML bodies
// share the same {{key}} placeholder syntax.
type Template struct {
	Name    string
	Subject string
	Text    string
	HTML    string
}

// Built-in template names.
const (
	TemplateInvitation             = "invitation"
	TemplateWelcome                = "welcome"
	TemplateAppointmentConfirmed   = "appointment-confirmed"
	TemplateAppointmentCancelled   = "appointment-cancelled"
	TemplateAppointmentRescheduled = "appointment-rescheduled"
)

// TemplateRegistry holds email templates and renders them with data.
type TemplateRegistry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateRegistry creates a registry with the built-in templates
// pre-registered.
func NewTemplateRegistry() *TemplateRegistry {
	r := &TemplateRegistry{templates: make(map[string]*Template)}
	r.registerBuiltIn()
	return r
}

func (r *TemplateRegistry) registerBuiltIn() {
	builtIn := []Template{
		{
			Name:    TemplateInvitation,
			Subject: "You have been invited to CareTrack",
			Text:    "Hello,\n\nYou have been invited to join CareTrack as {{role}}. Open {{invite_link}} to create your account. The invitation expires on {{expires_at}}.",
			HTML:    "<p>Hello,</p><p>You have been invited to join CareTrack as <b>{{role}}</b>. <a href=\"{{invite_link}}\">Create your account</a> before {{expires_at}}.</p>",
		},
		{
			Name:    TemplateWelcome,
			Subject: "Welcome to CareTrack",
			Text:    "Dear {{name}},\n\nYour CareTrack account is ready. You can now log in and manage your health records.",
			HTML:    "<p>Dear {{name}},</p><p>Your CareTrack account is ready. You can now log in and manage your health records.</p>",
		},
		{
			Name:    TemplateAppointmentConfirmed,
			Subject: "Appointment confirmed for {{date}}",
			Text:    "Dear {{name}},\n\nYour appointment on {{date}} has been confirmed.",
			HTML:    "<p>Dear {{name}},</p><p>Your appointment on <b>{{date}}</b> has been confirmed.</p>",
		},
		{
			Name:    TemplateAppointmentCancelled,
			Subject: "Appointment on {{date}} cancelled",
			Text:    "Dear {{name}},\n\nYour appointment on {{date}} has been cancelled.",
			HTML:    "<p>Dear {{name}},</p><p>Your appointment on <b>{{date}}</b> has been cancelled.</p>",
		},
		{
			Name:    TemplateAppointmentRescheduled,
			Subject: "Appointment moved to {{date}}",
			Text:    "Dear {{name}},\n\nYour appointment has been rescheduled to {{date}} and is awaiting confirmation.",
			HTML:    "<p>Dear {{name}},</p><p>Your appointment has been rescheduled to <b>{{date}}</b> and is awaiting confirmation.</p>",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		r.templates[t.Name] = &t
	}
}

// Register adds or replaces a template.
func (r *TemplateRegistry) Register(t Template) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.Name] = &t
}

// Render looks up a template by name and performs {{key}} replacement using
// the supplied data map. Keys present in the template but absent from data
// are left as-is.
func (r *TemplateRegistry) Render(name string, data map[string]string) (subject, text, html string, err error) {
	r.mu.RLock()
	t, ok := r.templates[name]
	r.mu.RUnlock()
	if !ok {
		return "", "", "", fmt.Errorf("template %q not found", name)
	}

	subject = t.Subject
	text = t.Text
	html = t.HTML
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		text = strings.ReplaceAll(text, placeholder, v)
		html = strings.ReplaceAll(html, placeholder, v)
	}
	return subject, text, html, nil
}
