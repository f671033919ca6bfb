package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/domain/user"
	"github.com/caretrack/caretrack/internal/platform/auth"
	"github.com/caretrack/caretrack/internal/platform/events"
	"github.com/caretrack/caretrack/internal/platform/notification"
)

var (
	ErrNotFound     = errors.New("appointment not found")
	ErrNotCancelled = errors.New("only cancelled appointments can be deleted")
)

// UserLookup resolves the owner for notification emails. Satisfied by
// *user.Service.
type UserLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
}

const notifyTimeFormat = "2006-01-02 15:04"

type Service struct {
	repo     Repository
	users    UserLookup
	notifier *notification.Dispatcher
	events   events.Publisher
}

func NewService(repo Repository, users UserLookup, notifier *notification.Dispatcher, publisher events.Publisher) *Service {
	return &Service{repo: repo, users: users, notifier: notifier, events: publisher}
}

// Create books a new appointment in pending state.
func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if a.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	if a.ScheduledAt.Before(time.Now()) {
		return fmt.Errorf("scheduled_at must be in the future")
	}
	a.Status = StatusPending
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	s.publish(ctx, a, "created")
	return nil
}

// Get returns one appointment, hiding foreign rows from non-staff callers.
func (s *Service) Get(ctx context.Context, id uuid.UUID, caller auth.Identity) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if a.UserID != caller.UserID && !caller.Role.Staff() {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// List returns all appointments, optionally filtered by status. Staff only.
func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]*Appointment, int, error) {
	if status != "" && !ValidStatus(status) {
		return nil, 0, fmt.Errorf("invalid status %q", status)
	}
	return s.repo.List(ctx, status, limit, offset)
}

func (s *Service) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}

// Cancel moves the appointment to cancelled, which the owner may do from
// pending or confirmed.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, caller auth.Identity) (*Appointment, error) {
	return s.transition(ctx, id, StatusCancelled, caller)
}

// UpdateStatus drives the lifecycle from the staff dashboard.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string, caller auth.Identity) (*Appointment, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	return s.transition(ctx, id, status, caller)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to string, caller auth.Identity) (*Appointment, error) {
	a, err := s.Get(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if !CanTransition(a.Status, to) {
		return nil, fmt.Errorf("cannot move appointment from %s to %s", a.Status, to)
	}

	a.Status = to
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.publish(ctx, a, to)

	switch to {
	case StatusConfirmed:
		s.notify(ctx, a, notification.TemplateAppointmentConfirmed)
	case StatusCancelled:
		s.notify(ctx, a, notification.TemplateAppointmentCancelled)
	}
	return a, nil
}

// Reschedule moves a pending or confirmed appointment to a new future time
// and resets it to pending for re-confirmation.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, at time.Time, caller auth.Identity) (*Appointment, error) {
	a, err := s.Get(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusPending && a.Status != StatusConfirmed {
		return nil, fmt.Errorf("cannot reschedule a %s appointment", a.Status)
	}
	if at.IsZero() {
		return nil, fmt.Errorf("scheduled_at is required")
	}
	if at.Before(time.Now()) {
		return nil, fmt.Errorf("scheduled_at must be in the future")
	}

	a.ScheduledAt = at
	a.Status = StatusPending
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.publish(ctx, a, "rescheduled")
	s.notify(ctx, a, notification.TemplateAppointmentRescheduled)
	return a, nil
}

// Delete removes an appointment, which is only allowed once it is cancelled.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, caller auth.Identity) error {
	a, err := s.Get(ctx, id, caller)
	if err != nil {
		return err
	}
	if a.Status != StatusCancelled {
		return ErrNotCancelled
	}
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	s.publish(ctx, a, "deleted")
	return nil
}

// publish emits the appointment event. Delivery is best-effort; the
// publisher logs failures.
func (s *Service) publish(ctx context.Context, a *Appointment, action string) {
	_ = s.events.PublishAppointment(ctx, events.AppointmentEvent{
		AppointmentID: a.ID,
		UserID:        a.UserID,
		Action:        action,
		Status:        a.Status,
		ScheduledAt:   a.ScheduledAt,
		OccurredAt:    time.Now().UTC(),
	})
}

func (s *Service) notify(ctx context.Context, a *Appointment, template string) {
	owner, err := s.users.Get(ctx, a.UserID)
	if err != nil {
		return
	}
	s.notifier.Dispatch(ctx, template, owner.Email, map[string]string{
		"name": owner.Name,
		"date": a.ScheduledAt.Format(notifyTimeFormat),
	})
}
