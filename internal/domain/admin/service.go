package admin

import (
	"context"
	"fmt"

	"github.com/caretrack/caretrack/internal/domain/user"
	"github.com/caretrack/caretrack/internal/platform/auth"
	"github.com/caretrack/caretrack/internal/platform/notification"
)

// UserDirectory is satisfied by *user.Service.
type UserDirectory interface {
	List(ctx context.Context, limit, offset int) ([]*user.User, int, error)
	CountByRole(ctx context.Context) (map[auth.Role]int, error)
}

// AppointmentStats is satisfied by *appointment.Service.
type AppointmentStats interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type Service struct {
	users        UserDirectory
	appointments AppointmentStats
	smtp         SMTPRepository
	notifier     *notification.Dispatcher
}

func NewService(users UserDirectory, appointments AppointmentStats, smtp SMTPRepository, notifier *notification.Dispatcher) *Service {
	return &Service{users: users, appointments: appointments, smtp: smtp, notifier: notifier}
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*user.User, int, error) {
	return s.users.List(ctx, limit, offset)
}

// Stats aggregates user and appointment counts for the dashboard.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	byRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.appointments.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Users: make(map[string]int, len(byRole)), Appointments: byStatus}
	for role, n := range byRole {
		stats.Users[role.String()] = n
	}
	return stats, nil
}

// GetSMTPSettings returns the stored configuration, or found=false before
// the first save. The password never leaves the server.
func (s *Service) GetSMTPSettings(ctx context.Context) (*SMTPSettings, bool, error) {
	return s.smtp.Get(ctx)
}

// SaveSMTPSettings stores the configuration and swaps the live mailer.
// An empty password in the request keeps the stored one.
func (s *Service) SaveSMTPSettings(ctx context.Context, req SMTPSettingsRequest) (*SMTPSettings, error) {
	if req.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if req.Port <= 0 || req.Port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535")
	}
	if req.FromAddress == "" {
		return nil, fmt.Errorf("from_address is required")
	}

	settings := &SMTPSettings{
		Host:        req.Host,
		Port:        req.Port,
		Username:    req.Username,
		Password:    req.Password,
		FromAddress: req.FromAddress,
		UseTLS:      req.UseTLS,
	}
	if req.Password == "" {
		if existing, found, err := s.smtp.Get(ctx); err != nil {
			return nil, err
		} else if found {
			settings.Password = existing.Password
		}
	}
	if err := s.smtp.Save(ctx, settings); err != nil {
		return nil, err
	}

	s.notifier.Reconfigure(notification.Settings{
		Host:        settings.Host,
		Port:        settings.Port,
		Username:    settings.Username,
		Password:    settings.Password,
		FromAddress: settings.FromAddress,
		UseTLS:      settings.UseTLS,
	})
	return settings, nil
}

// SettingsLoader adapts the repository for the dispatcher's lazy first load.
func SettingsLoader(repo SMTPRepository) notification.SettingsLoader {
	return func(ctx context.Context) (notification.Settings, bool, error) {
		s, found, err := repo.Get(ctx)
		if err != nil || !found {
			return notification.Settings{}, false, err
		}
		return notification.Settings{
			Host:        s.Host,
			Port:        s.Port,
			Username:    s.Username,
			Password:    s.Password,
			FromAddress: s.FromAddress,
			UseTLS:      s.UseTLS,
		}, true, nil
	}
}
