package admin

import "context"

// SMTPRepository persists the singleton mail configuration. Get reports
// found=false before the first save.
type SMTPRepository interface {
	Get(ctx context.Context) (*SMTPSettings, bool, error)
	Save(ctx context.Context, s *SMTPSettings) error
}
