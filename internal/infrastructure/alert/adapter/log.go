package adapter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kanaksh-py/startup-backend/internal/infrastructure/alert/port"
)

// LogSender writes alerts to the structured log. It stands in until a mail or push provider is wired.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log.With().Str("component", "alert").Logger()}
}

var _ port.Sender = (*LogSender)(nil)

func (s *LogSender) SendDormancyWarning(_ context.Context, w port.DormancyWarning) error {
	s.log.Info().
		Str("profile_kind", w.ProfileKind).
		Str("profile_id", w.ProfileID).
		Time("last_activity", w.LastActivity).
		Int("days_until_deactivation", w.DaysUntilDeactivation).
		Time("deactivation_at", w.DeactivationAt).
		Msg("dormancy warning")
	return nil
}
