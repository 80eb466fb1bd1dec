package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"i4.energy/across/tata/messaging"
	"i4.energy/across/tata/poro"
)

func (s *Service) protector(status *poro.Status) poro.Protector {
	p := poro.Protector{
		Status:  status,
		Service: poro.Bool(s.cfg.ServiceEnabled),
	}
	if l := s.status.Location; l != nil {
		p.CarLocation = &poro.CarLocation{
			Position:  poro.Position{Latitude: l.Latitude, Longitude: l.Longitude},
			Accuracy:  float32(l.Accuracy),
			Battery:   s.status.Battery,
			Timestamp: l.Timestamp,
		}
	}
	if l := s.status.ParkLocation; l != nil {
		p.ParkLocation = &poro.ParkLocation{
			Position: poro.Position{Latitude: l.Latitude, Longitude: l.Longitude},
			Accuracy: float32(l.Accuracy),
		}
	}
	return p
}

// sendMessage sends the current state to number, as prose for a person and
// as a framed machine record for the companion app.
func (s *Service) sendMessage(ctx context.Context, number string, source poro.Source, status *poro.Status) {
	p := s.protector(status)

	var text string
	switch source {
	case poro.SmsHuman:
		text = poro.Human{}.DumpProtector(p)
	case poro.SmsMachine:
		text = replyPrefix + poro.Machine{}.DumpProtector(p)
	}
	if text == "" {
		return
	}
	if err := messaging.Send(ctx, s.client, number, text); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("number", number).Msg("message not sent")
	}
}

// sendDebugMessage reports a parking or theft event to the paired phone
// when debug alerts are on.
func (s *Service) sendDebugMessage(ctx context.Context, status poro.Status) {
	zerolog.Ctx(ctx).Info().
		Bool("debug_alerts", s.cfg.DebugAlerts).
		Stringer("status", status).
		Msg("debug message")
	if !s.cfg.DebugAlerts || s.cfg.PhoneNumber == "" {
		return
	}
	s.sendMessage(ctx, s.cfg.PhoneNumber, poro.SmsMachine, poro.StatusOf(status))
}

func (s *Service) callPairedPhone(ctx context.Context, d time.Duration) {
	zerolog.Ctx(ctx).Info().Str("number", s.cfg.PhoneNumber).Msg("calling paired phone")
	if s.cfg.PhoneNumber == "" {
		return
	}
	messaging.Call(ctx, s.client, s.board, s.cfg.PhoneNumber, d)
}
