package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"i4.energy/across/tata/messaging"
	"i4.energy/across/tata/poro"
)

const (
	humanPrefix   = "$tATA"
	machinePrefix = "$TATA"
	replyPrefix   = "$tATA/"
)

// handleIncomingCall answers the paired phone and rejects everyone else.
func (s *Service) handleIncomingCall(ctx context.Context, number string) {
	if s.cfg.PhoneNumber != "" && number == s.cfg.PhoneNumber {
		s.board.Sleep(ctx, answerDelay)
		messaging.AnswerCall(ctx, s.client)
		return
	}
	zerolog.Ctx(ctx).Info().Str("number", number).Msg("rejecting call")
	messaging.RejectCall(ctx, s.client)
}

// parseCommand decodes "<prefix>/<payload>/<password>". The prefix picks
// the human or the machine Watcher format.
func (s *Service) parseCommand(text, sender string) (poro.Watcher, error) {
	parts := strings.Split(text, "/")
	if len(parts) != 3 {
		return poro.Watcher{}, fmt.Errorf("%w: %d parts", ErrMalformedCommand, len(parts))
	}
	prefix, payload, password := parts[0], parts[1], parts[2]
	if password != s.cfg.SMSPassword {
		return poro.Watcher{}, ErrUnauthorized
	}

	var (
		w      poro.Watcher
		source poro.Source
		err    error
	)
	switch prefix {
	case humanPrefix:
		w, err = poro.Human{}.ParseWatcher(payload)
		source = poro.SmsHuman
	case machinePrefix:
		w, err = poro.Machine{}.ParseWatcher(payload)
		source = poro.SmsMachine
	default:
		return poro.Watcher{}, fmt.Errorf("%w: prefix %q", ErrMalformedCommand, prefix)
	}
	if err != nil {
		return poro.Watcher{}, err
	}
	w.Receiver = &poro.ReceiverInfo{Source: source, PhoneNumber: sender}
	return w, nil
}

// handleMessage runs the remote command stored at index. Anything that is
// not an unread, authenticated command is dropped.
func (s *Service) handleMessage(ctx context.Context, index int) {
	log := zerolog.Ctx(ctx)

	msg, err := messaging.Read(ctx, s.client, index)
	if err != nil {
		log.Warn().Err(err).Int("index", index).Msg("sms read failed")
		return
	}
	if msg.Status != messaging.ReceivedUnread {
		log.Debug().Str("status", string(msg.Status)).Msg("skipping message")
		return
	}

	w, err := s.parseCommand(msg.Text, msg.Sender)
	if err != nil {
		log.Warn().Err(err).Str("sender", msg.Sender).Msg("dropping message")
		return
	}
	s.apply(ctx, w)
}

func (s *Service) apply(ctx context.Context, w poro.Watcher) {
	receiver := w.Receiver

	if w.Service != nil {
		s.cfg.ServiceEnabled = *w.Service
		zerolog.Ctx(ctx).Info().Bool("enabled", s.cfg.ServiceEnabled).Msg("service toggled")
	}

	refresh := w.Refresh != nil && *w.Refresh
	if refresh {
		s.updateBattery(ctx)
		s.refresh(ctx)
	}

	if w.Park != nil {
		if *w.Park && s.status.Location != nil {
			s.saveParkLocation(*s.status.Location)
		} else {
			s.clearParkLocation()
		}
	}

	if refresh && receiver != nil {
		s.sendMessage(ctx, receiver.PhoneNumber, receiver.Source, nil)
	}

	if w.Call != nil && *w.Call && receiver != nil {
		messaging.Call(ctx, s.client, s.board, receiver.PhoneNumber, callDuration)
	}
}
