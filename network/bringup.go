package network

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"i4.energy/across/tata/at"
	"i4.energy/across/tata/board"
)

const (
	// DefaultRegistrationAttempts bounds the registration poll of one
	// bring-up round.
	DefaultRegistrationAttempts = 30

	fullFunctionality = 1
	pinWait           = 60 * time.Second
)

var (
	// ErrNotFunctional is returned when the module is not in full
	// functionality mode.
	ErrNotFunctional = errors.New("network: module not fully functional")
	// ErrNotRegistered is returned when registration polling ran out of
	// attempts.
	ErrNotRegistered = errors.New("network: not registered")
)

// BringUp gets the module answering and registered on the network. A
// failed round power-cycles the module and starts over; BringUp only gives
// up when ctx is done.
//
// Once registered the SIM PIN state is checked. A SIM asking for a PIN
// needs an operator: the LED is lit and BringUp pauses for a minute before
// carrying on.
func BringUp(ctx context.Context, c at.Client, b board.Board, attempts int) error {
	log := zerolog.Ctx(ctx)
	if attempts <= 0 {
		attempts = DefaultRegistrationAttempts
	}

	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := register(ctx, c, b, attempts)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("round", round).Msg("network bring-up failed, restarting module")
		b.RestartModule(ctx)
	}

	if code, err := at.SendLogged(ctx, c, PINStatus{}); err == nil && code != PINReady {
		b.SetLED(true)
		log.Error().Str("pin", code).Msg("SIM card asks for a PIN, disable the PIN lock")
		b.Sleep(ctx, pinWait)
	}

	if s, err := at.SendLogged(ctx, c, SignalQuality{}); err == nil {
		dbm, _ := s.DBm()
		log.Info().Int("rssi", s.RSSI).Int("ber", s.BER).Int("dbm", dbm).Msg("signal quality")
	}
	if o, err := at.SendLogged(ctx, c, Operator{}); err == nil {
		log.Info().Str("operator", o.Name).Int("mode", o.Mode).Msg("operator")
	}
	return ctx.Err()
}

func register(ctx context.Context, c at.Client, b board.Board, attempts int) error {
	log := zerolog.Ctx(ctx)

	if _, err := at.SendLogged(ctx, c, EchoOff{}); err != nil {
		return fmt.Errorf("echo off: %w", err)
	}
	if _, err := at.SendLogged(ctx, c, Attention{}); err != nil {
		return fmt.Errorf("liveness: %w", err)
	}
	fun, err := at.SendLogged(ctx, c, Functionality{})
	if err != nil {
		return fmt.Errorf("functionality: %w", err)
	}
	if fun != fullFunctionality {
		return fmt.Errorf("%w: level %d", ErrNotFunctional, fun)
	}
	if mode, err := at.SendLogged(ctx, c, SlowClock{}); err == nil {
		log.Info().Int("mode", mode).Msg("slow clock")
	}

	for i := range attempts {
		reg, err := at.SendLogged(ctx, c, Registration{})
		if err == nil {
			log.Info().Stringer("status", reg.Status).Int("attempt", i+1).Msg("network registration")
			if reg.Registered() {
				return nil
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.Sleep(ctx, time.Second)
	}
	return fmt.Errorf("%w after %d attempts", ErrNotRegistered, attempts)
}
