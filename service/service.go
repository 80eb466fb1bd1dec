// Package service is the tracker's orchestrator. It owns the configuration
// and device status, runs parking, theft and battery detection, and answers
// calls and remote commands from the paired phone.
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"i4.energy/across/tata/at"
	"i4.energy/across/tata/board"
	"i4.energy/across/tata/messaging"
	"i4.energy/across/tata/network"
	"i4.energy/across/tata/telemetry"
	"i4.energy/across/tata/urc"
)

const (
	callDuration    = 5 * time.Minute
	chargeOnlyCall  = 10 * time.Second
	answerDelay     = 2 * time.Second
	parkingDelay    = 25 * time.Minute
	minParkAccuracy = 150.0 // meters

	batteryLow           = 0.25
	batteryAlertCooldown = 3 * time.Hour
)

// Deps are the collaborators of a Service.
type Deps struct {
	Client at.Client
	Board  board.Board
	// Events delivers unsolicited module events. Optional.
	Events *urc.Subscription
	// Locator defaults to GNSS with a cell tower fallback.
	Locator telemetry.Locator
}

// Service runs on a single goroutine, the one calling Init and Run. Other
// goroutines talk to it through Status and RequestRefresh.
type Service struct {
	cfg     Configuration
	status  DeviceStatus
	client  at.Client
	board   board.Board
	locator telemetry.Locator
	events  *urc.Subscription

	// received holds storage indices of handled messages, oldest first.
	received []int

	requests chan request
	stopped  chan struct{}
}

type request struct {
	refresh bool
	reply   chan Snapshot
}

func New(cfg Configuration, deps Deps) *Service {
	s := &Service{
		cfg:      cfg,
		client:   deps.Client,
		board:    deps.Board,
		locator:  deps.Locator,
		events:   deps.Events,
		requests: make(chan request),
		stopped:  make(chan struct{}),
	}
	if s.locator == nil {
		s.locator = telemetry.Chain(
			telemetry.GNSS{Client: s.client, Board: s.board, MaxRetries: cfg.LocatorPollCount},
			telemetry.CellTower{
				Client:     s.client,
				Board:      s.board,
				MaxRetries: cfg.LocatorPollCount,
				APN:        cfg.APN,
				Server:     cfg.LocationServer,
			},
		)
	}
	return s
}

// Init brings the module up: network registration, caller ID and SMS
// settings. The LED flashes three times before and ten times after.
func (s *Service) Init(ctx context.Context) error {
	log := zerolog.Ctx(ctx)
	log.Info().
		Str("phone_number", s.cfg.PhoneNumber).
		Bool("sms_password_set", s.cfg.SMSPassword != "").
		Bool("service_enabled", s.cfg.ServiceEnabled).
		Int("locator_poll_count", s.cfg.LocatorPollCount).
		Int("check_period_seconds", s.cfg.CheckPeriodSeconds).
		Bool("call_after_boot", s.cfg.CallAfterBoot).
		Bool("debug_alerts", s.cfg.DebugAlerts).
		Bool("battery_alerts", s.cfg.BatteryAlerts).
		Bool("detect_parking", s.cfg.DetectParking).
		Int("keep_n_sms", s.cfg.KeepNSMS).
		Msg("configuration")

	s.flash(ctx, 3, 500*time.Millisecond)

	log.Info().Msg("init network")
	if err := network.BringUp(ctx, s.client, s.board, 0); err != nil {
		return err
	}
	log.Info().Msg("init call")
	messaging.EnableCallerID(ctx, s.client)
	log.Info().Msg("init sms")
	messaging.Init(ctx, s.client)

	s.flash(ctx, 10, 100*time.Millisecond)

	if s.cfg.CallAfterBoot {
		s.callPairedPhone(ctx, callDuration)
	}
	return ctx.Err()
}

func (s *Service) flash(ctx context.Context, n int, d time.Duration) {
	for range n {
		s.board.SetLED(true)
		s.board.Sleep(ctx, d)
		s.board.SetLED(false)
		s.board.Sleep(ctx, d)
	}
}

// Run handles whichever is ready first: a tick, an alarm, a module event
// or a request from another goroutine. It returns when ctx is done.
//
// A tick runs the battery and location check while the service is
// enabled. An alarm runs SMS storage housekeeping.
func (s *Service) Run(ctx context.Context, ticks, alarms <-chan time.Time) error {
	defer close(s.stopped)
	log := zerolog.Ctx(ctx)

	var events <-chan urc.Event
	if s.events != nil {
		events = s.events.C()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticks:
			if s.cfg.ServiceEnabled {
				s.updateBattery(ctx)
				s.refresh(ctx)
			}

		case <-alarms:
			s.housekeeping(ctx)

		case ev, ok := <-events:
			if !ok {
				log.Warn().Msg("event stream closed")
				events = nil
				continue
			}
			if n := s.events.Lagged(); n > 0 {
				log.Warn().Uint64("dropped", n).Msg("events lagged")
			}
			s.handleEvent(ctx, ev)

		case req := <-s.requests:
			if req.refresh {
				req.reply <- s.snapshot()
				s.updateBattery(ctx)
				s.refresh(ctx)
				continue
			}
			req.reply <- s.snapshot()
		}
	}
}

func (s *Service) handleEvent(ctx context.Context, ev urc.Event) {
	log := zerolog.Ctx(ctx)
	switch ev.Kind {
	case urc.CallerID:
		log.Info().Str("number", ev.Number).Msg("incoming call")
		s.handleIncomingCall(ctx, ev.Number)
	case urc.NewMessage:
		log.Info().Int("index", ev.Index).Str("storage", ev.Storage).Msg("new message")
		s.received = append(s.received, ev.Index)
		s.handleMessage(ctx, ev.Index)
	case urc.ChargeOnlyMode:
		log.Warn().Msg("module in charge only mode")
		s.callPairedPhone(ctx, chargeOnlyCall)
	case urc.PinStatus:
		log.Info().Str("code", ev.Code).Msg("pin status")
	case urc.UnderVoltageWarning, urc.UnderVoltagePowerDown, urc.OverVoltageWarning, urc.OverVoltagePowerDown:
		log.Warn().Stringer("event", ev.Kind).Msg("power event")
	default:
		log.Info().Stringer("event", ev.Kind).Msg("event")
	}
}

// Status returns a snapshot of the orchestrator state.
func (s *Service) Status(ctx context.Context) (Snapshot, error) {
	return s.ask(ctx, request{})
}

// RequestRefresh asks Run for an immediate battery and location check. It
// returns the state from before the check once Run has taken the request.
func (s *Service) RequestRefresh(ctx context.Context) (Snapshot, error) {
	return s.ask(ctx, request{refresh: true})
}

func (s *Service) ask(ctx context.Context, req request) (Snapshot, error) {
	req.reply = make(chan Snapshot, 1)
	select {
	case s.requests <- req:
	case <-s.stopped:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	return <-req.reply, nil
}

// housekeeping deletes the oldest handled messages beyond KeepNSMS and logs
// the signal quality.
func (s *Service) housekeeping(ctx context.Context) {
	log := zerolog.Ctx(ctx)

	keep := max(s.cfg.KeepNSMS, 0)
	for len(s.received) > keep {
		index := s.received[0]
		if err := messaging.Delete(ctx, s.client, index); err != nil {
			log.Warn().Err(err).Int("index", index).Msg("sms delete failed")
			break
		}
		s.received = s.received[1:]
	}

	if sig, err := at.SendLogged(ctx, s.client, network.SignalQuality{}); err == nil {
		dbm, _ := sig.DBm()
		log.Info().Int("rssi", sig.RSSI).Int("dbm", dbm).Msg("signal quality")
	}
}
