package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"i4.energy/across/tata/at"
	"i4.energy/across/tata/geo"
	"i4.energy/across/tata/messaging"
	"i4.energy/across/tata/poro"
	"i4.energy/across/tata/telemetry"
)

// adjustAccuracy turns a receiver estimate into a 68% confidence radius and
// inflates it further so that poor fixes, like those in a garage, do not
// read as movement: 10 m becomes about 22 m, 100 m about 310 m.
func adjustAccuracy(acc float64) float64 {
	return math.Pow(acc/0.68, 1.15)
}

// refresh takes a new fix and runs parking and theft detection on it.
func (s *Service) refresh(ctx context.Context) {
	log := zerolog.Ctx(ctx)
	log.Info().Msg("updating location")

	loc, ok := s.locator.Locate(ctx)
	if !ok {
		log.Info().Msg("no location")
		return
	}
	loc.Accuracy = adjustAccuracy(loc.Accuracy)
	log.Info().
		Float64("latitude", loc.Latitude).
		Float64("longitude", loc.Longitude).
		Float64("accuracy", loc.Accuracy).
		Int64("timestamp", loc.Timestamp).
		Msg("location")

	switch park := s.status.ParkLocation; {
	case park != nil:
		if geo.IsDistanceBigEnough(loc, *park) {
			log.Warn().Float64("distance", loc.DistanceTo(*park)).Msg("car theft detected")
			s.sendDebugMessage(ctx, poro.CarTheftDetected)
			s.clearParkLocation()
			s.callPairedPhone(ctx, callDuration)
			break
		}
		// Only a fix that tightens the park radius replaces it. A slowly
		// moved car can shift the park location by less than twice the
		// first park accuracy in total before updates stop.
		if loc.DistanceTo(*park) <= park.Accuracy && math.Max(loc.Accuracy*2, minParkAccuracy) < park.Accuracy {
			s.saveParkLocation(loc)
			s.sendDebugMessage(ctx, poro.ParkingUpdated)
		}

	case s.cfg.DetectParking:
		last := s.status.Location
		switch {
		case last == nil:
			s.status.LastBigLocationChange = loc.Timestamp
		case geo.IsDistanceBigEnough(loc, *last):
			s.status.LastBigLocationChange = loc.Timestamp
		case loc.Timestamp-s.status.LastBigLocationChange > parkingDelay.Milliseconds():
			log.Info().Msg("parking detected")
			s.saveParkLocation(loc)
			s.sendDebugMessage(ctx, poro.ParkingDetected)
		}
	}

	s.status.Location = &loc
}

func (s *Service) saveParkLocation(loc geo.Location) {
	loc.Accuracy = math.Max(loc.Accuracy, minParkAccuracy)
	s.status.ParkLocation = &loc
}

func (s *Service) clearParkLocation() {
	s.status.ParkLocation = nil
}

// updateBattery reads the charge level and alerts the paired phone when it
// is low, at most once per cooldown.
func (s *Service) updateBattery(ctx context.Context) {
	log := zerolog.Ctx(ctx)

	charge, err := at.SendLogged(ctx, s.client, telemetry.BatteryCharge{})
	if err != nil {
		return
	}
	s.status.Battery = float32(min(max(charge.Level, 0), 100)) / 100
	log.Info().Float32("battery", s.status.Battery).Msg("battery updated")

	if s.status.Battery >= batteryLow || !s.cfg.BatteryAlerts {
		return
	}
	now := s.board.Uptime()
	if s.status.BatteryAlerted && now-s.status.LastBatteryAlert <= batteryAlertCooldown {
		return
	}
	s.status.BatteryAlerted = true
	s.status.LastBatteryAlert = now

	if s.cfg.PhoneNumber == "" {
		return
	}
	text := fmt.Sprintf("Battery alert %.2f %%!", s.status.Battery*100)
	if err := messaging.Send(ctx, s.client, s.cfg.PhoneNumber, text); err != nil {
		log.Warn().Err(err).Msg("battery alert not sent")
	}
}
