package poro

import "fmt"

// Machine is the compact token format used between device and app.
type Machine struct{}

func (Machine) DumpProtector(p Protector) string {
	var e encoder
	if c := p.CarLocation; c != nil {
		e.float64(c.Position.Latitude)
		e.float64(c.Position.Longitude)
		e.float32(c.Accuracy)
		e.float32(c.Battery)
		e.integer(c.Timestamp)
	} else {
		e.null()
	}
	if pl := p.ParkLocation; pl != nil {
		e.float64(pl.Position.Latitude)
		e.float64(pl.Position.Longitude)
		e.float32(pl.Accuracy)
	} else {
		e.null()
	}
	if p.Status != nil {
		e.integer(int64(*p.Status))
	} else {
		e.null()
	}
	e.optionalBool(p.Service)
	return e.String()
}

func (Machine) ParseProtector(s string) (Protector, error) {
	var p Protector
	d := newDecoder(s)

	if !d.absent() {
		var c CarLocation
		var err error
		if c.Position, err = d.position(); err != nil {
			return p, err
		}
		if c.Accuracy, err = d.float32(); err != nil {
			return p, err
		}
		if c.Battery, err = d.float32(); err != nil {
			return p, err
		}
		if c.Timestamp, err = d.integer(); err != nil {
			return p, err
		}
		p.CarLocation = &c
	}
	if !d.absent() {
		var pl ParkLocation
		var err error
		if pl.Position, err = d.position(); err != nil {
			return p, err
		}
		if pl.Accuracy, err = d.float32(); err != nil {
			return p, err
		}
		p.ParkLocation = &pl
	}
	if !d.absent() {
		v, err := d.enum(int(CarTheftDetected) + 1)
		if err != nil {
			return p, err
		}
		p.Status = StatusOf(Status(v))
	}
	var err error
	if p.Service, err = d.optionalBool(); err != nil {
		return p, err
	}
	return p, d.done()
}

func (Machine) DumpWatcher(w Watcher) string {
	var e encoder
	e.optionalBool(w.Call)
	e.optionalBool(w.Refresh)
	e.optionalBool(w.Park)
	if r := w.Receiver; r != nil {
		e.integer(int64(r.Source))
		e.text(r.PhoneNumber)
	} else {
		e.null()
	}
	e.optionalBool(w.Service)
	return e.String()
}

func (Machine) ParseWatcher(s string) (Watcher, error) {
	var (
		w   Watcher
		err error
	)
	d := newDecoder(s)

	if w.Call, err = d.optionalBool(); err != nil {
		return w, err
	}
	if w.Refresh, err = d.optionalBool(); err != nil {
		return w, err
	}
	if w.Park, err = d.optionalBool(); err != nil {
		return w, err
	}
	if !d.absent() {
		src, err := d.enum(int(Service) + 1)
		if err != nil {
			return w, err
		}
		phone, err := d.text()
		if err != nil {
			return w, err
		}
		w.Receiver = &ReceiverInfo{Source: Source(src), PhoneNumber: phone}
	}
	if w.Service, err = d.optionalBool(); err != nil {
		return w, err
	}
	if err := d.done(); err != nil {
		return w, fmt.Errorf("watcher %q: %w", s, err)
	}
	return w, nil
}

func (d *decoder) position() (Position, error) {
	lat, err := d.float64()
	if err != nil {
		return Position{}, err
	}
	lon, err := d.float64()
	if err != nil {
		return Position{}, err
	}
	return Position{Latitude: lat, Longitude: lon}, nil
}
