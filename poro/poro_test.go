package poro_test

import (
	"errors"
	"reflect"
	"testing"

	"i4.energy/across/tata/poro"
)

func TestProtectorHumanDump(t *testing.T) {
	tests := []struct {
		name    string
		machine string
		human   string
	}{
		{"empty", "* * * *", ""},
		{
			"car only",
			"5ytnrmgo 2dl4xyfs 44zq4w j3nk lb811qsd * * *",
			"https://maps.google.com/?q=46.7624859,18.6304591\n\n250.25 meters, 89.12 %, 2022-12-03T14:25:42.109Z\n\n",
		},
		{
			"park only",
			"* 60hrep60 29xy4y9k 89zg9s * *",
			"Last park location\n\nhttps://maps.google.com/?q=47.1258945,17.8372091\n\n500.50 meters\n\n",
		},
		{"status only", "* * 2 *", ""},
		{"service on", "* * * t", "Service on\n\n"},
		{
			"park with status",
			"* 60hrep60 29xy4y9k 89zg9s 1 *",
			"Last park location\n\nhttps://maps.google.com/?q=47.1258945,17.8372091\n\n500.50 meters\n\n",
		},
		{
			"everything",
			"5ytnrmgo 2dl4xyfs 44zq4w j3nk lb811qsd 60hrep60 29xy4y9k 89zg9s 0 t",
			"https://maps.google.com/?q=46.7624859,18.6304591\n\n250.25 meters, 89.12 %, 2022-12-03T14:25:42.109Z\n\nService on\n\nPark distance 72519.74 meters\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := poro.Machine{}.ParseProtector(tt.machine)
			if err != nil {
				t.Fatalf("ParseProtector(%q): %v", tt.machine, err)
			}
			if got := (poro.Machine{}).DumpProtector(p); got != tt.machine {
				t.Errorf("machine dump = %q, want %q", got, tt.machine)
			}
			if got := (poro.Human{}).DumpProtector(p); got != tt.human {
				t.Errorf("human dump = %q, want %q", got, tt.human)
			}
		})
	}
}

func TestProtectorFields(t *testing.T) {
	p, err := poro.Machine{}.ParseProtector("5ytnrmgo 2dl4xyfs 44zq4w j3nk lb811qsd 60hrep60 29xy4y9k 89zg9s 0 t")
	if err != nil {
		t.Fatal(err)
	}

	c := p.CarLocation
	if c == nil {
		t.Fatal("car location missing")
	}
	if c.Position.Latitude != 46.7624859 || c.Position.Longitude != 18.6304591 {
		t.Errorf("car position = %+v", c.Position)
	}
	if c.Accuracy != 250.25 {
		t.Errorf("accuracy = %v", c.Accuracy)
	}
	if c.Timestamp != 1670077542109 {
		t.Errorf("timestamp = %d", c.Timestamp)
	}
	if p.ParkLocation == nil || p.ParkLocation.Accuracy != 500.5 {
		t.Errorf("park location = %+v", p.ParkLocation)
	}
	if p.Status == nil || *p.Status != poro.ParkingDetected {
		t.Errorf("status = %v", p.Status)
	}
	if p.Service == nil || !*p.Service {
		t.Errorf("service = %v", p.Service)
	}
}

func TestWatcherMachine(t *testing.T) {
	for _, s := range []string{
		"* * * * *",
		"t * * * *",
		"t f * * *",
		"* t f * *",
		"* * t 2 phonenumber *",
		"* * * 3 phonenumber f",
		"* * * 0 phonenumber t",
		"t f t 1 phonenumber f",
	} {
		t.Run(s, func(t *testing.T) {
			w, err := poro.Machine{}.ParseWatcher(s)
			if err != nil {
				t.Fatalf("ParseWatcher: %v", err)
			}
			if got := (poro.Machine{}).DumpWatcher(w); got != s {
				t.Errorf("DumpWatcher = %q, want %q", got, s)
			}
		})
	}
}

func TestWatcherReceiverFields(t *testing.T) {
	w, err := poro.Machine{}.ParseWatcher("t f t 1 phonenumber f")
	if err != nil {
		t.Fatal(err)
	}
	if w.Receiver == nil || w.Receiver.Source != poro.SmsHuman || w.Receiver.PhoneNumber != "phonenumber" {
		t.Errorf("receiver = %+v", w.Receiver)
	}
	if w.Call == nil || !*w.Call || w.Refresh == nil || *w.Refresh || w.Park == nil || !*w.Park {
		t.Errorf("flags = %v %v %v", w.Call, w.Refresh, w.Park)
	}
}

func TestEscaping(t *testing.T) {
	tests := []struct {
		phone   string
		escaped string
	}{
		{"", ";"},
		{" ", "_"},
		{"  ", "____"},
		{"   ", "_____"},
		{";", ";;"},
		{"*", "**"},
		{"+36 30 123", "+36_30_123"},
	}

	for _, tt := range tests {
		t.Run(tt.escaped, func(t *testing.T) {
			w := poro.Watcher{Receiver: &poro.ReceiverInfo{Source: poro.SmsMachine, PhoneNumber: tt.phone}}
			dumped := poro.Machine{}.DumpWatcher(w)
			want := "* * * 2 " + tt.escaped + " *"
			if dumped != want {
				t.Fatalf("DumpWatcher = %q, want %q", dumped, want)
			}

			back, err := poro.Machine{}.ParseWatcher(dumped)
			if err != nil {
				t.Fatalf("ParseWatcher: %v", err)
			}
			if back.Receiver.PhoneNumber != tt.phone {
				t.Errorf("phone = %q, want %q", back.Receiver.PhoneNumber, tt.phone)
			}
		})
	}
}

func TestUnderscoreBecomesSpace(t *testing.T) {
	w, err := poro.Machine{}.ParseWatcher("* * * 2 a__b *")
	if err != nil {
		t.Fatal(err)
	}
	if w.Receiver.PhoneNumber != "a b" {
		t.Errorf("phone = %q", w.Receiver.PhoneNumber)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		parse func(string) error
	}{
		{"protector too short", "* * *", protector},
		{"protector trailing", "* * * * *", protector},
		{"protector bad digit", "* * 2 x!", protector},
		{"protector bad status", "* * 9 *", protector},
		{"protector partial car", "5ytnrmgo 2dl4xyfs * * *", protector},
		{"watcher bad bool", "x * * * *", watcher},
		{"watcher bad source", "* * * 7 phone *", watcher},
		{"watcher too short", "* *", watcher},
		{"watcher trailing", "* * * * * *", watcher},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.parse(tt.input); !errors.Is(err, poro.ErrDecode) {
				t.Errorf("err = %v, want ErrDecode", err)
			}
		})
	}
}

func protector(s string) error {
	_, err := poro.Machine{}.ParseProtector(s)
	return err
}

func watcher(s string) error {
	_, err := poro.Machine{}.ParseWatcher(s)
	return err
}

func TestHumanWatcher(t *testing.T) {
	tests := []struct {
		input string
		check func(poro.Watcher) bool
	}{
		{"Location", func(w poro.Watcher) bool { return w.Refresh != nil && *w.Refresh }},
		{" call ", func(w poro.Watcher) bool { return w.Call != nil && *w.Call }},
		{"PARK ON", func(w poro.Watcher) bool { return w.Park != nil && *w.Park }},
		{"park off", func(w poro.Watcher) bool { return w.Park != nil && !*w.Park }},
		{"Service on", func(w poro.Watcher) bool { return w.Service != nil && *w.Service }},
		{"service off", func(w poro.Watcher) bool { return w.Service != nil && !*w.Service }},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			w, err := poro.Human{}.ParseWatcher(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			if !tt.check(w) {
				t.Errorf("unexpected watcher %+v", w)
			}
		})
	}

	if _, err := (poro.Human{}).ParseWatcher("open the doors"); !errors.Is(err, poro.ErrDecode) {
		t.Errorf("err = %v, want ErrDecode", err)
	}
}

func TestMachineRecordRoundTrip(t *testing.T) {
	protectors := []struct {
		name string
		p    poro.Protector
	}{
		{"empty", poro.Protector{}},
		{
			"southern and western hemisphere",
			poro.Protector{
				CarLocation: &poro.CarLocation{
					Position:  poro.Position{Latitude: -33.8688197, Longitude: -70.6692655},
					Accuracy:  12.5,
					Battery:   0.37,
					Timestamp: 1670846541123,
				},
				ParkLocation: &poro.ParkLocation{
					Position: poro.Position{Latitude: -33.8690001, Longitude: -70.6690002},
					Accuracy: 150,
				},
				Status:  poro.StatusOf(poro.CarTheftDetected),
				Service: poro.Bool(false),
			},
		},
		{
			"timestamp before the epoch",
			poro.Protector{
				CarLocation: &poro.CarLocation{
					Position:  poro.Position{Latitude: 0.0000001, Longitude: -179.9999999},
					Timestamp: -86400123,
				},
				Status: poro.StatusOf(poro.ParkingDetected),
			},
		},
	}

	for _, tt := range protectors {
		t.Run("Protector "+tt.name, func(t *testing.T) {
			encoded := poro.Machine{}.DumpProtector(tt.p)
			got, err := poro.Machine{}.ParseProtector(encoded)
			if err != nil {
				t.Fatalf("parse %q: %v", encoded, err)
			}
			if !reflect.DeepEqual(got, tt.p) {
				t.Errorf("round trip through %q gave %+v, want %+v", encoded, got, tt.p)
			}
		})
	}

	watchers := []struct {
		name string
		w    poro.Watcher
	}{
		{"empty", poro.Watcher{}},
		{"plain number", poro.Watcher{
			Refresh:  poro.Bool(true),
			Receiver: &poro.ReceiverInfo{Source: poro.SmsMachine, PhoneNumber: "+36301234567"},
		}},
		{"number with spaces", poro.Watcher{
			Call:     poro.Bool(true),
			Receiver: &poro.ReceiverInfo{Source: poro.Gcm, PhoneNumber: "+36 30  123"},
		}},
		{"number with markers", poro.Watcher{
			Park:     poro.Bool(false),
			Receiver: &poro.ReceiverInfo{Source: poro.SmsHuman, PhoneNumber: "*31#;*"},
			Service:  poro.Bool(true),
		}},
		{"empty number", poro.Watcher{
			Receiver: &poro.ReceiverInfo{Source: poro.Service},
		}},
	}

	for _, tt := range watchers {
		t.Run("Watcher "+tt.name, func(t *testing.T) {
			encoded := poro.Machine{}.DumpWatcher(tt.w)
			got, err := poro.Machine{}.ParseWatcher(encoded)
			if err != nil {
				t.Fatalf("parse %q: %v", encoded, err)
			}
			if !reflect.DeepEqual(got, tt.w) {
				t.Errorf("round trip through %q gave %+v, want %+v", encoded, got, tt.w)
			}
		})
	}
}
