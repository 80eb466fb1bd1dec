package poro

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"i4.energy/across/tata/geo"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Human is the plain text format for SMS exchanged with a person.
type Human struct{}

// DumpProtector renders p as readable text. Status is not rendered.
func (Human) DumpProtector(p Protector) string {
	var b strings.Builder

	if c := p.CarLocation; c != nil {
		b.WriteString(mapLink(c.Position))
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "%.2f meters, %.2f %%, %s\n\n",
			c.Accuracy, c.Battery*100,
			time.UnixMilli(c.Timestamp).UTC().Format(timestampLayout))
	}
	if p.Service != nil {
		if *p.Service {
			b.WriteString("Service on\n\n")
		} else {
			b.WriteString("Service off\n\n")
		}
	}
	if pl := p.ParkLocation; pl != nil {
		if c := p.CarLocation; c != nil {
			d := geo.Distance(c.Position.Latitude, c.Position.Longitude, pl.Position.Latitude, pl.Position.Longitude)
			fmt.Fprintf(&b, "Park distance %.2f meters\n\n", d)
		} else {
			b.WriteString("Last park location\n\n")
			b.WriteString(mapLink(pl.Position))
			b.WriteString("\n\n")
			fmt.Fprintf(&b, "%.2f meters\n\n", pl.Accuracy)
		}
	}
	return b.String()
}

// ParseWatcher understands the single word commands a person can text.
func (Human) ParseWatcher(s string) (Watcher, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "location":
		return Watcher{Refresh: Bool(true)}, nil
	case "call":
		return Watcher{Call: Bool(true)}, nil
	case "park on":
		return Watcher{Park: Bool(true)}, nil
	case "park off":
		return Watcher{Park: Bool(false)}, nil
	case "service on":
		return Watcher{Service: Bool(true)}, nil
	case "service off":
		return Watcher{Service: Bool(false)}, nil
	}
	return Watcher{}, fmt.Errorf("%w: unknown command %q", ErrDecode, s)
}

func mapLink(p Position) string {
	return "https://maps.google.com/?q=" +
		strconv.FormatFloat(p.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}
