package telemetry

import (
	"context"
	"fmt"
	"net"
	"time"

	"i4.energy/across/tata/at"
	"i4.energy/across/tata/board"
	"i4.energy/across/tata/geo"
)

const (
	DefaultAPN            = "online"
	DefaultLocationServer = "lbs-simcom.com:3002"

	bearerCID = 1
)

// AttachGPRS attaches to or detaches from the packet service (AT+CGATT).
type AttachGPRS struct {
	at.Empty
	Attach bool
}

func (c AttachGPRS) Encode() string       { return at.Write("+CGATT", c.Attach) }
func (AttachGPRS) Timeout() time.Duration { return 7500 * time.Millisecond }

// SetAPN starts the task with the given access point (AT+CSTT).
type SetAPN struct {
	at.Empty
	APN string
}

func (c SetAPN) Encode() string { return at.Write("+CSTT", c.APN) }

// BringUpWireless brings up the data connection (AT+CIICR).
type BringUpWireless struct{ at.Empty }

func (BringUpWireless) Encode() string         { return at.Execute("+CIICR") }
func (BringUpWireless) Timeout() time.Duration { return 85 * time.Second }

// LocalAddress queries the assigned IP address (AT+CIFSR). The module
// answers with the bare address and no final result code.
type LocalAddress struct{}

func (LocalAddress) Encode() string { return at.Execute("+CIFSR") }

func (LocalAddress) Terminal(line string) bool {
	return net.ParseIP(line) != nil
}

func (LocalAddress) Decode(raw string) (net.IP, error) {
	for _, line := range at.Lines(raw) {
		if ip := net.ParseIP(line); ip != nil {
			return ip, nil
		}
	}
	return nil, fmt.Errorf("%w: no address in %q", at.ErrParse, raw)
}

// BearerCommand is the first argument of AT+SAPBR.
type BearerCommand int

const (
	CloseBearer BearerCommand = iota
	OpenBearer
	QueryBearer
	SetBearerParameter
	GetBearerParameter
)

// Bearer configures and switches the IP bearer profile (AT+SAPBR).
// Tag and Value are only sent with SetBearerParameter.
type Bearer struct {
	at.Empty
	Command BearerCommand
	Tag     string
	Value   string
}

func (c Bearer) Encode() string {
	if c.Command == SetBearerParameter {
		return at.Write("+SAPBR", int(c.Command), bearerCID, c.Tag, c.Value)
	}
	return at.Write("+SAPBR", int(c.Command), bearerCID)
}

func (Bearer) Timeout() time.Duration { return 85 * time.Second }

// LocationServer sets the base station location backend (AT+CLBSCFG).
type LocationServer struct {
	at.Empty
	Address string
}

func (c LocationServer) Encode() string { return at.Write("+CLBSCFG", 1, 3, c.Address) }

// CellLocate asks for longitude, latitude, date and time (AT+CLBS=4,1).
type CellLocate struct{}

func (CellLocate) Encode() string         { return at.Write("+CLBS", 4, bearerCID) }
func (CellLocate) Timeout() time.Duration { return 60 * time.Second }

// CellFix is a decoded +CLBS line. Only Code is set unless it is zero.
type CellFix struct {
	Code     int
	Location geo.Location
}

func (CellLocate) Decode(raw string) (CellFix, error) {
	var fix CellFix
	f, err := at.Fields(raw, "+CLBS")
	if err != nil {
		return fix, err
	}
	if fix.Code, err = at.Int(f, 0); err != nil || fix.Code != 0 {
		return fix, err
	}
	if len(f) != 6 {
		return fix, fmt.Errorf("%w: +CLBS has %d fields", at.ErrParse, len(f))
	}

	lon, _, err := at.Float(f, 1)
	if err != nil {
		return fix, err
	}
	lat, _, err := at.Float(f, 2)
	if err != nil {
		return fix, err
	}
	acc, _, err := at.Float(f, 3)
	if err != nil {
		return fix, err
	}
	ts, err := time.ParseInLocation("02/01/06 15:04:05", f[4]+" "+f[5], time.UTC)
	if err != nil {
		return fix, fmt.Errorf("%w: +CLBS time: %v", at.ErrParse, err)
	}

	fix.Location = geo.Location{Latitude: lat, Longitude: lon, Accuracy: acc, Timestamp: ts.UnixMilli()}
	return fix, nil
}

// CellTower locates through the operator's base station service. It
// attaches to the packet service and opens a bearer for the duration of
// Locate; both are torn down on every exit path.
type CellTower struct {
	Client     at.Client
	Board      board.Board
	MaxRetries int
	APN        string
	Server     string
}

func (c CellTower) Locate(ctx context.Context) (geo.Location, bool) {
	apn := c.APN
	if apn == "" {
		apn = DefaultAPN
	}
	server := c.Server
	if server == "" {
		server = DefaultLocationServer
	}
	cleanup := context.WithoutCancel(ctx)

	if _, err := at.SendLogged(ctx, c.Client, AttachGPRS{Attach: true}); err != nil {
		return geo.Location{}, false
	}
	defer func() {
		_, _ = at.SendLogged(cleanup, c.Client, AttachGPRS{Attach: false})
	}()

	if _, err := at.SendLogged(ctx, c.Client, SetAPN{APN: apn}); err != nil {
		return geo.Location{}, false
	}
	if _, err := at.SendLogged(ctx, c.Client, BringUpWireless{}); err != nil {
		return geo.Location{}, false
	}
	if _, err := at.SendLogged(ctx, c.Client, LocalAddress{}); err != nil {
		return geo.Location{}, false
	}
	if _, err := at.SendLogged(ctx, c.Client, Bearer{Command: SetBearerParameter, Tag: "APN", Value: apn}); err != nil {
		return geo.Location{}, false
	}
	if _, err := at.SendLogged(ctx, c.Client, Bearer{Command: SetBearerParameter, Tag: "Contype", Value: "GPRS"}); err != nil {
		return geo.Location{}, false
	}
	if _, err := at.SendLogged(ctx, c.Client, Bearer{Command: OpenBearer}); err != nil {
		return geo.Location{}, false
	}
	defer func() {
		_, _ = at.SendLogged(cleanup, c.Client, Bearer{Command: CloseBearer})
	}()

	if _, err := at.SendLogged(ctx, c.Client, LocationServer{Address: server}); err != nil {
		return geo.Location{}, false
	}

	for range c.MaxRetries {
		if ctx.Err() != nil {
			break
		}
		fix, err := at.SendLogged(ctx, c.Client, CellLocate{})
		if err == nil && fix.Code == 0 {
			return fix.Location, true
		}
		c.Board.Sleep(ctx, time.Second)
	}
	return geo.Location{}, false
}
