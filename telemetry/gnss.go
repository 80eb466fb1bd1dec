// Package telemetry acquires location fixes and battery readings from the
// module.
package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"i4.energy/across/tata/at"
	"i4.energy/across/tata/board"
	"i4.energy/across/tata/geo"
)

// navigationFields is the field count of a +CGNSINF line.
const navigationFields = 21

// defaultPDOP stands in for a missing PDOP value.
const defaultPDOP = 10.0

// GNSSPower switches the GNSS receiver (AT+CGNSPWR).
type GNSSPower struct {
	at.Empty
	On bool
}

func (c GNSSPower) Encode() string { return at.Write("+CGNSPWR", c.On) }

// GNSSInfo queries the navigation information (AT+CGNSINF).
type GNSSInfo struct{}

func (GNSSInfo) Encode() string { return at.Execute("+CGNSINF") }

// NavigationInfo is a decoded +CGNSINF line. Optional numeric fields are nil
// when the module left them empty.
type NavigationInfo struct {
	Running   bool
	Fixed     bool
	UTC       string // yyyyMMddhhmmss.sss
	Latitude  *float64
	Longitude *float64
	Altitude  *float64
	Speed     *float64 // km/h
	Course    *float64 // degrees
	FixMode   *int
	HDOP      *float64
	PDOP      *float64
	VDOP      *float64

	SatellitesInView *int
	SatellitesUsed   *int
	GlonassInView    *int
	CN0Max           *int // dBHz
	HPA              *float64
	VPA              *float64
}

func (GNSSInfo) Decode(raw string) (NavigationInfo, error) {
	var n NavigationInfo
	f, err := at.Fields(raw, "+CGNSINF")
	if err != nil {
		return n, err
	}
	if len(f) != navigationFields {
		return n, fmt.Errorf("%w: +CGNSINF has %d fields", at.ErrParse, len(f))
	}

	n.Running = f[0] == "1"
	n.Fixed = f[1] == "1"
	n.UTC = f[2]

	floats := []struct {
		i   int
		dst **float64
	}{
		{3, &n.Latitude}, {4, &n.Longitude}, {5, &n.Altitude}, {6, &n.Speed},
		{7, &n.Course}, {10, &n.HDOP}, {11, &n.PDOP}, {12, &n.VDOP},
		{19, &n.HPA}, {20, &n.VPA},
	}
	for _, fl := range floats {
		if *fl.dst, err = optionalFloat(f, fl.i); err != nil {
			return n, err
		}
	}

	ints := []struct {
		i   int
		dst **int
	}{
		{8, &n.FixMode}, {14, &n.SatellitesInView}, {15, &n.SatellitesUsed},
		{16, &n.GlonassInView}, {18, &n.CN0Max},
	}
	for _, in := range ints {
		if *in.dst, err = optionalInt(f, in.i); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Location turns the navigation info into a fix. It reports false while
// the time or position is missing.
func (n NavigationInfo) Location() (geo.Location, bool) {
	if n.UTC == "" || n.Latitude == nil || n.Longitude == nil {
		return geo.Location{}, false
	}
	ts, err := time.ParseInLocation("20060102150405.000", n.UTC, time.UTC)
	if err != nil {
		return geo.Location{}, false
	}
	pdop := defaultPDOP
	if n.PDOP != nil {
		pdop = *n.PDOP
	}
	return geo.Location{
		Latitude:  *n.Latitude,
		Longitude: *n.Longitude,
		Accuracy:  geo.EstimateGPSAccuracy(pdop),
		Timestamp: ts.UnixMilli(),
	}, true
}

// GNSS locates with the satellite receiver. The receiver is powered only
// for the duration of Locate.
type GNSS struct {
	Client     at.Client
	Board      board.Board
	MaxRetries int
}

func (g GNSS) Locate(ctx context.Context) (geo.Location, bool) {
	_, _ = at.SendLogged(ctx, g.Client, GNSSPower{On: true})
	defer func() {
		_, _ = at.SendLogged(context.WithoutCancel(ctx), g.Client, GNSSPower{On: false})
	}()

	for range g.MaxRetries {
		g.Board.Sleep(ctx, time.Second)
		if ctx.Err() != nil {
			return geo.Location{}, false
		}
		info, err := at.SendLogged(ctx, g.Client, GNSSInfo{})
		if err != nil {
			continue
		}
		if loc, ok := info.Location(); ok {
			return loc, true
		}
	}
	return geo.Location{}, false
}

func optionalFloat(f []string, i int) (*float64, error) {
	v, ok, err := at.Float(f, i)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

func optionalInt(f []string, i int) (*int, error) {
	if f[i] == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(f[i])
	if err != nil {
		return nil, fmt.Errorf("%w: field %d: %v", at.ErrParse, i, err)
	}
	return &v, nil
}
