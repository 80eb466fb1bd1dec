// Package geo holds location fixes and the distance math the tracker uses.
package geo

import "math"

const earthRadius = 6371000.0 // meters

// Location is a position fix.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Accuracy is a confidence radius in meters.
	Accuracy float64 `json:"accuracy"`
	// Timestamp is the fix time in unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// Distance returns the great-circle distance in meters between two points
// given in degrees (haversine).
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Pow(math.Sin(dLon/2), 2)*math.Cos(radians(lat1))*math.Cos(radians(lat2))
	return earthRadius * 2 * math.Asin(math.Sqrt(a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceTo returns the distance in meters between l and o.
func (l Location) DistanceTo(o Location) float64 {
	return Distance(l.Latitude, l.Longitude, o.Latitude, o.Longitude)
}

// EstimateGPSAccuracy converts a PDOP value to meters, assuming a 2.5 m CEP
// receiver.
func EstimateGPSAccuracy(pdop float64) float64 {
	return 2.5 * pdop
}

// IsDistanceBigEnough reports whether moving from a to b is more than the
// two fixes' combined uncertainty.
func IsDistanceBigEnough(a, b Location) bool {
	return a.DistanceTo(b) > a.Accuracy+b.Accuracy
}
