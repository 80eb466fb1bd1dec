// Package poro implements the compact text codec exchanged with the
// companion phone app over SMS.
//
// A record is a sequence of space separated tokens in a fixed field order.
// Absent optional fields are "*", booleans "t"/"f", integers base 36, and
// floats base 36 fixed point.
package poro

import "errors"

// ErrDecode is returned for input that does not match the record layout:
// wrong token count, bad radix digits or an unknown enum code.
var ErrDecode = errors.New("poro: decode error")

type Position struct {
	Latitude  float64
	Longitude float64
}

type CarLocation struct {
	Position  Position
	Accuracy  float32
	Battery   float32
	Timestamp int64
}

type ParkLocation struct {
	Position Position
	Accuracy float32
}

// Status tags a Protector record sent as an alert.
type Status int

const (
	ParkingDetected Status = iota
	ParkingUpdated
	CarTheftDetected
)

func (s Status) String() string {
	switch s {
	case ParkingDetected:
		return "ParkingDetected"
	case ParkingUpdated:
		return "ParkingUpdated"
	case CarTheftDetected:
		return "CarTheftDetected"
	}
	return "Unknown"
}

// Source is the channel a Watcher record arrived on.
type Source int

const (
	Gcm Source = iota
	SmsHuman
	SmsMachine
	Service
)

type ReceiverInfo struct {
	Source      Source
	PhoneNumber string
}

// Protector is the device to phone status record.
type Protector struct {
	CarLocation  *CarLocation
	ParkLocation *ParkLocation
	Status       *Status
	Service      *bool
}

// Watcher is the phone to device command record.
type Watcher struct {
	Call     *bool
	Refresh  *bool
	Park     *bool
	Receiver *ReceiverInfo
	Service  *bool
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// StatusOf returns a pointer to s.
func StatusOf(s Status) *Status {
	return &s
}
