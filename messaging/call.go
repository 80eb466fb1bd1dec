package messaging

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"i4.energy/across/tata/at"
	"i4.energy/across/tata/board"
)

// AudioChannel is the audio channel selected before dialling.
type AudioChannel int

const (
	MainChannel AudioChannel = iota + 1
	AuxChannel
	MainHandsFree
	AuxHandsFree
	PCMChannel
)

// SwapAudioChannel selects the audio channel (AT+CHFA).
type SwapAudioChannel struct {
	at.Empty
	Channel AudioChannel
}

func (c SwapAudioChannel) Encode() string { return at.Write("+CHFA", int(c.Channel)) }

// Dial places a voice call with caller ID restriction suppressed.
type Dial struct {
	at.Empty
	Number string
}

func (c Dial) Encode() string { return "ATD" + c.Number + ",i;" + at.CR }

// Hangup ends the current call (AT+CHUP).
type Hangup struct{ at.Empty }

func (Hangup) Encode() string { return at.Execute("+CHUP;") }

// Answer takes an incoming call (ATA).
type Answer struct{ at.Empty }

func (Answer) Encode() string { return at.Execute("A") }

// CallerID toggles the +CLIP notification on incoming calls.
type CallerID struct {
	at.Empty
	Enable bool
}

func (c CallerID) Encode() string       { return at.Write("+CLIP", c.Enable) }
func (CallerID) Timeout() time.Duration { return 15 * time.Second }

// EnableCallerID makes incoming calls report the caller number.
func EnableCallerID(ctx context.Context, c at.Client) {
	_, _ = at.SendLogged(ctx, c, CallerID{Enable: true})
}

// Call dials number, keeps the line for d and hangs up. The hang up is
// sent even when ctx is cancelled during the call.
func Call(ctx context.Context, c at.Client, b board.Board, number string, d time.Duration) {
	_, _ = at.SendLogged(ctx, c, SwapAudioChannel{Channel: MainChannel})
	_, _ = at.SendLogged(ctx, c, Dial{Number: number})

	zerolog.Ctx(ctx).Info().Str("number", number).Dur("duration", d).Msg("calling")
	b.Sleep(ctx, d)

	_, _ = at.SendLogged(context.WithoutCancel(ctx), c, Hangup{})
}

func AnswerCall(ctx context.Context, c at.Client) {
	_, _ = at.SendLogged(ctx, c, Answer{})
}

func RejectCall(ctx context.Context, c at.Client) {
	_, _ = at.SendLogged(ctx, c, Hangup{})
}
