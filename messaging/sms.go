// Package messaging sends and reads SMS and places and takes voice calls.
//
// Numbers and texts cross the wire UCS2 hex encoded, see package hexstr.
package messaging

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"i4.energy/across/tata/at"
	"i4.energy/across/tata/hexstr"
)

// MessageFormat selects PDU or text mode (AT+CMGF).
type MessageFormat struct {
	at.Empty
	Text bool
}

func (c MessageFormat) Encode() string { return at.Write("+CMGF", c.Text) }

// CharacterSet selects the TE character set (AT+CSCS).
type CharacterSet struct {
	at.Empty
	Name string
}

func (c CharacterSet) Encode() string { return at.Write("+CSCS", c.Name) }

// TextParameters sets the text mode parameters (AT+CSMP). A DCS of 8 marks
// UCS2 data.
type TextParameters struct {
	at.Empty
	FirstOctet     int
	ValidityPeriod int
	ProtocolID     int
	DataCoding     int
}

func (c TextParameters) Encode() string {
	return at.Write("+CSMP", c.FirstOctet, c.ValidityPeriod, c.ProtocolID, c.DataCoding)
}

// NewMessageIndications routes new message notifications (AT+CNMI).
type NewMessageIndications struct {
	at.Empty
	Mode, Deliver, Broadcast, Report, Buffer int
}

func (c NewMessageIndications) Encode() string {
	return at.Write("+CNMI", c.Mode, c.Deliver, c.Broadcast, c.Report, c.Buffer)
}

// SendAddress starts a message to Number (AT+CMGS). The module answers with
// the text prompt.
type SendAddress struct {
	Number string
}

func (c SendAddress) Encode() string { return at.Write("+CMGS", hexstr.EncodeUCS2(c.Number)) }

func (SendAddress) Decode(raw string) (at.NoResponse, error) {
	if !strings.Contains(raw, strings.TrimSpace(at.Prompt)) {
		return at.NoResponse{}, fmt.Errorf("%w: no text prompt in %q", at.ErrParse, raw)
	}
	return at.NoResponse{}, nil
}

// SendBody is the message text following SendAddress, terminated by Ctrl-Z.
type SendBody struct {
	at.Empty
	Text string
}

func (c SendBody) Encode() string       { return hexstr.EncodeUCS2(c.Text) + at.CtrlZ }
func (SendBody) Timeout() time.Duration { return 60 * time.Second }

// MessageStatus is the storage state of a message.
type MessageStatus string

const (
	ReceivedUnread MessageStatus = "REC UNREAD"
	ReceivedRead   MessageStatus = "REC READ"
	StoredUnsent   MessageStatus = "STO UNSENT"
	StoredSent     MessageStatus = "STO SENT"
)

// Message is a stored SMS.
type Message struct {
	Status MessageStatus
	Sender string
	// Time is the service centre time stamp, the unix epoch when the
	// module sent a malformed one.
	Time time.Time
	Text string
}

// ReadMessage reads the message at Index (AT+CMGR).
type ReadMessage struct {
	Index int
}

func (c ReadMessage) Encode() string { return at.Write("+CMGR", c.Index) }

func (ReadMessage) Decode(raw string) (Message, error) {
	var m Message
	lines := at.Lines(raw)
	i, ok := at.FindLine(lines, "+CMGR")
	if !ok {
		return m, fmt.Errorf("%w: no +CMGR line in %q", at.ErrParse, raw)
	}
	f := at.SplitArgs(lines[i][len("+CMGR:"):])
	if len(f) < 2 {
		return m, fmt.Errorf("%w: +CMGR header %q", at.ErrParse, lines[i])
	}

	m.Status = MessageStatus(f[0])
	sender, err := hexstr.DecodeUCS2(f[1])
	if err != nil {
		return m, fmt.Errorf("%w: sender: %w", at.ErrParse, err)
	}
	m.Sender = sender

	m.Time = time.Unix(0, 0)
	if len(f) >= 4 {
		if ts, err := parseTimestamp(f[3]); err == nil {
			m.Time = ts
		}
	}

	text, err := hexstr.DecodeUCS2(strings.Join(lines[i+1:], ""))
	if err != nil {
		return m, fmt.Errorf("%w: text: %w", at.ErrParse, err)
	}
	m.Text = text
	return m, nil
}

// parseTimestamp parses "yy/MM/dd,hh:mm:ss±zz" where zz counts quarter
// hours.
func parseTimestamp(s string) (time.Time, error) {
	const layout = "06/01/02,15:04:05"
	if len(s) != len(layout)+3 {
		return time.Time{}, fmt.Errorf("timestamp %q: bad length", s)
	}
	sign := 1
	switch s[len(layout)] {
	case '+':
	case '-':
		sign = -1
	default:
		return time.Time{}, fmt.Errorf("timestamp %q: bad zone sign", s)
	}
	quarters, err := strconv.Atoi(s[len(layout)+1:])
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	zone := time.FixedZone("", sign*quarters*15*60)
	return time.ParseInLocation(layout, s[:len(layout)], zone)
}

// DeleteMessage deletes the message at Index (AT+CMGD).
type DeleteMessage struct {
	at.Empty
	Index int
}

func (c DeleteMessage) Encode() string { return at.Write("+CMGD", c.Index) }

// Init puts the module into UCS2 text mode and enables new message
// indications. Failures are logged and otherwise ignored.
func Init(ctx context.Context, c at.Client) {
	_, _ = at.SendLogged(ctx, c, MessageFormat{Text: true})
	_, _ = at.SendLogged(ctx, c, CharacterSet{Name: "UCS2"})
	_, _ = at.SendLogged(ctx, c, TextParameters{FirstOctet: 17, ValidityPeriod: 167, ProtocolID: 0, DataCoding: 8})
	_, _ = at.SendLogged(ctx, c, NewMessageIndications{Mode: 2, Deliver: 1})
}

// Send sends text to number.
func Send(ctx context.Context, c at.Client, number, text string) error {
	if _, err := at.SendLogged(ctx, c, SendAddress{Number: number}); err != nil {
		return fmt.Errorf("send sms address: %w", err)
	}
	if _, err := at.SendLogged(ctx, c, SendBody{Text: text}); err != nil {
		return fmt.Errorf("send sms body: %w", err)
	}
	return nil
}

// Read reads the stored message at index.
func Read(ctx context.Context, c at.Client, index int) (Message, error) {
	return at.SendLogged(ctx, c, ReadMessage{Index: index})
}

// Delete removes the stored message at index.
func Delete(ctx context.Context, c at.Client, index int) error {
	_, err := at.SendLogged(ctx, c, DeleteMessage{Index: index})
	return err
}
