package poro

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	delimiter = " "
	space     = "_"
	null      = "*"
	empty     = ";"
	yes       = "t"
	no        = "f"

	precision32 = 1e6
	precision64 = 1e10
)

type encoder struct {
	tokens []string
}

func (e *encoder) String() string {
	return strings.Join(e.tokens, delimiter)
}

func (e *encoder) null() {
	e.tokens = append(e.tokens, null)
}

func (e *encoder) boolean(v bool) {
	if v {
		e.tokens = append(e.tokens, yes)
	} else {
		e.tokens = append(e.tokens, no)
	}
}

func (e *encoder) integer(v int64) {
	e.tokens = append(e.tokens, strconv.FormatInt(v, 36))
}

func (e *encoder) float32(v float32) {
	e.integer(int64(math.Round(float64(v) * precision32)))
}

func (e *encoder) float64(v float64) {
	e.integer(int64(math.Round(v * precision64)))
}

func (e *encoder) text(v string) {
	e.tokens = append(e.tokens, escape(v))
}

func (e *encoder) optionalBool(v *bool) {
	if v == nil {
		e.null()
		return
	}
	e.boolean(*v)
}

type decoder struct {
	tokens []string
	pos    int
}

func newDecoder(s string) *decoder {
	return &decoder{tokens: strings.Split(s, delimiter)}
}

func (d *decoder) next() (string, error) {
	if d.pos >= len(d.tokens) {
		return "", fmt.Errorf("%w: expected more than %d tokens", ErrDecode, len(d.tokens))
	}
	tok := d.tokens[d.pos]
	d.pos++
	return tok, nil
}

// absent consumes the next token if it marks an absent optional field.
func (d *decoder) absent() bool {
	if d.pos < len(d.tokens) && d.tokens[d.pos] == null {
		d.pos++
		return true
	}
	return false
}

func (d *decoder) done() error {
	if d.pos != len(d.tokens) {
		return fmt.Errorf("%w: %d trailing tokens", ErrDecode, len(d.tokens)-d.pos)
	}
	return nil
}

func (d *decoder) boolean() (bool, error) {
	tok, err := d.next()
	if err != nil {
		return false, err
	}
	switch tok {
	case yes:
		return true, nil
	case no:
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not a boolean", ErrDecode, tok)
}

func (d *decoder) integer() (int64, error) {
	tok, err := d.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(tok, 36, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a base 36 integer", ErrDecode, tok)
	}
	return v, nil
}

func (d *decoder) float32() (float32, error) {
	v, err := d.integer()
	if err != nil {
		return 0, err
	}
	return float32(float64(v) / precision32), nil
}

func (d *decoder) float64() (float64, error) {
	v, err := d.integer()
	if err != nil {
		return 0, err
	}
	return float64(v) / precision64, nil
}

func (d *decoder) text() (string, error) {
	tok, err := d.next()
	if err != nil {
		return "", err
	}
	return unescape(tok), nil
}

func (d *decoder) optionalBool() (*bool, error) {
	if d.absent() {
		return nil, nil
	}
	v, err := d.boolean()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (d *decoder) enum(limit int) (int, error) {
	v, err := d.integer()
	if err != nil {
		return 0, err
	}
	if v < 0 || v >= int64(limit) {
		return 0, fmt.Errorf("%w: enum code %d out of range", ErrDecode, v)
	}
	return int(v), nil
}

// escape makes s a single token. A lone "_" in s does not survive
// unescape: it comes back as a space.
func escape(s string) string {
	if s == "" {
		return empty
	}
	s = strings.ReplaceAll(s, space, space+space)
	s = strings.ReplaceAll(s, delimiter+delimiter, strings.Repeat(space, 4))
	s = strings.ReplaceAll(s, delimiter, space)
	s = strings.ReplaceAll(s, null, null+null)
	s = strings.ReplaceAll(s, empty, empty+empty)
	return s
}

func unescape(s string) string {
	if s == empty {
		return ""
	}
	s = strings.ReplaceAll(s, space+space, space)
	s = strings.ReplaceAll(s, space, delimiter)
	s = strings.ReplaceAll(s, null+null, null)
	s = strings.ReplaceAll(s, empty+empty, empty)
	return s
}
