package at

import (
	"fmt"
	"strconv"
	"strings"
)

// Unquoted is a string argument written without surrounding quotes.
type Unquoted string

// Execute encodes the execution form "AT<name>\r".
func Execute(name string) string {
	return "AT" + name + CR
}

// Read encodes the read form "AT<name>?\r".
func Read(name string) string {
	return "AT" + name + "?" + CR
}

// Write encodes the write form "AT<name>=<args>\r". Strings are quoted,
// Unquoted values and numbers are written as is, booleans as 1/0.
func Write(name string, args ...any) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, formatArg(arg))
	}
	return "AT" + name + "=" + strings.Join(parts, ",") + CR
}

func formatArg(arg any) string {
	switch v := arg.(type) {
	case string:
		return strconv.Quote(v)
	case Unquoted:
		return string(v)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Lines splits a raw response into its lines.
func Lines(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

// FindLine returns the index of the first line carrying the "<name>:"
// information prefix.
func FindLine(lines []string, name string) (int, bool) {
	prefix := name + ":"
	for i, line := range lines {
		if strings.HasPrefix(line, prefix) {
			return i, true
		}
	}
	return -1, false
}

// Fields returns the comma separated values of the "<name>: ..." line in raw.
func Fields(raw, name string) ([]string, error) {
	lines := Lines(raw)
	i, ok := FindLine(lines, name)
	if !ok {
		return nil, fmt.Errorf("%w: no %s line in %q", ErrParse, name, raw)
	}
	return SplitArgs(lines[i][len(name)+1:]), nil
}

// SplitArgs splits an argument list on commas outside of double quotes.
// Surrounding quotes and blanks are removed from every value.
func SplitArgs(s string) []string {
	var (
		args    []string
		current strings.Builder
		quoted  bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(args, strings.TrimSpace(current.String()))
}

// Int parses field i of fields as a decimal integer.
func Int(fields []string, i int) (int, error) {
	if i >= len(fields) {
		return 0, fmt.Errorf("%w: missing field %d", ErrParse, i)
	}
	v, err := strconv.Atoi(fields[i])
	if err != nil {
		return 0, fmt.Errorf("%w: field %d: %v", ErrParse, i, err)
	}
	return v, nil
}

// Float parses field i of fields. An empty field reports ok=false.
func Float(fields []string, i int) (v float64, ok bool, err error) {
	if i >= len(fields) || fields[i] == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(fields[i], 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: field %d: %v", ErrParse, i, err)
	}
	return v, true, nil
}
