package challenge

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Suffix terminates every ownership challenge.
const Suffix = "starRegistry"

const separator = ":"

var ErrMalformedMessage = errors.New("malformed challenge message")

// Challenge is the parsed form of "{address}:{unix}:starRegistry".
type Challenge struct {
	Address string
	Time    uint64
}

// New returns the challenge message address must sign, issued at unix.
func New(address string, unix uint64) string {
	return fmt.Sprintf("%s%s%d%s%s", address, separator, unix, separator, Suffix)
}

func (c Challenge) String() string {
	return New(c.Address, c.Time)
}

// Parse extracts the address and issue time from a challenge message. Spaces
// around the separators are tolerated.
func Parse(message string) (Challenge, error) {
	fields := strings.Split(message, separator)
	if len(fields) != 3 {
		return Challenge{}, fmt.Errorf("%w: expected 3 fields, got %d", ErrMalformedMessage, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if fields[0] == "" {
		return Challenge{}, fmt.Errorf("%w: missing address", ErrMalformedMessage)
	}
	unix, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return Challenge{}, fmt.Errorf("%w: bad timestamp %q", ErrMalformedMessage, fields[1])
	}
	if fields[2] != Suffix {
		return Challenge{}, fmt.Errorf("%w: unexpected suffix %q", ErrMalformedMessage, fields[2])
	}
	return Challenge{
		Address: fields[0],
		Time:    unix,
	}, nil
}
