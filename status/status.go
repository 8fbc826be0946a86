package status

import (
	"errors"
	"fmt"

	"github.com/MetalBlockchain/metalgo/vms/components/verify"
)

// List of possible outcomes of a star submission:
// - [Unknown] The submission has not been decided
// - [Accepted] The star was registered in a new block
// - [Malformed] The challenge message could not be used
// - [Expired] The challenge was older than the challenge window
// - [InvalidSignature] The challenge was not signed by the submitter
// - [Failed] The submission passed every check but couldn't be appended
const (
	Unknown          Status = 0
	Accepted         Status = 1
	Malformed        Status = 2
	Expired          Status = 3
	InvalidSignature Status = 4
	Failed           Status = 5
)

var (
	errUnknownStatus = errors.New("unknown status")

	_ verify.Verifiable = Status(0)
	_ fmt.Stringer      = Status(0)
)

type Status uint32

// Verify that this is a valid status.
func (s Status) Verify() error {
	switch s {
	case Unknown, Accepted, Malformed, Expired, InvalidSignature, Failed:
		return nil
	default:
		return errUnknownStatus
	}
}

// String returns the label the status is reported under.
func (s Status) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Accepted:
		return "accepted"
	case Malformed:
		return "malformed"
	case Expired:
		return "expired"
	case InvalidSignature:
		return "invalid_signature"
	case Failed:
		return "failed"
	default:
		return "invalid_status"
	}
}
