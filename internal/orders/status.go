package orders

import (
	"strconv"
	"strings"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
)

type Status int

const (
	StatusPending   Status = 0
	StatusDelivered Status = 1
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusDelivered
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDelivered:
		return "delivered"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseStatus accepts the numeric form as well as true/false, which is how
// clients send the `isdelivered` filter.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "0", "false":
		return StatusPending, nil
	case "1", "true":
		return StatusDelivered, nil
	}
	return 0, apperr.BadRequest("invalid status " + strconv.Quote(raw))
}
