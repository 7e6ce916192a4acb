package domain

import (
	"fmt"

	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

var ErrInvalidStatus = apperr.New(apperr.ErrValidation, "invalid status")

// Accepted and rejected are terminal.
var validNext = map[Status]map[Status]bool{
	StatusPending:  {StatusAccepted: true, StatusRejected: true},
	StatusAccepted: {},
	StatusRejected: {},
}

var allStatuses = []Status{StatusPending, StatusAccepted, StatusRejected}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Sources lists the statuses an order may leave to reach target.
func Sources(target Status) []Status {
	var from []Status
	for _, s := range allStatuses {
		if CanTransition(s, target) {
			from = append(from, s)
		}
	}
	return from
}

// ParseTargetStatus accepts only the statuses an admin may set.
func ParseTargetStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusAccepted, StatusRejected:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}
