package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoMatch is returned when no registered action fits the utterance.
var ErrNoMatch = errors.New("command not understood")

// ErrMissingSlot marks a resolution that halted on a required slot.
// It is surfaced as a clarifying question, not as a failure.
var ErrMissingSlot = errors.New("missing required slot")

// ErrAmbiguousResource is returned when disambiguation leaves more than one candidate.
var ErrAmbiguousResource = errors.New("ambiguous resource")

// ErrLookup is returned when resource enumeration fails or finds nothing.
var ErrLookup = errors.New("resource lookup failed")

// ErrRecoverable marks a dispatch failure that a recovery callback can fix.
var ErrRecoverable = errors.New("recoverable dispatch failure")

// ErrTerminalDispatch wraps every dispatch failure that survived the retry policy.
var ErrTerminalDispatch = errors.New("dispatch failed")

// ErrDispatchTimeout is returned when no correlated response arrives in time.
var ErrDispatchTimeout = errors.New("dispatch response timed out")

// ErrBrokerUnavailable is returned when the broker connection cannot be used.
var ErrBrokerUnavailable = errors.New("broker unavailable")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// AmbiguousResourceError lists the candidates left after narrowing.
type AmbiguousResourceError struct {
	Candidates []string
}

func (e *AmbiguousResourceError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAmbiguousResource, strings.Join(e.Candidates, ", "))
}

// Is lets errors.Is(err, ErrAmbiguousResource) match.
func (e *AmbiguousResourceError) Is(target error) bool {
	return target == ErrAmbiguousResource
}

// RemoteError is a failure reported by the worker in its reply.
type RemoteError struct {
	Message     string
	Recoverable bool
}

func (e *RemoteError) Error() string {
	return "worker error: " + e.Message
}

// Is lets errors.Is(err, ErrRecoverable) match recoverable remote failures.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRecoverable && e.Recoverable
}

// IsRecoverable is the default classifier for the dispatch retry policy:
// recoverable worker errors and broker connection failures qualify, timeouts
// and cancellations do not.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRecoverable) || errors.Is(err, ErrBrokerUnavailable)
}
