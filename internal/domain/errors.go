package domain

import "errors"

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrQueueEntryNotFound = errors.New("queue entry not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrDisputeNotFound    = errors.New("dispute not found")

	// ErrAlreadyQueued: the player already has an active queue entry.
	ErrAlreadyQueued = errors.New("player already queued")

	// ErrEntryAlreadyMatched is the expected contention outcome when a
	// queue entry was claimed by a concurrent pairing attempt. Callers
	// swallow it and keep searching.
	ErrEntryAlreadyMatched = errors.New("queue entry already matched")

	// ErrMatchClosed: the match already left the pending state.
	ErrMatchClosed = errors.New("match already finalized")

	ErrNotParticipant         = errors.New("player is not part of this match")
	ErrInvalidOutcome         = errors.New("invalid outcome")
	ErrResultAlreadySubmitted = errors.New("result already submitted")
	ErrResultWindowExpired    = errors.New("result window expired")
)
