package domain

import "errors"

var (
	// ErrSubmissionNotFound is returned when no submission exists for the
	// given public ID.
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrAlreadyTerminal is returned when mutating a submission that has
	// already been played or removed.
	ErrAlreadyTerminal = errors.New("submission is already played or removed")

	// ErrInvalidTier is returned when a tier name is not part of the tier
	// table. This indicates a configuration or programming error in the
	// caller.
	ErrInvalidTier = errors.New("unknown tier")

	// ErrNoCandidate is returned by ClaimHead when the tier holds no
	// claimable submission. The selector treats this as "try the next
	// tier", never as a failure.
	ErrNoCandidate = errors.New("no claimable submission in tier")

	// ErrNoEligibleSubmission is returned when an owner has no active
	// submission that a gift promotion or skip purchase could apply to.
	ErrNoEligibleSubmission = errors.New("no eligible submission")

	// ErrInsufficientBalance is returned when a skip purchase costs more
	// than the owner's coin balance. The balance is left untouched.
	ErrInsufficientBalance = errors.New("insufficient coin balance")
)
