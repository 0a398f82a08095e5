package domain

// SubmissionCreatedEvent is published when a new submission enters the
// queue. Display collaborators refresh the Free tier on it.
type SubmissionCreatedEvent struct {
	Submission *Submission
}

// TierChangedEvent is published when a submission moves between tiers.
// It is suppressed when From == To, so subscribers can refresh exactly
// the two affected tier displays without diffing.
type TierChangedEvent struct {
	PublicID PublicID
	From     Tier
	To       Tier
}

// SubmissionServedEvent is published when the selector claims a
// submission. Submission is the snapshot as it existed immediately
// before the claim, with its original tier intact.
type SubmissionServedEvent struct {
	Submission *Submission
}
