package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// PublicID is the short opaque identifier exposed to users.
type PublicID string

// Submission represents one user's music entry in the review queue.
type Submission struct {
	// Seq is the internal sequence number assigned at creation. It is
	// strictly increasing and used as the stable tie-break within a tier.
	Seq      int64
	PublicID PublicID

	OwnerID   snowflake.ID
	OwnerName string

	Artist     string
	Title      string
	LinkOrFile string
	Note       string

	// TikTokHandle is the optional linked streaming handle whose point
	// balance contributes to the score.
	TikTokHandle string

	Tier  Tier
	Score float64

	SubmittedAt time.Time
	// PlayedAt is nil until the submission is served, then set exactly
	// once. It survives a later retraction to TierRemoved.
	PlayedAt *time.Time
}

// NewSubmission creates a submission with creation-time defaults applied:
// tier Free, score zero, and the original's fallbacks for blank display
// fields. Seq and PublicID are assigned by the store on Create.
func NewSubmission(
	ownerID snowflake.ID,
	ownerName string,
	artist string,
	title string,
	linkOrFile string,
	note string,
	tiktokHandle string,
) *Submission {
	if artist == "" {
		artist = ownerName
	}
	if title == "" {
		title = "Not Known"
	}
	return &Submission{
		OwnerID:      ownerID,
		OwnerName:    ownerName,
		Artist:       artist,
		Title:        title,
		LinkOrFile:   linkOrFile,
		Note:         note,
		TikTokHandle: tiktokHandle,
		Tier:         TierFree,
		Score:        0,
		SubmittedAt:  time.Now().UTC(),
	}
}

// IsPlayed reports whether the submission has been served.
func (s *Submission) IsPlayed() bool {
	return s.PlayedAt != nil
}

// Clone returns a deep copy. Stores hand out clones so callers can never
// mutate persisted state through a returned pointer.
func (s *Submission) Clone() *Submission {
	dup := *s
	if s.PlayedAt != nil {
		playedAt := *s.PlayedAt
		dup.PlayedAt = &playedAt
	}
	return &dup
}
