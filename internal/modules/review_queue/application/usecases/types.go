package usecases

import (
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// Re-export domain types for presentation layer use.
// This allows presentation to depend only on usecases without importing
// domain directly.

// Submission is an alias for domain.Submission.
type Submission = domain.Submission

// PublicID is an alias for domain.PublicID.
type PublicID = domain.PublicID

// Tier is an alias for domain.Tier.
type Tier = domain.Tier

// WalletEntry is an alias for domain.WalletEntry.
type WalletEntry = domain.WalletEntry
