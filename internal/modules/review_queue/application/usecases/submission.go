package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/luxradio/queuebot/internal/modules/review_queue/application/ports"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
)

// DefaultPageSize is the number of submissions per listing page.
const DefaultPageSize = 10

// CreateSubmissionInput contains the input for the Create use case.
type CreateSubmissionInput struct {
	OwnerID      snowflake.ID
	OwnerName    string
	Artist       string // Optional: defaults to OwnerName
	Title        string // Optional: defaults to "Not Known"
	LinkOrFile   string
	Note         string
	TikTokHandle string // Optional linked handle for score aggregation
}

// CreateSubmissionOutput contains the result of the Create use case.
type CreateSubmissionOutput struct {
	Submission *domain.Submission
}

// ListTierInput contains the input for the List use case.
type ListTierInput struct {
	Tier     domain.Tier
	Page     int // 1-indexed page number
	PageSize int // Items per page (optional, defaults to 10)
}

// ListTierOutput contains the result of the List use case.
type ListTierOutput struct {
	Submissions []*domain.Submission
	TotalCount  int
	CurrentPage int
	TotalPages  int
}

// SubmissionService handles submission creation and queries.
type SubmissionService struct {
	repo      domain.SubmissionRepository
	publisher ports.EventPublisher
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	repo domain.SubmissionRepository,
	publisher ports.EventPublisher,
) *SubmissionService {
	return &SubmissionService{
		repo:      repo,
		publisher: publisher,
	}
}

// Create stores a new submission in the Free tier and publishes an event
// so the tier display refreshes.
func (s *SubmissionService) Create(
	ctx context.Context,
	input CreateSubmissionInput,
) (*CreateSubmissionOutput, error) {
	sub := domain.NewSubmission(
		input.OwnerID,
		input.OwnerName,
		input.Artist,
		input.Title,
		input.LinkOrFile,
		input.Note,
		input.TikTokHandle,
	)

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishSubmissionCreated(domain.SubmissionCreatedEvent{
			Submission: sub.Clone(),
		})
	}

	return &CreateSubmissionOutput{Submission: sub}, nil
}

// Get returns the submission for the given public ID.
func (s *SubmissionService) Get(
	ctx context.Context,
	id domain.PublicID,
) (*domain.Submission, error) {
	return s.repo.GetByPublicID(ctx, id)
}

// ActiveFor returns the owner's newest non-terminal submission, or
// ErrNoEligibleSubmission.
func (s *SubmissionService) ActiveFor(
	ctx context.Context,
	owner snowflake.ID,
) (*domain.Submission, error) {
	return s.repo.ActiveByOwner(ctx, owner)
}

// List returns one page of a tier in serving order.
func (s *SubmissionService) List(
	ctx context.Context,
	input ListTierInput,
) (*ListTierOutput, error) {
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	page := input.Page
	if page <= 0 {
		page = 1
	}

	subs, total, err := s.repo.ListByTier(ctx, input.Tier, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	return &ListTierOutput{
		Submissions: subs,
		TotalCount:  total,
		CurrentPage: page,
		TotalPages:  totalPages,
	}, nil
}
