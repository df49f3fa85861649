package services

import (
	"context"
	"time"

	"github.com/gcbaptista/poll-search/model"
)

// ListQuery describes pagination, filtering, and sorting for poll listings.
type ListQuery struct {
	Page     int    // 1-based; defaults to 1
	Limit    int    // page size; defaults to 10
	Search   string // case-insensitive substring match over title and description
	IsActive *bool  // optional activity filter
	Sort     string // one of: id, title, created_at, ends_at
	Order    string // "asc" or "desc"
}

// ListMeta carries pagination metadata alongside a page of polls.
type ListMeta struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// PollPatch is a partial update to a poll. Nil fields are left unchanged.
type PollPatch struct {
	Title       *string
	Description *string
	IsActive    *bool
	EndsAt      *time.Time
}

// FuzzyHit is a single fuzzy search result: a poll summary and its score
// (0 for substring containment, otherwise the edit distance to the query).
type FuzzyHit struct {
	Poll  model.PollSummary `json:"poll"`
	Score int               `json:"score"`
}

// PollStore is the persistence collaborator. It is the sole source of truth:
// a store operation must confirm success before any index mutation happens.
type PollStore interface {
	CreatePoll(ctx context.Context, poll model.Poll, optionLabels []string) (model.Poll, error)
	GetPoll(ctx context.Context, id int64) (model.PollWithOptions, error)
	UpdatePoll(ctx context.Context, id int64, patch PollPatch) (model.Poll, error)
	DeletePoll(ctx context.Context, id int64) error
	ListPolls(ctx context.Context, query ListQuery) ([]model.Poll, int, error)
	Summaries(ctx context.Context) ([]model.PollSummary, error)
	CastVote(ctx context.Context, pollID, optionID int64) error
	TopPolls(ctx context.Context, limit int) ([]model.PollWithOptions, error)
	TrendingPolls(ctx context.Context, limit int) ([]model.PollWithOptions, error)
	Close() error
}

// PollService is the upward contract consumed by the API layer. It wraps the
// store and keeps the in-memory title index in lockstep with it.
type PollService interface {
	Create(ctx context.Context, poll model.Poll, optionLabels []string) (model.Poll, error)
	Get(ctx context.Context, id int64) (model.PollWithOptions, error)
	Update(ctx context.Context, id int64, patch PollPatch) (model.Poll, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, query ListQuery) ([]model.Poll, int, error)
	Vote(ctx context.Context, pollID, optionID int64) error
	Top(ctx context.Context, limit int) ([]model.PollWithOptions, error)
	Trending(ctx context.Context, limit int) ([]model.PollWithOptions, error)

	// Autocomplete returns up to the configured limit of polls whose title
	// starts with the given prefix (case-insensitive). A blank prefix yields
	// an empty result without touching the index.
	Autocomplete(prefix string) []model.PollSummary

	// FuzzySearchTitles ranks the current poll titles against the query by
	// containment-first, edit-distance-fallback scoring. A negative
	// maxDistance selects the configured default.
	FuzzySearchTitles(ctx context.Context, query string, maxDistance int) ([]FuzzyHit, error)

	// IndexSize reports how many polls are currently indexed.
	IndexSize() int
}
