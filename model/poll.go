package model

import "time"

// Poll is a single poll record as stored in the poll store.
type Poll struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

// Summary returns the projection of the poll that gets indexed for
// autocomplete and fuzzy search.
func (p Poll) Summary() PollSummary {
	return PollSummary{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		IsActive:    p.IsActive,
	}
}

// Option is a votable option belonging to a poll.
type Option struct {
	ID     int64  `json:"id"`
	PollID int64  `json:"poll_id"`
	Label  string `json:"label"`
}

// PollWithOptions is a poll together with its options and total vote count,
// as returned by single-poll lookups and the top/trending queries.
type PollWithOptions struct {
	Poll
	Options   []Option `json:"options"`
	VoteCount int      `json:"vote_count"`
}

// PollSummary is the minimal projection kept in the title index. The stored
// title retains its original casing; only index traversal lowercases it.
type PollSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}
