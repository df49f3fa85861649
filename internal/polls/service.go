// Package polls implements the poll service: CRUD delegation to the store
// plus the in-memory title index kept in lockstep with it.
package polls

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gcbaptista/poll-search/internal/fuzzy"
	"github.com/gcbaptista/poll-search/internal/obs"
	"github.com/gcbaptista/poll-search/internal/trie"
	"github.com/gcbaptista/poll-search/model"
	"github.com/gcbaptista/poll-search/services"
)

const (
	defaultAutocompleteLimit = 10
)

// Settings tunes the search behavior of the service. Zero values select the
// defaults (autocomplete limit 10, fuzzy cutoff fuzzy.DefaultMaxDistance).
type Settings struct {
	AutocompleteLimit int
	FuzzyMaxDistance  int
}

// Service owns the title index and is the only mutator of it. The index is
// not internally synchronized, so every access goes through the service's
// RWMutex: searches share the read lock, mutations take the write lock.
// Index mutations happen strictly after the store confirms success, so the
// index never reflects a poll that does not exist in the store.
type Service struct {
	mu    sync.RWMutex
	store services.PollStore
	index *trie.Trie[model.PollSummary]
	log   zerolog.Logger

	autocompleteLimit int
	fuzzyMaxDistance  int
}

var _ services.PollService = (*Service)(nil)

// NewService creates a poll service around the given store. Call Initialize
// once during bootstrap to build the title index before serving requests.
func NewService(store services.PollStore, settings Settings) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}

	limit := settings.AutocompleteLimit
	if limit <= 0 {
		limit = defaultAutocompleteLimit
	}
	maxDistance := settings.FuzzyMaxDistance
	if maxDistance <= 0 {
		maxDistance = fuzzy.DefaultMaxDistance
	}

	return &Service{
		store:             store,
		index:             trie.New(func(p model.PollSummary) int64 { return p.ID }),
		log:               obs.Logger("polls"),
		autocompleteLimit: limit,
		fuzzyMaxDistance:  maxDistance,
	}, nil
}

// Initialize bulk-loads every poll summary from the store into the title
// index. The index holds no independent persistence; on restart it is always
// rebuilt from the store.
func (s *Service) Initialize(ctx context.Context) error {
	summaries, err := s.store.Summaries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load poll summaries: %w", err)
	}

	s.mu.Lock()
	for _, summary := range summaries {
		s.index.Insert(summary.Title, summary)
	}
	s.mu.Unlock()

	s.log.Info().Int("polls", len(summaries)).Msg("poll title index built")
	return nil
}

// Create inserts the poll into the store and, on success, indexes its title.
func (s *Service) Create(ctx context.Context, poll model.Poll, optionLabels []string) (model.Poll, error) {
	created, err := s.store.CreatePoll(ctx, poll, optionLabels)
	if err != nil {
		return model.Poll{}, err
	}

	s.mu.Lock()
	s.index.Insert(created.Title, created.Summary())
	s.mu.Unlock()

	s.log.Info().Int64("poll_id", created.ID).Str("title", created.Title).Msg("poll created")
	return created, nil
}

// Get returns a poll with its options and vote count.
func (s *Service) Get(ctx context.Context, id int64) (model.PollWithOptions, error) {
	return s.store.GetPoll(ctx, id)
}

// Update applies the patch in the store and keeps the index consistent: a
// title change removes the old path's entry before inserting the new one; an
// unchanged title still re-inserts to refresh the indexed payload.
func (s *Service) Update(ctx context.Context, id int64, patch services.PollPatch) (model.Poll, error) {
	old, err := s.store.GetPoll(ctx, id)
	if err != nil {
		return model.Poll{}, err
	}

	updated, err := s.store.UpdatePoll(ctx, id, patch)
	if err != nil {
		return model.Poll{}, err
	}

	s.mu.Lock()
	if old.Title != updated.Title {
		s.index.Remove(old.Title, id)
	}
	s.index.Insert(updated.Title, updated.Summary())
	s.mu.Unlock()

	return updated, nil
}

// Delete removes the poll from the store and, on success, from the index.
func (s *Service) Delete(ctx context.Context, id int64) error {
	poll, err := s.store.GetPoll(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeletePoll(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.index.Remove(poll.Title, id)
	s.mu.Unlock()

	s.log.Info().Int64("poll_id", id).Msg("poll deleted")
	return nil
}

// List delegates to the store's filtered, sorted, paginated listing.
func (s *Service) List(ctx context.Context, query services.ListQuery) ([]model.Poll, int, error) {
	return s.store.ListPolls(ctx, query)
}

// Vote records a vote for an option of a poll.
func (s *Service) Vote(ctx context.Context, pollID, optionID int64) error {
	return s.store.CastVote(ctx, pollID, optionID)
}

// Top returns active polls by all-time vote count.
func (s *Service) Top(ctx context.Context, limit int) ([]model.PollWithOptions, error) {
	return s.store.TopPolls(ctx, limit)
}

// Trending returns active polls by vote count over the last 24 hours.
func (s *Service) Trending(ctx context.Context, limit int) ([]model.PollWithOptions, error) {
	return s.store.TrendingPolls(ctx, limit)
}

// Autocomplete returns up to the configured limit of polls whose title
// starts with prefix. A blank prefix returns an empty slice without touching
// the index; the trie primitive itself would treat it as match-everything.
func (s *Service) Autocomplete(prefix string) []model.PollSummary {
	if strings.TrimSpace(prefix) == "" {
		return []model.PollSummary{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Search(prefix, s.autocompleteLimit)
}

// FuzzySearchTitles ranks a fresh candidate list from the store against the
// query. A negative maxDistance selects the configured default.
func (s *Service) FuzzySearchTitles(ctx context.Context, query string, maxDistance int) ([]services.FuzzyHit, error) {
	if maxDistance < 0 {
		maxDistance = s.fuzzyMaxDistance
	}

	summaries, err := s.store.Summaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load fuzzy search candidates: %w", err)
	}

	matches := fuzzy.Search(query, summaries, func(p model.PollSummary) string { return p.Title }, maxDistance)

	hits := make([]services.FuzzyHit, len(matches))
	for i, m := range matches {
		hits[i] = services.FuzzyHit{Poll: m.Item, Score: m.Score}
	}
	return hits, nil
}

// IndexSize reports how many polls are currently indexed.
func (s *Service) IndexSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Len()
}
