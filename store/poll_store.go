// Package store implements the poll store on SQLite. It is the sole source
// of truth for polls; the in-memory title index is rebuilt from it on startup
// and mutated only after a store operation confirms success.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	internalErrors "github.com/gcbaptista/poll-search/internal/errors"
	"github.com/gcbaptista/poll-search/model"
	"github.com/gcbaptista/poll-search/services"
)

const schema = `
CREATE TABLE IF NOT EXISTS polls (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    ends_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS options (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    poll_id INTEGER NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
    label TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_options_poll_id ON options(poll_id);

CREATE TABLE IF NOT EXISTS votes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    poll_id INTEGER NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
    option_id INTEGER NOT NULL REFERENCES options(id) ON DELETE CASCADE,
    voted_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_votes_poll_id ON votes(poll_id);
CREATE INDEX IF NOT EXISTS idx_votes_poll_voted_at ON votes(poll_id, voted_at);
`

// sortColumns whitelists the columns ListPolls may sort by.
var sortColumns = map[string]string{
	"id":         "id",
	"title":      "title",
	"created_at": "created_at",
	"ends_at":    "ends_at",
}

// PollStore is a SQLite-backed implementation of services.PollStore.
type PollStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ services.PollStore = (*PollStore)(nil)

// Open opens (creating if needed) the SQLite database at path and ensures
// the schema exists. Safe to call on an existing database.
func Open(path string) (*PollStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// SQLite allows a single writer; a single connection also keeps PRAGMA
	// state and in-memory databases stable across queries.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PollStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *PollStore) Close() error {
	return s.db.Close()
}

// CreatePoll inserts a poll and its options in one transaction. A duplicate
// title maps to ErrDuplicateTitle.
func (s *PollStore) CreatePoll(ctx context.Context, poll model.Poll, optionLabels []string) (model.Poll, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Poll{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	poll.CreatedAt = s.now().UTC()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO polls (title, description, is_active, created_at, ends_at)
		VALUES (?, ?, ?, ?, ?)
	`, poll.Title, poll.Description, poll.IsActive, poll.CreatedAt, nullTime(poll.EndsAt))
	if err != nil {
		if isUniqueViolation(err) {
			return model.Poll{}, internalErrors.NewDuplicateTitleError(poll.Title)
		}
		return model.Poll{}, fmt.Errorf("failed to insert poll: %w", err)
	}

	poll.ID, err = res.LastInsertId()
	if err != nil {
		return model.Poll{}, fmt.Errorf("failed to read poll id: %w", err)
	}

	for _, label := range optionLabels {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO options (poll_id, label) VALUES (?, ?)
		`, poll.ID, label); err != nil {
			return model.Poll{}, fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Poll{}, fmt.Errorf("failed to commit poll creation: %w", err)
	}
	return poll, nil
}

// GetPoll returns a poll with its options and total vote count.
func (s *PollStore) GetPoll(ctx context.Context, id int64) (model.PollWithOptions, error) {
	var (
		poll   model.Poll
		endsAt sql.NullTime
		votes  int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.title, p.description, p.is_active, p.created_at, p.ends_at,
		       (SELECT COUNT(*) FROM votes v WHERE v.poll_id = p.id)
		FROM polls p
		WHERE p.id = ?
	`, id).Scan(&poll.ID, &poll.Title, &poll.Description, &poll.IsActive, &poll.CreatedAt, &endsAt, &votes)
	if err == sql.ErrNoRows {
		return model.PollWithOptions{}, internalErrors.NewPollNotFoundError(id)
	}
	if err != nil {
		return model.PollWithOptions{}, fmt.Errorf("failed to query poll %d: %w", id, err)
	}
	if endsAt.Valid {
		poll.EndsAt = &endsAt.Time
	}

	options, err := s.pollOptions(ctx, id)
	if err != nil {
		return model.PollWithOptions{}, err
	}

	return model.PollWithOptions{Poll: poll, Options: options, VoteCount: votes}, nil
}

// UpdatePoll applies the non-nil fields of patch and returns the updated
// poll. Renaming to an existing title maps to ErrDuplicateTitle.
func (s *PollStore) UpdatePoll(ctx context.Context, id int64, patch services.PollPatch) (model.Poll, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *patch.IsActive)
	}
	if patch.EndsAt != nil {
		sets = append(sets, "ends_at = ?")
		args = append(args, *patch.EndsAt)
	}

	if len(sets) > 0 {
		args = append(args, id)
		res, err := s.db.ExecContext(ctx,
			"UPDATE polls SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			if isUniqueViolation(err) {
				return model.Poll{}, internalErrors.NewDuplicateTitleError(*patch.Title)
			}
			return model.Poll{}, fmt.Errorf("failed to update poll %d: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return model.Poll{}, fmt.Errorf("failed to read update result: %w", err)
		}
		if affected == 0 {
			return model.Poll{}, internalErrors.NewPollNotFoundError(id)
		}
	}

	var (
		poll   model.Poll
		endsAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, is_active, created_at, ends_at
		FROM polls WHERE id = ?
	`, id).Scan(&poll.ID, &poll.Title, &poll.Description, &poll.IsActive, &poll.CreatedAt, &endsAt)
	if err == sql.ErrNoRows {
		return model.Poll{}, internalErrors.NewPollNotFoundError(id)
	}
	if err != nil {
		return model.Poll{}, fmt.Errorf("failed to query updated poll %d: %w", id, err)
	}
	if endsAt.Valid {
		poll.EndsAt = &endsAt.Time
	}
	return poll, nil
}

// DeletePoll removes a poll; options and votes cascade.
func (s *PollStore) DeletePoll(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM polls WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete poll %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return internalErrors.NewPollNotFoundError(id)
	}
	return nil
}

// ListPolls returns one page of polls plus the total count matching the
// query's filters.
func (s *PollStore) ListPolls(ctx context.Context, query services.ListQuery) ([]model.Poll, int, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 10
	}

	where := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if query.Search != "" {
		where = append(where, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + query.Search + "%"
		args = append(args, pattern, pattern)
	}
	if query.IsActive != nil {
		where = append(where, "is_active = ?")
		args = append(args, *query.IsActive)
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM polls"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count polls: %w", err)
	}

	sortCol, ok := sortColumns[query.Sort]
	if !ok {
		sortCol = "id"
	}
	order := "DESC"
	if strings.EqualFold(query.Order, "asc") {
		order = "ASC"
	}

	listArgs := append(args, limit, (page-1)*limit)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, is_active, created_at, ends_at
		FROM polls`+whereClause+`
		ORDER BY `+sortCol+` `+order+`
		LIMIT ? OFFSET ?
	`, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	polls := []model.Poll{}
	for rows.Next() {
		var (
			poll   model.Poll
			endsAt sql.NullTime
		)
		if err := rows.Scan(&poll.ID, &poll.Title, &poll.Description, &poll.IsActive, &poll.CreatedAt, &endsAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan poll: %w", err)
		}
		if endsAt.Valid {
			poll.EndsAt = &endsAt.Time
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate polls: %w", err)
	}
	return polls, total, nil
}

// Summaries returns the projection of every poll used to build the title
// index at startup.
func (s *PollStore) Summaries(ctx context.Context) ([]model.PollSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, is_active FROM polls ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query poll summaries: %w", err)
	}
	defer rows.Close()

	summaries := []model.PollSummary{}
	for rows.Next() {
		var summary model.PollSummary
		if err := rows.Scan(&summary.ID, &summary.Title, &summary.Description, &summary.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan poll summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate poll summaries: %w", err)
	}
	return summaries, nil
}

// CastVote records a vote for an option. The insert only matches when the
// option belongs to the poll, so a mismatched pair maps to ErrOptionNotFound.
func (s *PollStore) CastVote(ctx context.Context, pollID, optionID int64) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO votes (poll_id, option_id, voted_at)
		SELECT poll_id, id, ? FROM options WHERE id = ? AND poll_id = ?
	`, s.now().UTC(), optionID, pollID)
	if err != nil {
		return fmt.Errorf("failed to cast vote: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read vote result: %w", err)
	}
	if affected == 0 {
		return internalErrors.NewOptionNotFoundError(pollID, optionID)
	}
	return nil
}

// TopPolls returns active polls ordered by all-time vote count.
func (s *PollStore) TopPolls(ctx context.Context, limit int) ([]model.PollWithOptions, error) {
	return s.rankedPolls(ctx, `
		SELECT p.id, p.title, p.description, p.is_active, p.created_at, p.ends_at, COUNT(v.id) AS vote_count
		FROM polls p
		LEFT JOIN votes v ON v.poll_id = p.id
		WHERE p.is_active = 1
		GROUP BY p.id
		ORDER BY vote_count DESC, p.id ASC
		LIMIT ?
	`, limit)
}

// TrendingPolls returns active polls that received votes in the last 24
// hours, ordered by that recent vote count.
func (s *PollStore) TrendingPolls(ctx context.Context, limit int) ([]model.PollWithOptions, error) {
	since := s.now().UTC().Add(-24 * time.Hour)
	return s.rankedPolls(ctx, `
		SELECT p.id, p.title, p.description, p.is_active, p.created_at, p.ends_at, COUNT(v.id) AS vote_count
		FROM polls p
		JOIN votes v ON v.poll_id = p.id AND v.voted_at >= ?
		WHERE p.is_active = 1
		GROUP BY p.id
		ORDER BY vote_count DESC, p.id ASC
		LIMIT ?
	`, since, limit)
}

func (s *PollStore) rankedPolls(ctx context.Context, query string, args ...any) ([]model.PollWithOptions, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranked polls: %w", err)
	}
	defer rows.Close()

	polls := []model.PollWithOptions{}
	for rows.Next() {
		var (
			poll   model.Poll
			endsAt sql.NullTime
			votes  int
		)
		if err := rows.Scan(&poll.ID, &poll.Title, &poll.Description, &poll.IsActive, &poll.CreatedAt, &endsAt, &votes); err != nil {
			return nil, fmt.Errorf("failed to scan ranked poll: %w", err)
		}
		if endsAt.Valid {
			poll.EndsAt = &endsAt.Time
		}
		polls = append(polls, model.PollWithOptions{Poll: poll, VoteCount: votes})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ranked polls: %w", err)
	}

	for i := range polls {
		options, err := s.pollOptions(ctx, polls[i].ID)
		if err != nil {
			return nil, err
		}
		polls[i].Options = options
	}
	return polls, nil
}

func (s *PollStore) pollOptions(ctx context.Context, pollID int64) ([]model.Option, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, poll_id, label FROM options WHERE poll_id = ? ORDER BY id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options for poll %d: %w", pollID, err)
	}
	defer rows.Close()

	options := []model.Option{}
	for rows.Next() {
		var opt model.Option
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Label); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate options: %w", err)
	}
	return options, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
