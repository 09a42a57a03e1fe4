package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/pkg/db"
)

// maxCreateAttempts bounds retries when two admins create an event in the
// same community at once and collide on the next ID.
const maxCreateAttempts = 3

// EventRepository stores betting events as JSON documents.
type EventRepository struct {
	db db.Querier
}

// NewEventRepository creates a new EventRepository instance.
func NewEventRepository(q db.Querier) *EventRepository {
	return &EventRepository{db: q}
}

// WithTx returns a copy of the repository bound to tx.
func (r *EventRepository) WithTx(tx pgx.Tx) *EventRepository {
	return &EventRepository{db: tx}
}

// Create stores the event under (max existing ID in the community) + 1 and
// sets ev.ID.
func (r *EventRepository) Create(ctx context.Context, ev *model.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	const query = `
		INSERT INTO saved_events (community_id, event_id, data)
		SELECT $1::bigint, COALESCE(MAX(event_id), 0) + 1, $2::jsonb
		FROM saved_events
		WHERE community_id = $1
		RETURNING event_id, created_at
	`

	for attempt := 1; ; attempt++ {
		err = r.db.QueryRow(ctx, query, ev.CommunityID, data).Scan(&ev.ID, &ev.CreatedAt)
		if err == nil {
			return nil
		}
		if !db.IsUniqueViolation(err) || attempt == maxCreateAttempts {
			return fmt.Errorf("failed to create event: %w", err)
		}
	}
}

func decodeEvent(communityID, eventID int64, data []byte, ev *model.Event) error {
	if err := json.Unmarshal(data, ev); err != nil {
		return fmt.Errorf("failed to decode event %d: %w", eventID, err)
	}
	ev.CommunityID = communityID
	ev.ID = eventID
	return nil
}

func (r *EventRepository) getRow(ctx context.Context, query string, communityID, eventID int64) (*model.Event, error) {
	var (
		data []byte
		ev   model.Event
	)
	err := r.db.QueryRow(ctx, query, communityID, eventID).Scan(&data, &ev.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if err := decodeEvent(communityID, eventID, data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Get returns one event.
func (r *EventRepository) Get(ctx context.Context, communityID, eventID int64) (*model.Event, error) {
	const query = `
		SELECT data, created_at FROM saved_events
		WHERE community_id = $1 AND event_id = $2
	`
	return r.getRow(ctx, query, communityID, eventID)
}

// GetForUpdate returns one event and row-locks it until the transaction
// ends. A concurrent settler blocks here and then finds no row.
func (r *EventRepository) GetForUpdate(ctx context.Context, communityID, eventID int64) (*model.Event, error) {
	const query = `
		SELECT data, created_at FROM saved_events
		WHERE community_id = $1 AND event_id = $2
		FOR UPDATE
	`
	return r.getRow(ctx, query, communityID, eventID)
}

// GetForShare returns one event and blocks settlement and lock toggles
// until the transaction ends.
func (r *EventRepository) GetForShare(ctx context.Context, communityID, eventID int64) (*model.Event, error) {
	const query = `
		SELECT data, created_at FROM saved_events
		WHERE community_id = $1 AND event_id = $2
		FOR SHARE
	`
	return r.getRow(ctx, query, communityID, eventID)
}

// List returns all events of a community ordered by ID.
func (r *EventRepository) List(ctx context.Context, communityID int64) ([]*model.Event, error) {
	const query = `
		SELECT event_id, data, created_at FROM saved_events
		WHERE community_id = $1
		ORDER BY event_id
	`

	rows, err := r.db.Query(ctx, query, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		var (
			id   int64
			data []byte
			ev   model.Event
		)
		if err := rows.Scan(&id, &data, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if err := decodeEvent(communityID, id, data, &ev); err != nil {
			return nil, err
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// SetLocked flips the locked flag inside the stored document.
// Returns ErrEventNotFound if the event does not exist.
func (r *EventRepository) SetLocked(ctx context.Context, communityID, eventID int64, locked bool) error {
	const query = `
		UPDATE saved_events
		SET data = jsonb_set(data, '{locked}', to_jsonb($3::boolean))
		WHERE community_id = $1 AND event_id = $2
	`

	result, err := r.db.Exec(ctx, query, communityID, eventID, locked)
	if err != nil {
		return fmt.Errorf("failed to update event lock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Delete removes an event. Its bets go with it through ON DELETE CASCADE.
func (r *EventRepository) Delete(ctx context.Context, communityID, eventID int64) (bool, error) {
	const query = `DELETE FROM saved_events WHERE community_id = $1 AND event_id = $2`

	result, err := r.db.Exec(ctx, query, communityID, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
