// internal/database/room.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yamabiko/liveroom/internal/models"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// InsertRoom creates a Waiting room with no members yet and returns its id.
func (s *Store) InsertRoom(ctx context.Context, liveID int64, maxCapacity int) (int64, error) {
	q := `
	INSERT INTO rooms (live_id, joined_count, max_capacity, state)
	VALUES ($1, 0, $2, $3)
	RETURNING id
	`
	var id int64
	if err := s.db.QueryRow(ctx, q, liveID, maxCapacity, models.RoomStateWaiting).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert room: %w", err)
	}
	return id, nil
}

func (s *Store) RoomByID(ctx context.Context, roomID int64) (*models.Room, error) {
	return s.roomByID(ctx, roomID, false)
}

func (s *Store) RoomForUpdate(ctx context.Context, roomID int64) (*models.Room, error) {
	return s.roomByID(ctx, roomID, true)
}

func (s *Store) roomByID(ctx context.Context, roomID int64, forUpdate bool) (*models.Room, error) {
	q := `SELECT id, live_id, joined_count, max_capacity, state FROM rooms WHERE id = $1`
	if forUpdate {
		q += ` FOR UPDATE`
	}

	var r models.Room
	err := s.db.QueryRow(ctx, q, roomID).Scan(
		&r.ID, &r.LiveID, &r.JoinedCount, &r.MaxCapacity, &r.State,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room %d: %w", roomID, err)
	}
	return &r, nil
}

// WaitingRooms lists joinable rooms for the live; liveID 0 matches all.
func (s *Store) WaitingRooms(ctx context.Context, liveID int64) ([]models.Room, error) {
	q := `
	SELECT id, live_id, joined_count, max_capacity, state
	FROM rooms
	WHERE state = $1 AND ($2 = 0 OR live_id = $2)
	ORDER BY id
	`
	rows, err := s.db.Query(ctx, q, models.RoomStateWaiting, liveID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var r models.Room
		if err := rows.Scan(&r.ID, &r.LiveID, &r.JoinedCount, &r.MaxCapacity, &r.State); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func (s *Store) InsertMember(ctx context.Context, roomID, userID int64, difficulty models.LiveDifficulty, isHost bool) error {
	q := `
	INSERT INTO room_members (room_id, user_id, difficulty, is_host)
	VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.Exec(ctx, q, roomID, userID, difficulty, isHost)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return models.ErrDuplicateMembership
			case pgForeignKeyViolation:
				return models.ErrRoomNotFound
			}
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (s *Store) DeleteMember(ctx context.Context, roomID, userID int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM room_members WHERE room_id = $1 AND user_id = $2`, roomID, userID)
	if err != nil {
		return false, fmt.Errorf("delete member: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementJoined bumps joined_count, refusing to pass max_capacity. An
// affected-row count of zero means the caller's capacity guard and the row
// disagree, which is an invariant breach, not a normal outcome.
func (s *Store) IncrementJoined(ctx context.Context, roomID int64) error {
	q := `UPDATE rooms SET joined_count = joined_count + 1 WHERE id = $1 AND joined_count < max_capacity`
	tag, err := s.db.Exec(ctx, q, roomID)
	if err != nil {
		return fmt.Errorf("increment joined_count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("room %d: joined_count would exceed capacity", roomID)
	}
	return nil
}

func (s *Store) DecrementJoined(ctx context.Context, roomID int64) error {
	q := `UPDATE rooms SET joined_count = joined_count - 1 WHERE id = $1 AND joined_count > 0`
	tag, err := s.db.Exec(ctx, q, roomID)
	if err != nil {
		return fmt.Errorf("decrement joined_count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("room %d: joined_count would drop below zero", roomID)
	}
	return nil
}

// AdvanceState is a compare-and-swap on the room's lifecycle state.
func (s *Store) AdvanceState(ctx context.Context, roomID int64, from, to models.RoomState) (bool, error) {
	q := `UPDATE rooms SET state = $3 WHERE id = $1 AND state = $2`
	tag, err := s.db.Exec(ctx, q, roomID, from, to)
	if err != nil {
		return false, fmt.Errorf("advance room %d state: %w", roomID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Members returns the room's memberships joined with user profiles.
func (s *Store) Members(ctx context.Context, roomID int64) ([]models.RoomMember, error) {
	q := `
	SELECT m.room_id, m.user_id, u.name, u.leader_card_id,
	       m.difficulty, m.is_host, m.judge_counts, m.score
	FROM room_members m
	JOIN users u ON u.id = m.user_id
	WHERE m.room_id = $1
	ORDER BY m.is_host DESC, m.user_id
	`
	rows, err := s.db.Query(ctx, q, roomID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []models.RoomMember
	for rows.Next() {
		var m models.RoomMember
		if err := rows.Scan(
			&m.RoomID, &m.UserID, &m.Name, &m.LeaderCardID,
			&m.Difficulty, &m.IsHost, &m.JudgeCounts, &m.Score,
		); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) SetResult(ctx context.Context, roomID, userID int64, judgeCounts []int, score int) error {
	q := `UPDATE room_members SET judge_counts = $3, score = $4 WHERE room_id = $1 AND user_id = $2`
	tag, err := s.db.Exec(ctx, q, roomID, userID, judgeCounts, score)
	if err != nil {
		return fmt.Errorf("set result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrMemberNotFound
	}
	return nil
}

func (s *Store) SubmittedCount(ctx context.Context, roomID int64) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM room_members WHERE room_id = $1 AND score IS NOT NULL`, roomID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count submitted: %w", err)
	}
	return n, nil
}

// HasActiveMembership reports whether the user is in any Waiting or live
// room. Used to enforce one active membership per user.
func (s *Store) HasActiveMembership(ctx context.Context, userID int64) (bool, error) {
	q := `
	SELECT EXISTS (
		SELECT 1
		FROM room_members m
		JOIN rooms r ON r.id = m.room_id
		WHERE m.user_id = $1 AND r.state IN ($2, $3)
	)
	`
	var active bool
	err := s.db.QueryRow(ctx, q, userID, models.RoomStateWaiting, models.RoomStateLive).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("check active membership: %w", err)
	}
	return active, nil
}
