// internal/room/memstore_test.go
package room_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/yamabiko/liveroom/internal/models"
	"github.com/yamabiko/liveroom/internal/room"
)

// stateChange records one successful AdvanceState CAS, so tests can assert
// how many transitions actually happened under contention.
type stateChange struct {
	roomID   int64
	from, to models.RoomState
}

// memStore implements room.Store in memory. A single mutex held for the
// whole of InTx stands in for the database's transaction scope, giving the
// same all-or-nothing interleaving guarantees the pgx store gets from row
// locks.
type memStore struct {
	mu         sync.Mutex
	nextRoomID int64
	nextUserID int64
	rooms      map[int64]*models.Room
	members    map[int64][]*models.RoomMember
	users      map[int64]memUser

	transitions []stateChange
	failWith    error
}

type memUser struct {
	name         string
	leaderCardID int64
}

func newMemStore() *memStore {
	return &memStore{
		rooms:   make(map[int64]*models.Room),
		members: make(map[int64][]*models.RoomMember),
		users:   make(map[int64]memUser),
	}
}

func (s *memStore) addUser(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	s.users[s.nextUserID] = memUser{name: name, leaderCardID: s.nextUserID * 100}
	return s.nextUserID
}

func (s *memStore) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *memStore) changes() []stateChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stateChange(nil), s.transitions...)
}

func (s *memStore) InTx(ctx context.Context, fn func(tx room.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	return fn(s)
}

func (s *memStore) InsertRoom(ctx context.Context, liveID int64, maxCapacity int) (int64, error) {
	s.nextRoomID++
	id := s.nextRoomID
	s.rooms[id] = &models.Room{
		ID:          id,
		LiveID:      liveID,
		MaxCapacity: maxCapacity,
		State:       models.RoomStateWaiting,
	}
	return id, nil
}

func (s *memStore) RoomByID(ctx context.Context, roomID int64) (*models.Room, error) {
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, models.ErrRoomNotFound
	}
	copied := *r
	return &copied, nil
}

func (s *memStore) RoomForUpdate(ctx context.Context, roomID int64) (*models.Room, error) {
	return s.RoomByID(ctx, roomID)
}

func (s *memStore) WaitingRooms(ctx context.Context, liveID int64) ([]models.Room, error) {
	var out []models.Room
	for id := int64(1); id <= s.nextRoomID; id++ {
		r, ok := s.rooms[id]
		if !ok || r.State != models.RoomStateWaiting {
			continue
		}
		if liveID != 0 && r.LiveID != liveID {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (s *memStore) InsertMember(ctx context.Context, roomID, userID int64, difficulty models.LiveDifficulty, isHost bool) error {
	if _, ok := s.rooms[roomID]; !ok {
		return models.ErrRoomNotFound
	}
	for _, m := range s.members[roomID] {
		if m.UserID == userID {
			return models.ErrDuplicateMembership
		}
	}
	u := s.users[userID]
	if u.name == "" {
		u.name = fmt.Sprintf("user-%d", userID)
	}
	s.members[roomID] = append(s.members[roomID], &models.RoomMember{
		RoomID:       roomID,
		UserID:       userID,
		Name:         u.name,
		LeaderCardID: u.leaderCardID,
		Difficulty:   difficulty,
		IsHost:       isHost,
	})
	return nil
}

func (s *memStore) DeleteMember(ctx context.Context, roomID, userID int64) (bool, error) {
	list := s.members[roomID]
	for i, m := range list {
		if m.UserID == userID {
			s.members[roomID] = append(list[:i:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) IncrementJoined(ctx context.Context, roomID int64) error {
	r, ok := s.rooms[roomID]
	if !ok {
		return models.ErrRoomNotFound
	}
	if r.JoinedCount >= r.MaxCapacity {
		return fmt.Errorf("room %d: joined_count would exceed capacity", roomID)
	}
	r.JoinedCount++
	return nil
}

func (s *memStore) DecrementJoined(ctx context.Context, roomID int64) error {
	r, ok := s.rooms[roomID]
	if !ok {
		return models.ErrRoomNotFound
	}
	if r.JoinedCount <= 0 {
		return fmt.Errorf("room %d: joined_count would drop below zero", roomID)
	}
	r.JoinedCount--
	return nil
}

func (s *memStore) AdvanceState(ctx context.Context, roomID int64, from, to models.RoomState) (bool, error) {
	r, ok := s.rooms[roomID]
	if !ok || r.State != from {
		return false, nil
	}
	r.State = to
	s.transitions = append(s.transitions, stateChange{roomID: roomID, from: from, to: to})
	return true, nil
}

func (s *memStore) Members(ctx context.Context, roomID int64) ([]models.RoomMember, error) {
	var out []models.RoomMember
	for _, m := range s.members[roomID] {
		out = append(out, *m)
	}
	return out, nil
}

func (s *memStore) SetResult(ctx context.Context, roomID, userID int64, judgeCounts []int, score int) error {
	for _, m := range s.members[roomID] {
		if m.UserID == userID {
			m.JudgeCounts = append([]int(nil), judgeCounts...)
			sc := score
			m.Score = &sc
			return nil
		}
	}
	return models.ErrMemberNotFound
}

func (s *memStore) SubmittedCount(ctx context.Context, roomID int64) (int, error) {
	n := 0
	for _, m := range s.members[roomID] {
		if m.Submitted() {
			n++
		}
	}
	return n, nil
}

func (s *memStore) HasActiveMembership(ctx context.Context, userID int64) (bool, error) {
	for roomID, list := range s.members {
		r, ok := s.rooms[roomID]
		if !ok || r.State.Terminal() {
			continue
		}
		for _, m := range list {
			if m.UserID == userID {
				return true, nil
			}
		}
	}
	return false, nil
}
