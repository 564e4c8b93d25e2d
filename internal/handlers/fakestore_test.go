// internal/handlers/fakestore_test.go
package handlers_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/yamabiko/liveroom/internal/models"
	"github.com/yamabiko/liveroom/internal/room"
)

// fakeStore backs the facade tests: it implements both the user directory
// store and room.Store over shared maps. One mutex, held for the whole of
// InTx, plays the role of the database's transaction scope; the room
// primitives assume it is held and never lock themselves.
type fakeStore struct {
	mu         sync.Mutex
	nextUserID int64
	nextRoomID int64
	byToken    map[string]*models.User
	byID       map[int64]*models.User
	rooms      map[int64]*models.Room
	members    map[int64][]*models.RoomMember
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byToken: make(map[string]*models.User),
		byID:    make(map[int64]*models.User),
		rooms:   make(map[int64]*models.Room),
		members: make(map[int64][]*models.RoomMember),
	}
}

// user directory store

func (s *fakeStore) CreateUser(ctx context.Context, name string, leaderCardID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	u := &models.User{
		ID:           s.nextUserID,
		Name:         name,
		LeaderCardID: leaderCardID,
		Token:        uuid.NewString(),
	}
	s.byToken[u.Token] = u
	s.byID[u.ID] = u
	copied := *u
	return &copied, nil
}

func (s *fakeStore) UserByToken(ctx context.Context, token string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byToken[token]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *fakeStore) UpdateUser(ctx context.Context, token, name string, leaderCardID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byToken[token]
	if !ok {
		return models.ErrUserNotFound
	}
	u.Name = name
	u.LeaderCardID = leaderCardID
	return nil
}

// room.Store

func (s *fakeStore) InTx(ctx context.Context, fn func(tx room.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

func (s *fakeStore) InsertRoom(ctx context.Context, liveID int64, maxCapacity int) (int64, error) {
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

func (s *fakeStore) RoomByID(ctx context.Context, roomID int64) (*models.Room, error) {
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, models.ErrRoomNotFound
	}
	copied := *r
	return &copied, nil
}

func (s *fakeStore) RoomForUpdate(ctx context.Context, roomID int64) (*models.Room, error) {
	return s.RoomByID(ctx, roomID)
}

func (s *fakeStore) WaitingRooms(ctx context.Context, liveID int64) ([]models.Room, error) {
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

func (s *fakeStore) InsertMember(ctx context.Context, roomID, userID int64, difficulty models.LiveDifficulty, isHost bool) error {
	if _, ok := s.rooms[roomID]; !ok {
		return models.ErrRoomNotFound
	}
	for _, m := range s.members[roomID] {
		if m.UserID == userID {
			return models.ErrDuplicateMembership
		}
	}
	u := s.byID[userID]
	if u == nil {
		return fmt.Errorf("user %d not found", userID)
	}
	s.members[roomID] = append(s.members[roomID], &models.RoomMember{
		RoomID:       roomID,
		UserID:       userID,
		Name:         u.Name,
		LeaderCardID: u.LeaderCardID,
		Difficulty:   difficulty,
		IsHost:       isHost,
	})
	return nil
}

func (s *fakeStore) DeleteMember(ctx context.Context, roomID, userID int64) (bool, error) {
	list := s.members[roomID]
	for i, m := range list {
		if m.UserID == userID {
			s.members[roomID] = append(list[:i:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) IncrementJoined(ctx context.Context, roomID int64) error {
	r, ok := s.rooms[roomID]
	if !ok {
		return models.ErrRoomNotFound
	}
	if r.JoinedCount >= r.MaxCapacity {
		return fmt.Errorf("room %d over capacity", roomID)
	}
	r.JoinedCount++
	return nil
}

func (s *fakeStore) DecrementJoined(ctx context.Context, roomID int64) error {
	r, ok := s.rooms[roomID]
	if !ok {
		return models.ErrRoomNotFound
	}
	if r.JoinedCount <= 0 {
		return fmt.Errorf("room %d under zero", roomID)
	}
	r.JoinedCount--
	return nil
}

func (s *fakeStore) AdvanceState(ctx context.Context, roomID int64, from, to models.RoomState) (bool, error) {
	r, ok := s.rooms[roomID]
	if !ok || r.State != from {
		return false, nil
	}
	r.State = to
	return true, nil
}

func (s *fakeStore) Members(ctx context.Context, roomID int64) ([]models.RoomMember, error) {
	var out []models.RoomMember
	for _, m := range s.members[roomID] {
		out = append(out, *m)
	}
	return out, nil
}

func (s *fakeStore) SetResult(ctx context.Context, roomID, userID int64, judgeCounts []int, score int) error {
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

func (s *fakeStore) SubmittedCount(ctx context.Context, roomID int64) (int, error) {
	n := 0
	for _, m := range s.members[roomID] {
		if m.Submitted() {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) HasActiveMembership(ctx context.Context, userID int64) (bool, error) {
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
