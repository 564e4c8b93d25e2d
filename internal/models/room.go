// internal/models/room.go
package models

// LiveDifficulty is the difficulty a member selects when joining a room.
type LiveDifficulty int

const (
	DifficultyNormal LiveDifficulty = 1
	DifficultyHard   LiveDifficulty = 2
)

// Valid reports whether d is a known difficulty value.
func (d LiveDifficulty) Valid() bool {
	return d == DifficultyNormal || d == DifficultyHard
}

// RoomState is the lifecycle state of a room. States only advance; there
// are no backward transitions.
type RoomState int

const (
	RoomStateWaiting   RoomState = 1
	RoomStateLive      RoomState = 2
	RoomStateDisbanded RoomState = 3
	RoomStateFinished  RoomState = 4
)

func (s RoomState) String() string {
	switch s {
	case RoomStateWaiting:
		return "waiting"
	case RoomStateLive:
		return "live"
	case RoomStateDisbanded:
		return "disbanded"
	case RoomStateFinished:
		return "finished"
	}
	return "unknown"
}

// Terminal reports whether s admits no further transitions.
func (s RoomState) Terminal() bool {
	return s == RoomStateDisbanded || s == RoomStateFinished
}

// CanAdvanceTo reports whether the transition s -> next is legal.
func (s RoomState) CanAdvanceTo(next RoomState) bool {
	switch s {
	case RoomStateWaiting:
		return next == RoomStateLive || next == RoomStateDisbanded
	case RoomStateLive:
		return next == RoomStateFinished || next == RoomStateDisbanded
	}
	return false
}

// JoinRoomResult is the outcome of a join attempt. Full and disbanded rooms
// are expected matchmaking outcomes, not errors.
type JoinRoomResult int

const (
	JoinOk         JoinRoomResult = 1
	JoinRoomFull   JoinRoomResult = 2
	JoinDisbanded  JoinRoomResult = 3
	JoinOtherError JoinRoomResult = 4
)

func (r JoinRoomResult) String() string {
	switch r {
	case JoinOk:
		return "ok"
	case JoinRoomFull:
		return "room_full"
	case JoinDisbanded:
		return "disbanded"
	case JoinOtherError:
		return "other_error"
	}
	return "unknown"
}

// Room represents a row in the rooms table. JoinedCount is maintained in the
// same transaction as the membership change that moves it, so it always
// equals the number of room_members rows for the room.
type Room struct {
	ID          int64     `json:"room_id"`
	LiveID      int64     `json:"live_id"`
	JoinedCount int       `json:"joined_user_count"`
	MaxCapacity int       `json:"max_user_count"`
	State       RoomState `json:"state"`
}

// Full reports whether the room has no open slot.
func (r *Room) Full() bool {
	return r.JoinedCount >= r.MaxCapacity
}

// RoomMember is a membership row joined with the owning user's profile.
// JudgeCounts and Score stay nil until the member submits a result.
type RoomMember struct {
	RoomID       int64
	UserID       int64
	Name         string
	LeaderCardID int64
	Difficulty   LiveDifficulty
	IsHost       bool
	JudgeCounts  []int
	Score        *int
}

// Submitted reports whether the member has recorded a result.
func (m *RoomMember) Submitted() bool {
	return m.Score != nil
}

// RoomUser is one entry of a wait-room snapshot. IsMe is computed against
// the requesting caller, not stored.
type RoomUser struct {
	UserID       int64          `json:"user_id"`
	Name         string         `json:"name"`
	LeaderCardID int64          `json:"leader_card_id"`
	Difficulty   LiveDifficulty `json:"select_difficulty"`
	IsMe         bool           `json:"is_me"`
	IsHost       bool           `json:"is_host"`
}

// ResultUser is one entry of a finished room's result list.
type ResultUser struct {
	UserID      int64 `json:"user_id"`
	JudgeCounts []int `json:"judge_count_list"`
	Score       int   `json:"score"`
}
