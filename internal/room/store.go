// internal/room/store.go
package room

import (
	"context"

	"github.com/yamabiko/liveroom/internal/models"
)

// Store is the persistence contract the lifecycle manager runs against.
// Implementations must make InTx atomic: every primitive called inside the
// callback observes and mutates one consistent view, with RoomForUpdate
// holding a row-level lock until the transaction ends. The manager performs
// all store access, reads included, inside InTx.
type Store interface {
	// InTx runs fn inside a single transaction and commits if fn returns
	// nil. The Store handed to fn is only valid for the duration of fn.
	InTx(ctx context.Context, fn func(tx Store) error) error

	// InsertRoom creates a Waiting room with joined_count 0 and returns
	// its freshly allocated id.
	InsertRoom(ctx context.Context, liveID int64, maxCapacity int) (int64, error)

	// RoomByID returns models.ErrRoomNotFound if the room does not exist.
	RoomByID(ctx context.Context, roomID int64) (*models.Room, error)

	// RoomForUpdate is RoomByID plus a row lock held until the enclosing
	// transaction commits or rolls back.
	RoomForUpdate(ctx context.Context, roomID int64) (*models.Room, error)

	// WaitingRooms lists rooms in the Waiting state for the given live.
	// liveID 0 is a wildcard matching every live.
	WaitingRooms(ctx context.Context, liveID int64) ([]models.Room, error)

	// InsertMember returns models.ErrDuplicateMembership if the
	// (room, user) pair already exists and models.ErrRoomNotFound if the
	// room is absent.
	InsertMember(ctx context.Context, roomID, userID int64, difficulty models.LiveDifficulty, isHost bool) error

	// DeleteMember reports whether a membership row was removed.
	DeleteMember(ctx context.Context, roomID, userID int64) (bool, error)

	// IncrementJoined and DecrementJoined adjust joined_count by one and
	// fail rather than push it outside [0, max_capacity].
	IncrementJoined(ctx context.Context, roomID int64) error
	DecrementJoined(ctx context.Context, roomID int64) error

	// AdvanceState moves the room from one state to another with
	// compare-and-swap semantics: it reports false, without mutating
	// anything, if the current state is not from.
	AdvanceState(ctx context.Context, roomID int64, from, to models.RoomState) (bool, error)

	// Members lists the room's memberships joined with each owner's
	// profile, in join order.
	Members(ctx context.Context, roomID int64) ([]models.RoomMember, error)

	// SetResult records a member's submitted judge counts and score,
	// returning models.ErrMemberNotFound if no membership row exists.
	SetResult(ctx context.Context, roomID, userID int64, judgeCounts []int, score int) error

	// SubmittedCount counts the room's members that have a stored result.
	SubmittedCount(ctx context.Context, roomID int64) (int, error)

	// HasActiveMembership reports whether the user belongs to any room in
	// the Waiting or LiveInProgress state.
	HasActiveMembership(ctx context.Context, userID int64) (bool, error)
}
