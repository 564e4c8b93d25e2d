// internal/room/manager.go
package room

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/yamabiko/liveroom/internal/models"
)

// DefaultCapacity is the member limit for newly created rooms.
const DefaultCapacity = 4

// Manager owns the room lifecycle state machine. Every state-changing
// operation is one store transaction: the guard check and the writes it
// protects run under the same room row lock, so concurrent joins cannot
// both claim the last slot and concurrent starts cannot double-advance.
type Manager struct {
	store    Store
	logger   *log.Logger
	capacity int
}

// NewManager returns a Manager running against the given store.
func NewManager(store Store, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New()
	}
	return &Manager{store: store, logger: logger, capacity: DefaultCapacity}
}

// Create makes a new Waiting room for the live and auto-joins the host at
// the selected difficulty. It fails with models.ErrAlreadyInRoom if the
// host already belongs to an active room.
func (m *Manager) Create(ctx context.Context, liveID int64, difficulty models.LiveDifficulty, hostID int64) (int64, error) {
	var roomID int64
	err := m.store.InTx(ctx, func(tx Store) error {
		active, err := tx.HasActiveMembership(ctx, hostID)
		if err != nil {
			return err
		}
		if active {
			return models.ErrAlreadyInRoom
		}

		roomID, err = tx.InsertRoom(ctx, liveID, m.capacity)
		if err != nil {
			return err
		}
		if err := tx.InsertMember(ctx, roomID, hostID, difficulty, true); err != nil {
			return err
		}
		return tx.IncrementJoined(ctx, roomID)
	})
	if err != nil {
		return 0, err
	}

	m.logger.WithFields(log.Fields{
		"room_id": roomID,
		"live_id": liveID,
		"host_id": hostID,
	}).Info("room created")
	return roomID, nil
}

// List returns the Waiting rooms for the live; liveID 0 lists every live.
func (m *Manager) List(ctx context.Context, liveID int64) ([]models.Room, error) {
	var rooms []models.Room
	err := m.store.InTx(ctx, func(tx Store) error {
		var err error
		rooms, err = tx.WaitingRooms(ctx, liveID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// Join adds the user to the room at the selected difficulty. Full and
// disbanded rooms are reported through the result value; only store faults
// surface as errors.
func (m *Manager) Join(ctx context.Context, roomID int64, difficulty models.LiveDifficulty, userID int64) (models.JoinRoomResult, error) {
	var result models.JoinRoomResult
	err := m.store.InTx(ctx, func(tx Store) error {
		room, err := tx.RoomForUpdate(ctx, roomID)
		if errors.Is(err, models.ErrRoomNotFound) {
			result = models.JoinDisbanded
			return nil
		}
		if err != nil {
			return err
		}

		switch room.State {
		case models.RoomStateDisbanded:
			result = models.JoinDisbanded
			return nil
		case models.RoomStateLive, models.RoomStateFinished:
			result = models.JoinOtherError
			return nil
		}

		if room.Full() {
			result = models.JoinRoomFull
			return nil
		}

		active, err := tx.HasActiveMembership(ctx, userID)
		if err != nil {
			return err
		}
		if active {
			result = models.JoinOtherError
			return nil
		}

		if err := tx.InsertMember(ctx, roomID, userID, difficulty, false); err != nil {
			if errors.Is(err, models.ErrDuplicateMembership) {
				result = models.JoinOtherError
				return nil
			}
			return err
		}
		if err := tx.IncrementJoined(ctx, roomID); err != nil {
			return err
		}
		result = models.JoinOk
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("join room %d: %w", roomID, err)
	}

	m.logger.WithFields(log.Fields{
		"room_id": roomID,
		"user_id": userID,
		"result":  result.String(),
	}).Debug("join attempt")
	return result, nil
}

// WaitStatus returns the room's current state and a membership snapshot
// relative to the caller. A missing room reads as Disbanded so a polling
// client sees the same terminal answer either way.
func (m *Manager) WaitStatus(ctx context.Context, roomID, callerID int64) (models.RoomState, []models.RoomUser, error) {
	state := models.RoomStateDisbanded
	snapshot := []models.RoomUser{}
	err := m.store.InTx(ctx, func(tx Store) error {
		room, err := tx.RoomByID(ctx, roomID)
		if errors.Is(err, models.ErrRoomNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		state = room.State

		members, err := tx.Members(ctx, roomID)
		if err != nil {
			return err
		}
		for _, mem := range members {
			snapshot = append(snapshot, models.RoomUser{
				UserID:       mem.UserID,
				Name:         mem.Name,
				LeaderCardID: mem.LeaderCardID,
				Difficulty:   mem.Difficulty,
				IsMe:         mem.UserID == callerID,
				IsHost:       mem.IsHost,
			})
		}
		return nil
	})
	if err != nil {
		return 0, nil, fmt.Errorf("wait status for room %d: %w", roomID, err)
	}
	return state, snapshot, nil
}

// Start advances the room from Waiting to LiveInProgress. The advance is a
// compare-and-swap: of two racing calls exactly one transitions and the
// other is a no-op.
func (m *Manager) Start(ctx context.Context, roomID int64) error {
	var started bool
	err := m.store.InTx(ctx, func(tx Store) error {
		var err error
		started, err = tx.AdvanceState(ctx, roomID, models.RoomStateWaiting, models.RoomStateLive)
		return err
	})
	if err != nil {
		return fmt.Errorf("start room %d: %w", roomID, err)
	}
	if started {
		m.logger.WithField("room_id", roomID).Info("room live")
	}
	return nil
}

// End records the caller's result. Once every current member has submitted,
// the same transaction advances the room to Finished.
func (m *Manager) End(ctx context.Context, roomID, userID int64, judgeCounts []int, score int) error {
	var finished bool
	err := m.store.InTx(ctx, func(tx Store) error {
		room, err := tx.RoomForUpdate(ctx, roomID)
		if err != nil {
			return err
		}
		if room.State != models.RoomStateLive {
			return models.ErrRoomNotLive
		}

		if err := tx.SetResult(ctx, roomID, userID, judgeCounts, score); err != nil {
			return err
		}

		submitted, err := tx.SubmittedCount(ctx, roomID)
		if err != nil {
			return err
		}
		if submitted >= room.JoinedCount {
			finished, err = tx.AdvanceState(ctx, roomID, models.RoomStateLive, models.RoomStateFinished)
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("end room %d: %w", roomID, err)
	}
	if finished {
		m.logger.WithField("room_id", roomID).Info("room finished")
	}
	return nil
}

// Leave removes the caller's membership. The last member out disbands the
// room; a leaver during a live whose remaining members have all submitted
// finishes it instead of wedging it. Leaving a room that no longer exists,
// or that the caller never joined, is a no-op.
func (m *Manager) Leave(ctx context.Context, roomID, userID int64) error {
	var final models.RoomState
	err := m.store.InTx(ctx, func(tx Store) error {
		room, err := tx.RoomForUpdate(ctx, roomID)
		if errors.Is(err, models.ErrRoomNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if room.State.Terminal() {
			return nil
		}

		deleted, err := tx.DeleteMember(ctx, roomID, userID)
		if err != nil || !deleted {
			return err
		}
		if err := tx.DecrementJoined(ctx, roomID); err != nil {
			return err
		}

		remaining := room.JoinedCount - 1
		if remaining == 0 {
			if _, err := tx.AdvanceState(ctx, roomID, room.State, models.RoomStateDisbanded); err != nil {
				return err
			}
			final = models.RoomStateDisbanded
			return nil
		}
		if room.State == models.RoomStateLive {
			submitted, err := tx.SubmittedCount(ctx, roomID)
			if err != nil {
				return err
			}
			if submitted >= remaining {
				if _, err := tx.AdvanceState(ctx, roomID, models.RoomStateLive, models.RoomStateFinished); err != nil {
					return err
				}
				final = models.RoomStateFinished
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("leave room %d: %w", roomID, err)
	}
	if final != 0 {
		m.logger.WithFields(log.Fields{
			"room_id": roomID,
			"state":   final.String(),
		}).Info("room closed by leave")
	}
	return nil
}

// Results returns the per-member result list for a Finished room. Until
// the room finishes it returns an empty list, which polling clients treat
// as "not ready yet". Members who left before submitting have no entry.
func (m *Manager) Results(ctx context.Context, roomID int64) ([]models.ResultUser, error) {
	results := []models.ResultUser{}
	err := m.store.InTx(ctx, func(tx Store) error {
		room, err := tx.RoomByID(ctx, roomID)
		if err != nil {
			return err
		}
		if room.State != models.RoomStateFinished {
			return nil
		}

		members, err := tx.Members(ctx, roomID)
		if err != nil {
			return err
		}
		for _, mem := range members {
			if !mem.Submitted() {
				continue
			}
			results = append(results, models.ResultUser{
				UserID:      mem.UserID,
				JudgeCounts: mem.JudgeCounts,
				Score:       *mem.Score,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("results for room %d: %w", roomID, err)
	}
	return results, nil
}
