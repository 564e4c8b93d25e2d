// internal/handlers/room.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/yamabiko/liveroom/internal/models"
)

type roomCreateRequest struct {
	LiveID           int64                 `json:"live_id"`
	SelectDifficulty models.LiveDifficulty `json:"select_difficulty"`
}

type roomCreateResponse struct {
	RoomID int64 `json:"room_id"`
}

// CreateRoom makes a new room and auto-joins the caller as host.
func (s *Server) CreateRoom(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req roomCreateRequest
	if !decode(w, r, &req) {
		return
	}
	if !req.SelectDifficulty.Valid() {
		http.Error(w, "invalid select_difficulty", http.StatusBadRequest)
		return
	}

	roomID, err := s.rooms.Create(r.Context(), req.LiveID, req.SelectDifficulty, u.ID)
	if errors.Is(err, models.ErrAlreadyInRoom) {
		http.Error(w, "already in a room", http.StatusConflict)
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("room create failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, roomCreateResponse{RoomID: roomID})
}

type roomListRequest struct {
	LiveID int64 `json:"live_id"`
}

type roomInfo struct {
	RoomID          int64 `json:"room_id"`
	LiveID          int64 `json:"live_id"`
	JoinedUserCount int   `json:"joined_user_count"`
	MaxUserCount    int   `json:"max_user_count"`
}

type roomListResponse struct {
	RoomInfoList []roomInfo `json:"room_info_list"`
}

// ListRooms lists joinable rooms for a live; live_id 0 lists all of them.
func (s *Server) ListRooms(w http.ResponseWriter, r *http.Request) {
	var req roomListRequest
	if !decode(w, r, &req) {
		return
	}

	rooms, err := s.rooms.List(r.Context(), req.LiveID)
	if err != nil {
		s.logger.WithError(err).Error("room list failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	infos := make([]roomInfo, 0, len(rooms))
	for _, rm := range rooms {
		infos = append(infos, roomInfo{
			RoomID:          rm.ID,
			LiveID:          rm.LiveID,
			JoinedUserCount: rm.JoinedCount,
			MaxUserCount:    rm.MaxCapacity,
		})
	}
	writeJSON(w, roomListResponse{RoomInfoList: infos})
}

type roomJoinRequest struct {
	RoomID           int64                 `json:"room_id"`
	SelectDifficulty models.LiveDifficulty `json:"select_difficulty"`
}

type roomJoinResponse struct {
	JoinRoomResult models.JoinRoomResult `json:"join_room_result"`
}

// JoinRoom attempts to seat the caller in the room. Full and disbanded
// rooms come back as result codes, not HTTP errors.
func (s *Server) JoinRoom(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req roomJoinRequest
	if !decode(w, r, &req) {
		return
	}
	if !req.SelectDifficulty.Valid() {
		http.Error(w, "invalid select_difficulty", http.StatusBadRequest)
		return
	}

	result, err := s.rooms.Join(r.Context(), req.RoomID, req.SelectDifficulty, u.ID)
	if err != nil {
		s.logger.WithError(err).Error("room join failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, roomJoinResponse{JoinRoomResult: result})
}

type roomWaitRequest struct {
	RoomID int64 `json:"room_id"`
}

type roomWaitResponse struct {
	Status       models.RoomState  `json:"status"`
	RoomUserList []models.RoomUser `json:"room_user_list"`
}

// WaitRoom is the polling endpoint: current state plus the membership
// snapshot, with is_me computed against the caller.
func (s *Server) WaitRoom(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req roomWaitRequest
	if !decode(w, r, &req) {
		return
	}

	state, users, err := s.rooms.WaitStatus(r.Context(), req.RoomID, u.ID)
	if err != nil {
		s.logger.WithError(err).Error("room wait failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, roomWaitResponse{Status: state, RoomUserList: users})
}

type roomStartRequest struct {
	RoomID int64 `json:"room_id"`
}

// StartRoom advances the room to live. Losing a start race is a quiet
// no-op.
func (s *Server) StartRoom(w http.ResponseWriter, r *http.Request) {
	var req roomStartRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.rooms.Start(r.Context(), req.RoomID); err != nil {
		s.logger.WithError(err).Error("room start failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, struct{}{})
}

type roomEndRequest struct {
	RoomID         int64 `json:"room_id"`
	JudgeCountList []int `json:"judge_count_list"`
	Score          int   `json:"score"`
}

// EndRoom records the caller's play result.
func (s *Server) EndRoom(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req roomEndRequest
	if !decode(w, r, &req) {
		return
	}

	err := s.rooms.End(r.Context(), req.RoomID, u.ID, req.JudgeCountList, req.Score)
	if errors.Is(err, models.ErrRoomNotFound) || errors.Is(err, models.ErrMemberNotFound) {
		http.Error(w, "room or membership not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, models.ErrRoomNotLive) {
		http.Error(w, "room is not live", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("room end failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, struct{}{})
}

type roomResultRequest struct {
	RoomID int64 `json:"room_id"`
}

type roomResultResponse struct {
	ResultUserList []models.ResultUser `json:"result_user_list"`
}

// RoomResult returns the per-member results of a finished room; an empty
// list means not everyone has submitted yet.
func (s *Server) RoomResult(w http.ResponseWriter, r *http.Request) {
	var req roomResultRequest
	if !decode(w, r, &req) {
		return
	}

	results, err := s.rooms.Results(r.Context(), req.RoomID)
	if errors.Is(err, models.ErrRoomNotFound) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("room result failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, roomResultResponse{ResultUserList: results})
}

type roomLeaveRequest struct {
	RoomID int64 `json:"room_id"`
}

// LeaveRoom removes the caller from the room.
func (s *Server) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req roomLeaveRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.rooms.Leave(r.Context(), req.RoomID, u.ID); err != nil {
		s.logger.WithError(err).Error("room leave failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, struct{}{})
}
