// internal/handlers/server.go
package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/yamabiko/liveroom/internal/room"
	"github.com/yamabiko/liveroom/internal/user"
)

// Server is the HTTP facade: it authenticates callers against the user
// directory and delegates all room semantics to the lifecycle manager.
type Server struct {
	users  *user.Service
	rooms  *room.Manager
	logger *log.Logger
}

// New builds the facade over the given services.
func New(users *user.Service, rooms *room.Manager, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New()
	}
	return &Server{users: users, rooms: rooms, logger: logger}
}

// Routes returns the endpoint mux. Request and response shapes follow the
// client wire contract: POST with JSON bodies, bearer tokens where the
// caller's identity matters.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/user/create", s.CreateUser)
	mux.HandleFunc("/user/me", s.Me)
	mux.HandleFunc("/user/update", s.UpdateUser)

	mux.HandleFunc("/room/create", s.CreateRoom)
	mux.HandleFunc("/room/list", s.ListRooms)
	mux.HandleFunc("/room/join", s.JoinRoom)
	mux.HandleFunc("/room/wait", s.WaitRoom)
	mux.HandleFunc("/room/start", s.StartRoom)
	mux.HandleFunc("/room/end", s.EndRoom)
	mux.HandleFunc("/room/result", s.RoomResult)
	mux.HandleFunc("/room/leave", s.LeaveRoom)

	return mux
}
