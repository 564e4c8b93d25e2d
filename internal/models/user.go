package models

// User represents a row in the users table. Token is the opaque bearer
// credential issued at registration; it is never included in responses.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	LeaderCardID int64  `json:"leader_card_id"`

	Token string `json:"-"`
}
