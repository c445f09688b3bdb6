package models

import "time"

// Comment on a report
type Comment struct {
	ID        string    `json:"_id"`
	Report    string    `json:"report"`
	User      UserRef   `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthoredBy reports whether userID wrote the comment.
func (c Comment) AuthoredBy(userID string) bool {
	return userID != "" && c.User.ID == userID
}
