package model

import "time"

// User owns documents and a number sequence. Username doubles as a storage path segment.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// NumberSequence is the per-user archive number counter.
type NumberSequence struct {
	UserID         int64 `json:"user_id"`
	NextFreeNumber int64 `json:"next_free_number"`
}

// Tag is a label attached to documents.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
