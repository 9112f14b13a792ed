package model

import "time"

type UserAccount struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	IsManager bool      `json:"is_manager" db:"is_manager"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SessionUser is the payload held in the session store for a logged-in user.
type SessionUser struct {
	Email     string `json:"email"`
	IsManager bool   `json:"is_manager"`
	IsAdmin   bool   `json:"is_admin"`
}
