package models

import "time"

// User is a row of the users table.
type User struct {
	UserID       string    `db:"user_id"`
	Username     string    `db:"username"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}
