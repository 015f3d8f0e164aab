package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserPublic is the owner projection joined onto posts and papers and returned by login.
type UserPublic struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Public strips the password hash.
func (u User) Public() UserPublic {
	return UserPublic{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}
