// Package models holds the row types of the hosted account tables.
package models

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}
