package domain

import (
	"time"
)

// User represents a registered diary owner.
type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	LoginID       string    `json:"login_id"`
	PasswordHash  string    `json:"-"`
	NumberOfPosts int       `json:"number_of_posts"`
	CreatedAt     time.Time `json:"created_at"`
}

// TokenPair holds an access and refresh token pair together with their
// lifetimes in seconds.
type TokenPair struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

// AuthResponse is returned by register, login, and refresh: the user profile
// together with a fresh token pair.
type AuthResponse struct {
	User   *User      `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}

// CalendarDay summarizes one day of the posting calendar.
type CalendarDay struct {
	Date     string `json:"date"`
	PostID   int64  `json:"post_id"`
	HasImage bool   `json:"has_image"`
}
