package client

import (
	"context"

	"github.com/dailygrace/dailygrace/internal/client/models"
)

// Session is what a successful sign-in or restore yields.
type Session struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
}

// AuthBackend is the hosted account service.
type AuthBackend interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// Restore validates persisted tokens. An expired access token is
	// renewed with the refresh token, so the returned session may carry new
	// tokens.
	Restore(ctx context.Context, accessToken, refreshToken string) (*Session, error)

	// SignOut revokes the refresh token.
	SignOut(ctx context.Context, refreshToken string) error

	// DeleteAccount removes the account and every row and blob it owns.
	DeleteAccount(ctx context.Context, accessToken string) error
}

// RemoteTable is the remote copy of one record kind. Every call is scoped
// to userID.
type RemoteTable[T any] interface {
	Insert(ctx context.Context, userID string, v *T) error
	Update(ctx context.Context, userID string, v *T) error
	Delete(ctx context.Context, userID, id string) error

	// SelectAll returns the user's rows ordered by created_at descending.
	SelectAll(ctx context.Context, userID string) ([]T, error)
}

// CardBackend is the remote tier of the card store.
type CardBackend interface {
	Save(ctx context.Context, userID string, c *models.VerseCard) error
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string) ([]models.VerseCard, error)
}

// Tables groups the remote tables of every synced kind.
type Tables struct {
	Meditations RemoteTable[models.MeditationNote]
	Prayers     RemoteTable[models.PrayerNote]
	Gratitudes  RemoteTable[models.GratitudeNote]
	Diaries     RemoteTable[models.Diary]
	Records     RemoteTable[models.CustomRecord]
	Categories  RemoteTable[models.Category]
}
