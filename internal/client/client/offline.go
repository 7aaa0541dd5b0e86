package client

import (
	"context"

	"github.com/dailygrace/dailygrace/internal/client/models"
)

// Offline stands in for every backend when no cloud is configured. Auth
// calls fail with ErrOffline. Table and card calls are never reached in
// practice, since nobody can sign in, but answer ErrOffline too.
type Offline struct{}

func (Offline) SignUp(context.Context, string, string) (*Session, error) { return nil, ErrOffline }
func (Offline) SignIn(context.Context, string, string) (*Session, error) { return nil, ErrOffline }
func (Offline) Restore(context.Context, string, string) (*Session, error) {
	return nil, ErrOffline
}
func (Offline) SignOut(context.Context, string) error       { return nil }
func (Offline) DeleteAccount(context.Context, string) error { return ErrOffline }

func (Offline) Save(context.Context, string, *models.VerseCard) error { return ErrOffline }
func (Offline) Delete(context.Context, string, string) error          { return ErrOffline }
func (Offline) List(context.Context, string) ([]models.VerseCard, error) {
	return nil, ErrOffline
}

// OfflineTable is the RemoteTable counterpart of Offline.
type OfflineTable[T any] struct{}

func (OfflineTable[T]) Insert(context.Context, string, *T) error       { return ErrOffline }
func (OfflineTable[T]) Update(context.Context, string, *T) error       { return ErrOffline }
func (OfflineTable[T]) Delete(context.Context, string, string) error   { return ErrOffline }
func (OfflineTable[T]) SelectAll(context.Context, string) ([]T, error) { return nil, ErrOffline }

// OfflineTables fills every slot of Tables with OfflineTable.
func OfflineTables() Tables {
	return Tables{
		Meditations: OfflineTable[models.MeditationNote]{},
		Prayers:     OfflineTable[models.PrayerNote]{},
		Gratitudes:  OfflineTable[models.GratitudeNote]{},
		Diaries:     OfflineTable[models.Diary]{},
		Records:     OfflineTable[models.CustomRecord]{},
		Categories:  OfflineTable[models.Category]{},
	}
}
