// Package cards persists rendered verse cards on the device.
//
// Cards are kept in their own table rather than the key/value collections:
// payloads carry whole images as data URLs, and listing wants an index on
// created_at instead of decoding one big document.
//
// Typical usage
//
//	repo := cards.NewSQLiteRepository(db)
//	_ = repo.Put(ctx, card)
//	all, _ := repo.GetAll(ctx)
//	one, _ := repo.GetByID(ctx, id)
//	_ = repo.DeleteByID(ctx, id)
package cards
