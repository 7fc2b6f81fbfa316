package model

import "time"

// RentalLock is an advisory lock held while a cyclist's checkout runs.
// The document id is the cyclist id, so a second insert fails with a
// duplicate key while the first is alive.
type RentalLock struct {
	ID        int64     `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
