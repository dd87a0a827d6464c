package model

import "time"

// BookingLock is an advisory lock held while a slot is checked and written.
// The _id encodes the slot, so a second holder fails on the duplicate key.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
