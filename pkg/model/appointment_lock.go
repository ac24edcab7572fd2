package model

import "time"

// AppointmentLock is an advisory lock held while an appointment write
// re-validates availability for one organization, delivery type and day.
type AppointmentLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
