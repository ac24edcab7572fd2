package model

import "time"

type OverrideKind string

const (
	OverrideAdd   OverrideKind = "ADD"
	OverrideBlock OverrideKind = "BLOCK"
)

// DateLayout is the calendar date format used by overrides and availability queries.
const DateLayout = "2006-01-02"

// Override adds or removes availability for a single calendar date.
type Override struct {
	ID             string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OrganizationID string       `json:"organization_id" bson:"organization_id" validate:"required,mongodb"`
	DeliveryTypeID string       `json:"delivery_type_id" bson:"delivery_type_id" validate:"required,mongodb"`
	Date           string       `json:"date" bson:"date" validate:"required,valid_date"`
	Kind           OverrideKind `json:"kind" bson:"kind" validate:"required,oneof=ADD BLOCK"`
	StartMinute    *int         `json:"start_minute,omitempty" bson:"start_minute,omitempty" validate:"omitempty,min=0,max=1439"`
	EndMinute      *int         `json:"end_minute,omitempty" bson:"end_minute,omitempty" validate:"omitempty,min=1,max=1440"`
	WholeDay       bool         `json:"whole_day" bson:"whole_day" validate:"override_bounds"`
	Reason         string       `json:"reason,omitempty" bson:"reason" validate:"omitempty,max=200"`
	CreatedAt      time.Time    `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Bounds returns the minute range the override covers.
func (o *Override) Bounds() (start, end int, ok bool) {
	if o.WholeDay {
		return 0, MinutesPerDay, true
	}
	if o.StartMinute == nil || o.EndMinute == nil {
		return 0, 0, false
	}
	return *o.StartMinute, *o.EndMinute, true
}
