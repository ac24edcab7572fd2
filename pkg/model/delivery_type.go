package model

import "time"

type DeliveryType struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OrganizationID   string    `json:"organization_id" bson:"organization_id" validate:"required,mongodb"`
	Name             string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	DurationMinutes  int       `json:"duration_minutes" bson:"duration_minutes" validate:"required,min=1,max=1440"`
	LunchStartMinute *int      `json:"lunch_start_minute,omitempty" bson:"lunch_start_minute,omitempty" validate:"omitempty,min=0,max=1439"`
	LunchEndMinute   *int      `json:"lunch_end_minute,omitempty" bson:"lunch_end_minute,omitempty" validate:"omitempty,min=1,max=1440"`
	Active           bool      `json:"active" bson:"active"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type DeliveryTypeUpdate struct {
	Name             string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	DurationMinutes  *int   `json:"duration_minutes,omitempty" validate:"omitempty,min=1,max=1440"`
	LunchStartMinute *int   `json:"lunch_start_minute,omitempty" validate:"omitempty,min=0,max=1439"`
	LunchEndMinute   *int   `json:"lunch_end_minute,omitempty" validate:"omitempty,min=1,max=1440"`
	ClearLunch       bool   `json:"clear_lunch,omitempty"`
	Active           *bool  `json:"active,omitempty"`
}

// Lunch reports the lunch break bounds when both ends are configured.
func (d *DeliveryType) Lunch() (start, end int, ok bool) {
	if d.LunchStartMinute == nil || d.LunchEndMinute == nil {
		return 0, 0, false
	}
	return *d.LunchStartMinute, *d.LunchEndMinute, true
}
