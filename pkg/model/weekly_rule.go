package model

import "time"

const MinutesPerDay = 24 * 60

// WeeklyRule is a recurring open interval for one weekday. An empty
// DeliveryTypeID marks an organization default rule.
type WeeklyRule struct {
	ID             string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OrganizationID string     `json:"organization_id" bson:"organization_id" validate:"required,mongodb"`
	DeliveryTypeID string     `json:"delivery_type_id,omitempty" bson:"delivery_type_id" validate:"omitempty,mongodb"`
	WeekDay        int        `json:"week_day" bson:"week_day" validate:"min=0,max=6"`
	StartMinute    int        `json:"start_minute" bson:"start_minute" validate:"min=0,max=1438"`
	EndMinute      int        `json:"end_minute" bson:"end_minute" validate:"min=1,max=1439,gtfield=StartMinute"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
}

type WeeklyRuleUpdate struct {
	WeekDay     *int `json:"week_day,omitempty" validate:"omitempty,min=0,max=6"`
	StartMinute *int `json:"start_minute,omitempty" validate:"omitempty,min=0,max=1438"`
	EndMinute   *int `json:"end_minute,omitempty" validate:"omitempty,min=1,max=1439"`
}
