package model

import "time"

type Organization struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string    `json:"name" bson:"name" validate:"required,min=2,max=120"`
	Document     string    `json:"document,omitempty" bson:"document" validate:"omitempty,numeric,min=11,max=14"`
	ContactPhone string    `json:"contact_phone,omitempty" bson:"contact_phone" validate:"omitempty,e164"`
	Active       bool      `json:"active" bson:"active"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type OrganizationUpdate struct {
	Name         string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Document     string `json:"document,omitempty" validate:"omitempty,numeric,min=11,max=14"`
	ContactPhone string `json:"contact_phone,omitempty" validate:"omitempty,e164"`
	Active       *bool  `json:"active,omitempty"`
}
