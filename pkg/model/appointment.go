package model

import "time"

type AppointmentStatus string

const (
	StatusPendingConfirmation   AppointmentStatus = "PENDING_CONFIRMATION"
	StatusConfirmed             AppointmentStatus = "CONFIRMED"
	StatusRescheduleRequested   AppointmentStatus = "RESCHEDULE_REQUESTED"
	StatusRescheduleConfirmed   AppointmentStatus = "RESCHEDULE_CONFIRMED"
	StatusCancellationRequested AppointmentStatus = "CANCELLATION_REQUESTED"
	StatusCancelled             AppointmentStatus = "CANCELLED"
	StatusCompleted             AppointmentStatus = "COMPLETED"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPendingConfirmation:   {StatusConfirmed, StatusRescheduleRequested, StatusCancellationRequested, StatusCancelled},
	StatusConfirmed:             {StatusRescheduleRequested, StatusCancellationRequested, StatusCancelled, StatusCompleted},
	StatusRescheduleRequested:   {StatusRescheduleConfirmed, StatusConfirmed, StatusCancelled},
	StatusRescheduleConfirmed:   {StatusRescheduleRequested, StatusCancellationRequested, StatusCancelled, StatusCompleted},
	StatusCancellationRequested: {StatusCancelled, StatusConfirmed},
}

// Occupies reports whether an appointment in this status holds its slot.
func (s AppointmentStatus) Occupies() bool {
	return s != StatusCancelled
}

func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID                 string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OrganizationID     string            `json:"organization_id" bson:"organization_id" validate:"required,mongodb"`
	DeliveryTypeID     string            `json:"delivery_type_id" bson:"delivery_type_id" validate:"required,mongodb"`
	Date               time.Time         `json:"date" bson:"date" validate:"required"`
	DurationMinutes    int               `json:"duration_minutes" bson:"duration_minutes" validate:"omitempty,min=1,max=1440"`
	Status             AppointmentStatus `json:"status" bson:"status" validate:"required,appointment_status"`
	RequestedDate      *time.Time        `json:"requested_date,omitempty" bson:"requested_date,omitempty"`
	SupplierName       string            `json:"supplier_name" bson:"supplier_name" validate:"required,min=2,max=120"`
	SupplierPhone      string            `json:"supplier_phone,omitempty" bson:"supplier_phone" validate:"omitempty,e164"`
	Notes              string            `json:"notes,omitempty" bson:"notes" validate:"omitempty,max=500"`
	CancellationReason string            `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty" validate:"omitempty,max=300"`
	CreatedAt          time.Time         `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt          time.Time         `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// End returns the exclusive end of the occupied interval.
func (a *Appointment) End() time.Time {
	return a.Date.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// AppointmentTransition carries the optional payload of a status change request.
type AppointmentTransition struct {
	RequestedDate *time.Time `json:"requested_date,omitempty"`
	Reason        string     `json:"reason,omitempty" validate:"omitempty,max=300"`
}
