package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"sisagenda/pkg/logger"
	"sisagenda/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator() *AppointmentValidator {
	return NewAppointmentValidator(logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"}))
}

func validAppointment() *model.Appointment {
	return &model.Appointment{
		OrganizationID: "65f1a2b3c4d5e6f7a8b9c0d1",
		DeliveryTypeID: "65f1a2b3c4d5e6f7a8b9c0d2",
		Date:           time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC),
		Status:         model.StatusPendingConfirmation,
		SupplierName:   "Distribuidora Sul",
		SupplierPhone:  "+5511987654321",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(a *model.Appointment)
		wantField string
	}{
		{"valid", func(*model.Appointment) {}, ""},
		{"confirmed on create", func(a *model.Appointment) { a.Status = model.StatusConfirmed }, ""},
		{"bad organization id", func(a *model.Appointment) { a.OrganizationID = "xyz" }, "OrganizationID"},
		{"missing date", func(a *model.Appointment) { a.Date = time.Time{} }, "Date"},
		{"unknown status", func(a *model.Appointment) { a.Status = "WAITING" }, "Status"},
		{"completed on create", func(a *model.Appointment) { a.Status = model.StatusCompleted }, "Status"},
		{"short supplier name", func(a *model.Appointment) { a.SupplierName = "A" }, "SupplierName"},
		{"bad phone", func(a *model.Appointment) { a.SupplierPhone = "11987654321" }, "SupplierPhone"},
		{"long notes", func(a *model.Appointment) { a.Notes = strings.Repeat("x", 501) }, "Notes"},
	}

	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAppointment()
			tt.mutate(a)

			err := v.Validate(a)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			assert.Equal(t, tt.wantField, verrs[0].Field)
		})
	}
}

func TestValidateTransition(t *testing.T) {
	v := newValidator()

	assert.NoError(t, v.ValidateTransition(&model.AppointmentTransition{Reason: "truck broke down"}))
	assert.Error(t, v.ValidateTransition(&model.AppointmentTransition{Reason: strings.Repeat("x", 301)}))
}
