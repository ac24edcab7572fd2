package validator

import (
	"errors"
	"fmt"
	"strings"

	"sisagenda/pkg/logger"
	"sisagenda/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type AppointmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	v := validator.New()

	if err := v.RegisterValidation("appointment_status", validateAppointmentStatus); err != nil {
		log.Fatal("Failed to register 'appointment_status' validator", "error", err)
	}

	log.Info("Appointment validator initialized successfully")

	return &AppointmentValidator{
		validate: v,
		logger:   log,
	}
}

func validateAppointmentStatus(fl validator.FieldLevel) bool {
	switch model.AppointmentStatus(fl.Field().String()) {
	case model.StatusPendingConfirmation,
		model.StatusConfirmed,
		model.StatusRescheduleRequested,
		model.StatusRescheduleConfirmed,
		model.StatusCancellationRequested,
		model.StatusCancelled,
		model.StatusCompleted:
		return true
	}
	return false
}

func (v *AppointmentValidator) Validate(appointment *model.Appointment) error {
	if err := v.validate.Struct(appointment); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	switch appointment.Status {
	case model.StatusPendingConfirmation, model.StatusConfirmed:
	default:
		return ValidationErrors{{
			Field:   "Status",
			Message: fmt.Sprintf("new appointments must be %s or %s", model.StatusPendingConfirmation, model.StatusConfirmed),
		}}
	}
	return nil
}

func (v *AppointmentValidator) ValidateTransition(transition *model.AppointmentTransition) error {
	if err := v.validate.Struct(transition); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *AppointmentValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +5511987654321)", err.Field())
		case "appointment_status":
			message = fmt.Sprintf("%s is not a known appointment status", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
