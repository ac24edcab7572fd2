package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

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

type ScheduleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewScheduleValidator(log *logger.Logger) *ScheduleValidator {
	v := validator.New()

	if err := v.RegisterValidation("valid_date", validateDate); err != nil {
		log.Fatal("Failed to register 'valid_date' validator", "error", err)
	}
	if err := v.RegisterValidation("override_bounds", validateOverrideBounds); err != nil {
		log.Fatal("Failed to register 'override_bounds' validator", "error", err)
	}

	log.Info("Schedule validator initialized successfully")

	return &ScheduleValidator{
		validate: v,
		logger:   log,
	}
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.DateLayout, fl.Field().String())
	return err == nil
}

// validateOverrideBounds runs on WholeDay and checks it against the minute
// bounds of the same override.
func validateOverrideBounds(fl validator.FieldLevel) bool {
	var o *model.Override
	switch parent := fl.Parent().Interface().(type) {
	case model.Override:
		o = &parent
	case *model.Override:
		o = parent
	default:
		return false
	}

	if o.WholeDay {
		return o.Kind == model.OverrideBlock && o.StartMinute == nil && o.EndMinute == nil
	}
	if o.StartMinute == nil || o.EndMinute == nil {
		return false
	}
	return *o.StartMinute < *o.EndMinute
}

func (v *ScheduleValidator) ValidateWeeklyRule(rule *model.WeeklyRule) error {
	return v.check(rule)
}

func (v *ScheduleValidator) ValidateWeeklyRuleUpdate(update *model.WeeklyRuleUpdate) error {
	return v.check(update)
}

func (v *ScheduleValidator) ValidateOverride(override *model.Override) error {
	return v.check(override)
}

func (v *ScheduleValidator) check(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ScheduleValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "gtfield":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "valid_date":
			message = fmt.Sprintf("%s must be a calendar date in YYYY-MM-DD format", err.Field())
		case "override_bounds":
			message = "whole_day overrides must be BLOCK without minutes; otherwise start_minute and end_minute are required and start_minute must be before end_minute"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
