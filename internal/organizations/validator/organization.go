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

type OrganizationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewOrganizationValidator(log *logger.Logger) *OrganizationValidator {
	v := validator.New()
	v.RegisterStructValidation(validateLunchPair, model.DeliveryType{})

	log.Info("Organization validator initialized successfully")

	return &OrganizationValidator{
		validate: v,
		logger:   log,
	}
}

// validateLunchPair requires both lunch bounds or neither, with the start
// before the end.
func validateLunchPair(sl validator.StructLevel) {
	dt := sl.Current().Interface().(model.DeliveryType)

	switch {
	case dt.LunchStartMinute == nil && dt.LunchEndMinute == nil:
	case dt.LunchStartMinute == nil:
		sl.ReportError(dt.LunchStartMinute, "LunchStartMinute", "LunchStartMinute", "lunch_pair", "")
	case dt.LunchEndMinute == nil:
		sl.ReportError(dt.LunchEndMinute, "LunchEndMinute", "LunchEndMinute", "lunch_pair", "")
	case *dt.LunchStartMinute >= *dt.LunchEndMinute:
		sl.ReportError(dt.LunchEndMinute, "LunchEndMinute", "LunchEndMinute", "lunch_pair", "")
	}
}

func (v *OrganizationValidator) ValidateOrganization(org *model.Organization) error {
	return v.check(org)
}

func (v *OrganizationValidator) ValidateOrganizationUpdate(update *model.OrganizationUpdate) error {
	return v.check(update)
}

func (v *OrganizationValidator) ValidateDeliveryType(dt *model.DeliveryType) error {
	return v.check(dt)
}

func (v *OrganizationValidator) ValidateDeliveryTypeUpdate(update *model.DeliveryTypeUpdate) error {
	if err := v.check(update); err != nil {
		return err
	}
	if update.ClearLunch && (update.LunchStartMinute != nil || update.LunchEndMinute != nil) {
		return ValidationErrors{{
			Field:   "ClearLunch",
			Message: "clear_lunch cannot be combined with lunch bounds",
		}}
	}
	return nil
}

func (v *OrganizationValidator) check(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *OrganizationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "numeric":
			message = fmt.Sprintf("%s must contain only digits", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +5511987654321)", err.Field())
		case "lunch_pair":
			message = "lunch_start_minute and lunch_end_minute must be set together and lunch_start_minute must be before lunch_end_minute"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
