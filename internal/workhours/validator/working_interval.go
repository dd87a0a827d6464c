package validator

import (
	"errors"
	"fmt"
	"strings"

	"slotbook/pkg/calendar"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"

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

type WorkingIntervalValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewWorkingIntervalValidator(log *logger.Logger) *WorkingIntervalValidator {
	v := validator.New()

	if err := v.RegisterValidation("date_only", validateDateOnly); err != nil {
		log.Fatal("Failed to register 'date_only' validator", "error", err)
	}
	if err := v.RegisterValidation("time_of_day", validateTimeOfDay); err != nil {
		log.Fatal("Failed to register 'time_of_day' validator", "error", err)
	}
	if err := v.RegisterValidation("weekday", validateWeekday); err != nil {
		log.Fatal("Failed to register 'weekday' validator", "error", err)
	}

	return &WorkingIntervalValidator{
		validate: v,
		logger:   log,
	}
}

func validateDateOnly(fl validator.FieldLevel) bool {
	_, err := calendar.ParseDate(fl.Field().String())
	return err == nil
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	_, err := calendar.ParseTimeOfDay(fl.Field().String())
	return err == nil
}

func validateWeekday(fl validator.FieldLevel) bool {
	_, err := calendar.ParseWeekday(fl.Field().String())
	return err == nil
}

func (v *WorkingIntervalValidator) ValidateRequest(req *model.WorkingIntervalRequest) error {
	if err := v.validateStruct(req); err != nil {
		return err
	}
	return ValidateRange(req.StartTime, req.EndTime)
}

// ValidateUpdate checks only the format of the supplied fields. The merged
// range is checked by the caller once the stored interval is known.
func (v *WorkingIntervalValidator) ValidateUpdate(upd *model.WorkingIntervalUpdate) error {
	return v.validateStruct(upd)
}

func (v *WorkingIntervalValidator) ValidateBatch(req *model.BatchWorkingIntervalsRequest) error {
	if err := v.validateStruct(req); err != nil {
		return err
	}
	if err := ValidateRange(req.StartTime, req.EndTime); err != nil {
		return err
	}

	start, _ := calendar.ParseDate(req.StartDate)
	end, _ := calendar.ParseDate(req.EndDate)
	if end.Before(start) {
		return ValidationErrors{{Field: "end_date", Message: "end_date must not be before start_date"}}
	}
	return nil
}

// ValidateRange requires start to be strictly before end.
func ValidateRange(startTime, endTime string) error {
	start, err := calendar.ParseTimeOfDay(startTime)
	if err != nil {
		return ValidationErrors{{Field: "start_time", Message: "start_time must be in HH:MM 24-hour format"}}
	}
	end, err := calendar.ParseTimeOfDay(endTime)
	if err != nil {
		return ValidationErrors{{Field: "end_time", Message: "end_time must be in HH:MM 24-hour format"}}
	}
	if start >= end {
		return ValidationErrors{{Field: "end_time", Message: "end_time must be after start_time"}}
	}
	return nil
}

func (v *WorkingIntervalValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *WorkingIntervalValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must have at most %s entries", err.Field(), err.Param())
		case "date_only":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "time_of_day":
			message = fmt.Sprintf("%s must be in HH:MM 24-hour format", err.Field())
		case "weekday":
			message = fmt.Sprintf("%s must be a weekday name (Sunday-Saturday)", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
