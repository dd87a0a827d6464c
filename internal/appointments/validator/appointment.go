package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

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

type AppointmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	return &AppointmentValidator{
		validate: v,
		logger:   log,
	}
}

// jsonFieldName reports fields by their wire name.
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

func (v *AppointmentValidator) ValidateCreate(req *model.CreateAppointmentRequest) error {
	return v.validateStruct(req)
}

func (v *AppointmentValidator) ValidateReschedule(cmd *model.RescheduleCommand) error {
	return v.validateStruct(cmd)
}

// ValidateStatus accepts only the enumerated appointment statuses.
func (v *AppointmentValidator) ValidateStatus(status string) error {
	if !model.AppointmentStatus(status).Valid() {
		allowed := make([]string, 0, len(model.AppointmentStatuses))
		for _, s := range model.AppointmentStatuses {
			allowed = append(allowed, string(s))
		}
		return ValidationErrors{{
			Field:   "status",
			Message: fmt.Sprintf("status must be one of: %s", strings.Join(allowed, ", ")),
		}}
	}
	return nil
}

func (v *AppointmentValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
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
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
