package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"crafthub/pkg/logger"
	"crafthub/pkg/model"

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

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("unique_ids", validateUniqueIDs); err != nil {
		log.Fatal("Failed to register 'unique_ids' validator",
			"error", err,
		)
	}

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func (v *BookingValidator) ValidateHold(req *model.HoldRequest) error {
	return v.structErr(req)
}

func (v *BookingValidator) ValidateConfirm(req *model.ConfirmRequest) error {
	if err := v.structErr(req); err != nil {
		return err
	}
	if err := v.validate.Var(req.BookingIDs, "unique_ids"); err != nil {
		return ValidationErrors{{Field: "bookingIds", Message: "must not contain duplicates"}}
	}
	return nil
}

// Validate checks a booking right before it is persisted.
func (v *BookingValidator) Validate(b *model.Booking) error {
	if err := v.structErr(b); err != nil {
		v.logger.Debug("Booking failed validation",
			"user_id", b.UserID,
			"workshop_id", b.WorkshopID,
			"error", err,
		)
		return err
	}
	return nil
}

func (v *BookingValidator) structErr(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func validateUniqueIDs(fl validator.FieldLevel) bool {
	ids, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		var msg string
		switch err.Tag() {
		case "required":
			msg = "is required"
		case "min":
			msg = fmt.Sprintf("must be at least %s", err.Param())
		case "max":
			msg = fmt.Sprintf("must be at most %s", err.Param())
		case "mongodb":
			msg = "must be a valid id"
		case "oneof":
			msg = fmt.Sprintf("must be one of [%s]", err.Param())
		case "gtfield":
			msg = fmt.Sprintf("must be after %s", err.Param())
		default:
			msg = fmt.Sprintf("failed on the '%s' rule", err.Tag())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: msg,
		})
	}

	return validationErrors
}
