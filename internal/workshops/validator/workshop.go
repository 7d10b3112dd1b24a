package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

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
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

type WorkshopValidator struct {
	validate *validator.Validate
}

func NewWorkshopValidator() *WorkshopValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	return &WorkshopValidator{
		validate: v,
	}
}

func (v *WorkshopValidator) Validate(w *model.Workshop) error {
	if err := v.structErr(w); err != nil {
		return err
	}
	if strings.TrimSpace(w.Title) == "" {
		return ValidationErrors{{Field: "title", Message: "title cannot be blank"}}
	}
	return nil
}

func (v *WorkshopValidator) ValidateUpdate(u *model.WorkshopUpdate) error {
	return v.structErr(u)
}

func (v *WorkshopValidator) ValidatePlaces(p *model.PlacesAdjustment) error {
	return v.structErr(p)
}

func (v *WorkshopValidator) ValidateComment(c *model.CommentInput) error {
	if err := v.structErr(c); err != nil {
		return err
	}
	if strings.TrimSpace(c.Text) == "" {
		return ValidationErrors{{Field: "text", Message: "text cannot be blank"}}
	}
	return nil
}

func (v *WorkshopValidator) structErr(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message(err),
		})
	}

	return validationErrors
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "mongodb":
		return "must be a valid id"
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
