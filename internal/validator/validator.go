// Package validator wraps go-playground/validator with the project's custom rules.
package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// PhoneTag validates a whitespace-free phone number: optional leading plus,
// then 10 to 15 digits.
const PhoneTag = "travelphone"

var phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation(PhoneTag, func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	return &Validator{v: v}
}

func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

func IsPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// FailedTags lists the tags that failed in err, if err came from Struct or Var.
func FailedTags(err error) []string {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		tags = append(tags, fe.Tag())
	}
	return tags
}
