package domain

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize trims surrounding whitespace from every field.
func (u UserIdentity) Normalize() UserIdentity {
	return UserIdentity{
		ID:      strings.TrimSpace(u.ID),
		Name:    strings.TrimSpace(u.Name),
		Company: strings.TrimSpace(u.Company),
		Email:   strings.ToLower(strings.TrimSpace(u.Email)),
		Phone:   strings.TrimSpace(u.Phone),
	}
}

// Validate returns an ErrValidation naming the first offending field.
func (u UserIdentity) Validate() error {
	err := validate.Struct(u)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return Validationf("identity field %s failed %q", strings.ToLower(fe.Field()), fe.Tag())
	}
	return Validationf("identity: %v", err)
}
