package app

import (
	"errors"
	"fmt"
	"strings"

	"dynipupdater/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	must(v.RegisterValidation("notblank", validators.NotBlank))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// validateSettings rejects settings that cannot produce a correct rule,
// before any network call is made.
func validateSettings(s models.Settings) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %q", strings.TrimPrefix(fe.Namespace(), "Settings."), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(msgs, "; "))
}
