package app

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// BuildPath is a build file or a directory of build files.
	BuildPath string `validate:"required"`
	// Targets are run in order; empty means the build file's default.
	Targets []string
	// Variables override `variables` declared in the build files.
	Variables map[string]string

	LogFormat   string `validate:"oneof=text json"`
	LogLevel    string `validate:"loglevel"`
	WorkerCount int    `validate:"min=1,max=256"`

	// Strict turns detected read/write overlaps into errors.
	Strict bool
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		_, ok := logLevels[fl.Field().String()]
		return ok
	})
	return v
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if err := validate.Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			if fe.Tag() == "loglevel" {
				return nil, fmt.Errorf("invalid configuration: %s must be one of %s, got %v", fe.Field(), levelNames(), fe.Value())
			}
			if fe.Param() != "" {
				return nil, fmt.Errorf("invalid configuration: %s must satisfy %s=%s, got %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
			}
			return nil, fmt.Errorf("invalid configuration: %s is %s", fe.Field(), fe.Tag())
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
