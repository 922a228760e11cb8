package app

// ConfigError marks a problem with the build files or the requested targets
// found before any task ran.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configError(err error) error {
	if err == nil {
		return nil
	}
	return &ConfigError{Err: err}
}
