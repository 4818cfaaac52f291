package config

import "fmt"

// ConfigurationError reports a required setting that has no value.
// It is returned by the accessor that first needed the setting, so a
// misconfigured deployment only fails the actions that depend on it.
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required setting %q", e.Key)
}
