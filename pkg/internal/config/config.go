package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Accessors for the settings every remote boundary depends on.
// Values are read through viper and validated at first use, never at
// startup; a missing value surfaces as *ConfigurationError to the
// caller of the dependent action only.

func requireString(key string) (string, error) {
	value := strings.TrimSpace(viper.GetString(key))
	if len(value) == 0 {
		return "", &ConfigurationError{Key: key}
	}
	return value, nil
}

func VideoAPIKey() (string, error) {
	return requireString("calling.api_key")
}

func VideoAPISecret() (string, error) {
	return requireString("calling.api_secret")
}

func VideoEndpoint() (string, error) {
	return requireString("calling.endpoint")
}

func SiteBaseURL() (string, error) {
	url, err := requireString("site.base_url")
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(url, "/"), nil
}

func IdentityEndpoint() (string, error) {
	return requireString("identity.endpoint")
}

func IdentityAPIKey() (string, error) {
	return requireString("identity.api_key")
}

func IdentityIssuer() (string, error) {
	return requireString("identity.issuer")
}
