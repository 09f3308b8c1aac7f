// Package secrets resolves vendor API keys: OS keychain first, then
// environment, then the config file value as a last resort.
package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "jobcorpus"

func account(source string) string {
	return fmt.Sprintf("jobcorpus:api:%s", source)
}

func envVar(source string) string {
	return "JOBCORPUS_" + strings.ToUpper(source) + "_API_KEY"
}

// APIKey returns the key for a source, or "" when none is configured
// anywhere. configValue is the api_key field from the YAML config.
func APIKey(source, configValue string) string {
	if pw, err := keyring.Get(KeyringService, account(source)); err == nil && strings.TrimSpace(pw) != "" {
		return pw
	}
	if v := strings.TrimSpace(os.Getenv(envVar(source))); v != "" {
		return v
	}
	return strings.TrimSpace(configValue)
}

func SetAPIKey(source, key string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("source name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("API key is empty")
	}
	return keyring.Set(KeyringService, account(source), key)
}

func DeleteAPIKey(source string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("source name is empty")
	}
	return keyring.Delete(KeyringService, account(source))
}
