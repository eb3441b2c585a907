package core

import (
	"errors"
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
	Err     error  // Underlying cause, if any
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", msg, e.Action)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Error codes for configuration errors
const (
	ErrCodeMissingAPIKey    = "MISSING_API_KEY"
	ErrCodeConfigDirUnknown = "CONFIG_DIR_UNKNOWN"
	ErrCodeConfigRead       = "CONFIG_READ"
	ErrCodeConfigParse      = "CONFIG_PARSE"
	ErrCodeConfigWrite      = "CONFIG_WRITE"
)

// ErrMissingAPIKey returns an error for a missing OpenAI API key.
func ErrMissingAPIKey() *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingAPIKey,
		Message: "OpenAI API key not found",
		Action:  "Set OPENAI_API_KEY, pass --api-key, or run 'imgen setup'",
	}
}

// ErrConfigDirUnknown returns an error when no config directory can be derived
// from the environment.
func ErrConfigDirUnknown() *ConfigError {
	return &ConfigError{
		Code:    ErrCodeConfigDirUnknown,
		Message: "Could not determine configuration location",
		Action:  "Set XDG_CONFIG_HOME or HOME",
	}
}

// ErrConfigRead returns an error for a config file that exists but cannot be read.
func ErrConfigRead(path string, err error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeConfigRead,
		Message: fmt.Sprintf("Failed to read config file %s", path),
		Action:  "Check the file permissions",
		Err:     err,
	}
}

// ErrConfigParse returns an error for a config file with invalid contents.
func ErrConfigParse(path string, err error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeConfigParse,
		Message: fmt.Sprintf("Failed to parse config file %s", path),
		Action:  "Fix the YAML or run 'imgen setup' to rewrite it",
		Err:     err,
	}
}

// ErrConfigWrite returns an error for a config file that cannot be saved.
func ErrConfigWrite(path string, err error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeConfigWrite,
		Message: fmt.Sprintf("Failed to write config file %s", path),
		Err:     err,
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so
func IsConfigError(err error) (*ConfigError, bool) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
