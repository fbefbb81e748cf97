package errors

// Error codes carry code + params only; clients translate them. Logs stay in English.

// Provider config error codes.
const (
	CodeProviderConfigNotFound = "PROVIDER_CONFIG_NOT_FOUND"
	CodeNoEffect               = "TRANSACTION_NO_EFFECT"
)

// Auth error codes.
const (
	CodeAuthFailed   = "AUTH_FAILED"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

// Validation error codes.
const (
	CodeInvalidRequestField = "INVALID_REQUEST_FIELD"
)

// Convenience constructors using predefined codes.

// ErrProviderConfigNotFoundf creates a provider config not found error.
func ErrProviderConfigNotFoundf(configID int64) *AppError {
	return NotFound(CodeProviderConfigNotFound, "auth provider config not found").
		WithParams(map[string]interface{}{"config_id": configID})
}

// ErrNoEffectf creates the error for a submission rejected because a change
// would not alter the config.
func ErrNoEffectf(providerClass string) *AppError {
	return Conflict(CodeNoEffect, "submission contains a change without effect").
		WithParams(map[string]interface{}{"provider": providerClass})
}

// ErrInvalidRequestFieldf creates a bad request error for an invalid field.
func ErrInvalidRequestFieldf(fieldName string) *AppError {
	return BadRequest(CodeInvalidRequestField, "request contains invalid field: "+fieldName).
		WithParams(map[string]interface{}{"field": fieldName})
}
