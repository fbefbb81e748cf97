package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without wrapped error",
			err:  New("PROVIDER_CONFIG_NOT_FOUND", "provider config not found", http.StatusNotFound),
			want: "PROVIDER_CONFIG_NOT_FOUND: provider config not found",
		},
		{
			name: "with wrapped error",
			err:  New("DB_ERROR", "database failure", http.StatusInternalServerError).WithCause(fmt.Errorf("db error")),
			want: "DB_ERROR: database failure: db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := New("CODE", "msg", http.StatusInternalServerError).WithCause(inner)

	if !errors.Is(appErr, inner) {
		t.Error("errors.Is should match inner error")
	}
}

func TestAs(t *testing.T) {
	appErr := NotFound("NOT_FOUND", "resource not found")
	wrapped := fmt.Errorf("wrapped: %w", appErr)

	got, ok := As(wrapped)
	if !ok {
		t.Fatal("As should find a wrapped AppError")
	}
	if got.Code != "NOT_FOUND" {
		t.Errorf("Code = %q, want NOT_FOUND", got.Code)
	}
	if _, ok := As(errors.New("plain")); ok {
		t.Error("As should not match a plain error")
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantStatus int
	}{
		{"NotFound", NotFound("NF", "not found"), http.StatusNotFound},
		{"BadRequest", BadRequest("BR", "bad request"), http.StatusBadRequest},
		{"Conflict", Conflict("CF", "conflict"), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", tt.err.HTTPStatus, tt.wantStatus)
			}
		})
	}
}

func TestPredefinedConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"config not found", ErrProviderConfigNotFoundf(42), CodeProviderConfigNotFound, http.StatusNotFound},
		{"no effect", ErrNoEffectf("LDAPAuthProvider"), CodeNoEffect, http.StatusConflict},
		{"invalid field", ErrInvalidRequestFieldf("id"), CodeInvalidRequestField, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", tt.err.HTTPStatus, tt.wantStatus)
			}
		})
	}
}

func TestWithParams(t *testing.T) {
	err := ErrProviderConfigNotFoundf(7)
	if got := err.Params["config_id"]; got != int64(7) {
		t.Errorf("Params[config_id] = %v, want 7", got)
	}

	if got := ErrInvalidRequestFieldf("config_id").Params["field"]; got != "config_id" {
		t.Errorf("Params[field] = %v, want config_id", got)
	}
	if got := NotFound("NF", "x").WithParams(nil).Params; got != nil {
		t.Errorf("WithParams(nil) set Params = %v", got)
	}
}
