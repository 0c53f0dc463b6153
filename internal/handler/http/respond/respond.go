// Package respond writes JSON responses and keeps internal error detail
// out of client-facing bodies.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes v as a JSON body with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// ヘッダー送信済みのためエラー応答は返せない
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// Error writes the error message verbatim. Use only for errors built
// from request input.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// safeFragments marks messages that originate from request validation
// and may be returned to clients as is.
var safeFragments = []string{
	"required", "invalid", "not found", "already exists",
	"must be", "cannot be", "too long", "too short",
}

func clientSafe(code int, msg string) bool {
	// 500系は常に内部エラー扱い
	if code >= 500 {
		return false
	}
	lower := strings.ToLower(msg)
	for _, fragment := range safeFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// SafeError returns validation-style messages to the client and hides
// everything else behind a generic body, logging the sanitized detail.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	if msg := err.Error(); clientSafe(code, msg) {
		JSON(w, code, map[string]string{"error": msg})
		return
	}

	// 機密情報をマスクしてログ出力
	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.Any("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}

// AppError pairs an internal error with the message clients should see.
type AppError struct {
	UserMsg string
	Err     error
	Code    int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError with the given status code, user-facing
// message, and internal cause.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// SafeErrorV2 unwraps an AppError when present, writing its user message
// with its own status code and logging the internal cause. Other errors
// go through SafeError.
func SafeErrorV2(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		SafeError(w, code, err)
		return
	}

	if appErr.Err != nil {
		// 機密情報をマスクしてログ出力
		slog.Default().Error("application error",
			slog.String("status", http.StatusText(appErr.Code)),
			slog.Int("code", appErr.Code),
			slog.String("user_message", appErr.UserMsg),
			slog.Any("error", SanitizeError(appErr.Err)))
	}
	JSON(w, appErr.Code, map[string]string{"error": appErr.UserMsg})
}
