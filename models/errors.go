package models

import (
	"errors"
	"fmt"
)

// Codes carried by fatal crawl errors. They appear in the webhook payload
// and decide the process exit status.
const (
	ErrCodeLogin         = "LOGIN_FAILED"      // form missing or no redirect after submit
	ErrCodeNavigation    = "NAVIGATION_FAILED" // a page load failed outright
	ErrCodeTimeout       = "TIMEOUT"
	ErrCodeCanceled      = "CANCELED" // SIGINT/SIGTERM or a canceled parent context
	ErrCodeBrowserCrash  = "BROWSER_CRASH"
	ErrCodeSink          = "SINK_FAILED"
	ErrCodeConfigInvalid = "CONFIG_INVALID"
	ErrCodeSelector      = "SELECTOR_INVALID" // a console selector does not compile
	ErrCodeLocked        = "LOCKED"           // another run holds the lock file
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// Exit statuses beyond the generic 1, following sysexits.h where one fits.
const (
	ExitFailure  = 1
	ExitTempFail = 75
	ExitConfig   = 78
	ExitCanceled = 130
)

// ErrorDetail is the code and message pair reported outside the process.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CrawlError ends a run. Soft failures never become a CrawlError; they are
// logged and replaced by sentinels where they happen.
type CrawlError struct {
	Code    string
	Message string
	Err     error
}

func (e *CrawlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CrawlError) Unwrap() error {
	return e.Err
}

func NewCrawlError(code, message string, err error) *CrawlError {
	return &CrawlError{Code: code, Message: message, Err: err}
}

func (e *CrawlError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// CodeOf returns the code of the first CrawlError in err's tree,
// ErrCodeInternal for any other error and "" for nil.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var ce *CrawlError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrCodeInternal
}

// DetailOf is CodeOf with a message; errors outside the taxonomy keep
// their own text.
func DetailOf(err error) *ErrorDetail {
	if err == nil {
		return nil
	}
	var ce *CrawlError
	if errors.As(err, &ce) {
		return ce.ToDetail()
	}
	return &ErrorDetail{Code: ErrCodeInternal, Message: err.Error()}
}

// ExitCode maps a run error to the process exit status.
func ExitCode(err error) int {
	switch CodeOf(err) {
	case "":
		return 0
	case ErrCodeCanceled:
		return ExitCanceled
	case ErrCodeLocked:
		return ExitTempFail
	case ErrCodeConfigInvalid, ErrCodeSelector:
		return ExitConfig
	default:
		return ExitFailure
	}
}
