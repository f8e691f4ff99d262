package ai

import "fmt"

type ErrorCode string

const (
	ErrCodeAPIKey       ErrorCode = "api_key"
	ErrCodeTimeout      ErrorCode = "timeout"
	ErrCodeUnreachable  ErrorCode = "unreachable"
	ErrCodeModelMissing ErrorCode = "model_missing"
	ErrCodeBadResponse  ErrorCode = "bad_response"
)

type ProviderError struct {
	Provider string
	Code     ErrorCode
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }
