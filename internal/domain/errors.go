package domain

import "errors"

var (
	// ErrInvalidInput signals a malformed or incomplete request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated signals a request without a valid session.
	ErrUnauthenticated = errors.New("user not authenticated")
	// ErrNotFound signals that nothing matched the request.
	ErrNotFound = errors.New("not found")
	// ErrQuotaExceeded signals an exhausted search quota.
	ErrQuotaExceeded = errors.New("search limit reached")
	// ErrMissingCredentials signals an unset provider key or token.
	ErrMissingCredentials = errors.New("provider credentials are not configured")
	// ErrProviderError signals a failed or malformed upstream provider response.
	ErrProviderError = errors.New("provider error")
	// ErrImageGenerationFailed signals that the image provider reported a failed job.
	ErrImageGenerationFailed = errors.New("image generation failed")
	// ErrImageTimeout signals that an image job did not finish within the poll budget.
	ErrImageTimeout = errors.New("image generation timed out")
)
