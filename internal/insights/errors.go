package insights

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when no row matches.
var ErrNotFound = errors.New("not found")

// ErrSummarizerDisabled is returned when no AI provider is configured.
var ErrSummarizerDisabled = errors.New("summarizer is not configured")

// ScrapeError classifies a failed scrape so callers can map it to the
// right HTTP status and retry advice.
type ScrapeError struct {
	PageID    string
	Message   string
	LoginWall bool
	Retryable bool
	Err       error
}

// Error implements the error interface.
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause.
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewLoginWallError reports that the page served an authentication wall
// instead of company data. Login walls are terminal, not retryable.
func NewLoginWallError(pageID string) *ScrapeError {
	return &ScrapeError{
		PageID: pageID,
		Message: fmt.Sprintf(
			"login wall detected for page %q; page requires authentication to access full data", pageID),
		LoginWall: true,
		Retryable: false,
	}
}

// NewScrapeError wraps a transient scrape failure.
func NewScrapeError(pageID, message string, err error) *ScrapeError {
	return &ScrapeError{
		PageID:    pageID,
		Message:   message,
		Retryable: true,
		Err:       err,
	}
}

// IsLoginWall reports whether err is a login-wall classification.
func IsLoginWall(err error) bool {
	var se *ScrapeError
	return errors.As(err, &se) && se.LoginWall
}

// IsRetryable reports whether the scrape may succeed when retried.
// Unknown errors are considered retryable.
func IsRetryable(err error) bool {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return true
}
