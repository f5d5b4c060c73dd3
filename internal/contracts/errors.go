package contracts

import "errors"

// Error classes. None of these abort a scan run.
var (
	// ErrMissingData: absent fields or insufficient candle history
	ErrMissingData = errors.New("missing data")
	// ErrProviderUnavailable: upstream failed after exhausting retries
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrAnalyticalParse: malformed analyst response
	ErrAnalyticalParse = errors.New("analytical response parse failed")
	// ErrPersistence: write failed
	ErrPersistence = errors.New("persistence failed")
)
