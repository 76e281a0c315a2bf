package domain

import "errors"

// Engine-level sentinel errors. Call sites wrap these with fmt.Errorf and %w
// so callers can branch with errors.Is.
var (
	ErrInvalidTrade     = errors.New("invalid trade record")
	ErrInvalidRiskInput = errors.New("invalid risk sizing input")
	// ErrInsufficientData marks statistics requested with too few data
	// points. Aggregate metrics never return it (they resolve to sentinel
	// values instead); it is for callers that need a hard failure.
	ErrInsufficientData = errors.New("insufficient data points")
)
