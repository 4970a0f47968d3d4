package port

import "errors"

var (
	// ErrAssessmentNotFound is returned by repositories for unknown IDs.
	ErrAssessmentNotFound = errors.New("assessment not found")

	// ErrInference wraps per-call classifier failures.
	ErrInference = errors.New("inference failed")

	// ErrModelNotReady is returned when the inference server does not serve the model.
	ErrModelNotReady = errors.New("model not ready")
)
