package generation

import "errors"

// Common errors returned by Tutor implementations
var (
	// ErrGenerationFailed is returned when the model rejects a request for any other reason
	ErrGenerationFailed = errors.New("language model request failed")

	// ErrInvalidResponse is returned when the model response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error calling language model")

	// ErrInvalidConfig is returned when the tutor configuration is invalid
	ErrInvalidConfig = errors.New("invalid tutor configuration")

	// ErrEmptyDocument is returned when analysis is requested for blank text
	ErrEmptyDocument = errors.New("document text cannot be empty")

	// ErrEmptyAnswer is returned when evaluation is requested for a blank answer
	ErrEmptyAnswer = errors.New("answer text cannot be empty")
)

// IsPermanent reports whether retrying the same request cannot succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrGenerationFailed) ||
		errors.Is(err, ErrContentBlocked) ||
		errors.Is(err, ErrInvalidResponse) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrEmptyDocument) ||
		errors.Is(err, ErrEmptyAnswer)
}
