// Package errors provides standardized error handling patterns for signalbus components.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input, non-retryable), and
// Fatal (unrecoverable, stop processing). It also defines the closed result
// set that every fallible message-bus operation returns: ErrZeroTopic,
// ErrTopicExists, ErrTopicNotFound, ErrTypeMismatch, ErrSubExists,
// ErrSubNotFound, ErrWriteNotSupported, ErrWriteFailed, ErrJSONParseFailed.
//
// Bus, envelope, and monitor operations never panic and never return
// free-form errors; callers can switch on the sentinel values with errors.Is.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Component", "Method", "action")  // For retryable errors
//	errors.WrapInvalid(err, "Component", "Method", "action")    // For validation errors
//	errors.WrapFatal(err, "Component", "Method", "action")      // For unrecoverable errors
//
// The generic Wrap() function preserves the original error's classification:
//
//	errors.Wrap(err, "Component", "Method", "action")  // Preserves original class
//
// # Quick Start
//
// Return standard error variables for known conditions:
//
//	if _, dup := r.topics[id]; dup {
//	    return errors.ErrTopicExists
//	}
//
// Check classification for retry logic:
//
//	if err := bridge.Publish(msg); err != nil {
//	    if errors.IsTransient(err) {
//	        config := errors.DefaultRetryConfig()
//	        if config.ShouldRetry(err, attempt) {
//	            time.Sleep(config.BackoffDelay(attempt))
//	            // retry operation
//	        }
//	    }
//	}
//
// # Integration with errors.As/Is
//
// All error types support standard library error inspection:
//
//	var ce *errors.ClassifiedError
//	if errors.As(err, &ce) {
//	    log.Printf("Component: %s, Class: %s", ce.Component, ce.Class)
//	}
//
//	if errors.Is(err, errors.ErrTypeMismatch) {
//	    // Handle the type mismatch specifically
//	}
//
// Classification is preserved through error chains.
//
// # Thread Safety
//
// All classification and wrapping operations are thread-safe. Error variables
// are immutable and safe for concurrent access.
package errors
