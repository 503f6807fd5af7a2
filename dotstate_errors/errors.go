// Provides common dotstate error definitions.
package dotstate_errors

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration   = errors.New("dotstate: configuration error")
	ErrNoTransformer   = fmt.Errorf("%w: function update needs a transformer, none configured", ErrConfiguration)
	ErrMissingProducer = fmt.Errorf("%w: transformer needs config.Producer, none configured", ErrConfiguration)

	ErrValidation  = errors.New("dotstate: validation rejected the update")
	ErrStoreClosed = errors.New("dotstate: store destroyed")
	ErrBadUpdate   = errors.New("dotstate: unsupported update descriptor")
)

// ValidationError is raised by validation middleware to veto an update.
type ValidationError struct {
	Action string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dotstate: validation failed for action %q: %s", e.Action, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
