package transform

import "fmt"

// InvalidStateError is returned when a command is executed twice, or undone
// while not executed.
type InvalidStateError struct {
	Command string
	Op      string
	Reason  string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s: %s", e.Op, e.Command, e.Reason)
}

// PreconditionError is returned when a command is serialized before it has
// been executed.
type PreconditionError struct {
	Command string
	Reason  string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Reason)
}

// AmbiguousLocatorError is returned when a command is rebuilt from a record
// whose locator does not match exactly one node of the document. Err holds
// the cause when the locator could not be evaluated at all.
type AmbiguousLocatorError struct {
	Locator string
	Matches int
	Err     error
}

func (e *AmbiguousLocatorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("locator '%s' is invalid: %v", e.Locator, e.Err)
	}
	return fmt.Sprintf("locator '%s' matches %d elements", e.Locator, e.Matches)
}

func (e *AmbiguousLocatorError) Unwrap() error {
	return e.Err
}
