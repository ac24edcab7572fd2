package engine

import "fmt"

// InvalidIntervalError reports a degenerate or out-of-day interval. It points
// at corrupt rule, override or lunch data rather than at caller input.
type InvalidIntervalError struct {
	Start int
	End   int
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("invalid interval [%d, %d): start must be before end and both within [0, %d]", e.Start, e.End, MinutesPerDay)
}

// InvalidConfigurationError reports a delivery type setting the engine cannot work with.
type InvalidConfigurationError struct {
	Field string
	Value int
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s must be positive, got %d", e.Field, e.Value)
}

// NotFoundError is returned by stores when an organization or delivery type does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}
