package mlops

import "fmt"

// DependencyOrderError is returned when a resource delete is requested
// while another resource that depends on it still exists. The provider is
// never called in that case.
type DependencyOrderError struct {
	Resource  string
	DependsOn string
}

func (e *DependencyOrderError) Error() string {
	return fmt.Sprintf("%s can't be deleted while %s still exists", e.Resource, e.DependsOn)
}

// InvalidParameterValueError is returned when a non-interactive selector
// supplies a parameter value that fails local validation.
type InvalidParameterValueError struct {
	Name   string
	Reason string
}

func (e *InvalidParameterValueError) Error() string {
	return fmt.Sprintf("invalid value for parameter %s: %s", e.Name, e.Reason)
}
