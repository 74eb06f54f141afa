package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceInUse is returned by Use on a resource that is already held.
	ErrResourceInUse = errors.New("resource already in use")
	// ErrResourceDecommissioned is returned by Use on a decommissioned resource.
	ErrResourceDecommissioned = errors.New("resource decommissioned")
)

// ResourceKind distinguishes machines from operators.
type ResourceKind string

const (
	KindMachine  ResourceKind = "machine"
	KindOperator ResourceKind = "operator"
)

// ResourceState is the busy/free state of a resource.
type ResourceState string

const (
	ResourceAvailable      ResourceState = "available"
	ResourceInUse          ResourceState = "in_use"
	ResourceDecommissioned ResourceState = "decommissioned"
)

// Resource is a named unit of capacity shared by reference between stages.
type Resource struct {
	Name  string
	Kind  ResourceKind
	state ResourceState
}

// NewMachine creates an available machine.
func NewMachine(name string) *Resource {
	return &Resource{Name: name, Kind: KindMachine, state: ResourceAvailable}
}

// NewOperator creates an available operator.
func NewOperator(name string) *Resource {
	return &Resource{Name: name, Kind: KindOperator, state: ResourceAvailable}
}

// State returns the current state.
func (r *Resource) State() ResourceState {
	return r.state
}

// Available reports whether the resource can be used.
func (r *Resource) Available() bool {
	return r.state == ResourceAvailable
}

// Use marks the resource in use. Stacking is rejected.
func (r *Resource) Use() error {
	switch r.state {
	case ResourceInUse:
		return fmt.Errorf("%s %s: %w", r.Kind, r.Name, ErrResourceInUse)
	case ResourceDecommissioned:
		return fmt.Errorf("%s %s: %w", r.Kind, r.Name, ErrResourceDecommissioned)
	}
	r.state = ResourceInUse
	return nil
}

// Release makes an in-use resource available again. Decommissioned
// resources stay decommissioned.
func (r *Resource) Release() {
	if r.state == ResourceInUse {
		r.state = ResourceAvailable
	}
}

// Decommission permanently removes the resource from service.
func (r *Resource) Decommission() {
	r.state = ResourceDecommissioned
}
