package services

type Capability int

const (
	CapabilityRead Capability = iota
	CapabilityWrite
	CapabilityDelete
)

type Decision int

const (
	Denied Decision = iota
	Allowed
)

// Authorize is the single ownership check. Any authenticated identity may read;
// writes and deletes require the identity to own the resource.
func Authorize(identity, owner string, capability Capability) Decision {
	if identity == "" {
		return Denied
	}
	switch capability {
	case CapabilityRead:
		return Allowed
	case CapabilityWrite, CapabilityDelete:
		if owner != "" && identity == owner {
			return Allowed
		}
	}
	return Denied
}
