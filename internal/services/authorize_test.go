package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		owner    string
		cap      Capability
		want     Decision
	}{
		{"read by anyone", "a", "b", CapabilityRead, Allowed},
		{"read unauthenticated", "", "b", CapabilityRead, Denied},
		{"write by owner", "a", "a", CapabilityWrite, Allowed},
		{"write by other", "a", "b", CapabilityWrite, Denied},
		{"delete by owner", "a", "a", CapabilityDelete, Allowed},
		{"delete by other", "a", "b", CapabilityDelete, Denied},
		{"delete ownerless", "a", "", CapabilityDelete, Denied},
		{"unknown capability", "a", "a", Capability(99), Denied},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Authorize(tc.identity, tc.owner, tc.cap))
		})
	}
}
