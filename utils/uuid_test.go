package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalID(t *testing.T) {
	id := GenerateID()
	require.Len(t, id, 36)
	require.NotEqual(t, id, GenerateID())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "canonical", in: "6ba7b810-9dad-11d1-80b4-00c04fd430c8", want: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{name: "upper_case", in: "6BA7B810-9DAD-11D1-80B4-00C04FD430C8", want: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{name: "braces", in: "{6ba7b810-9dad-11d1-80b4-00c04fd430c8}", want: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{name: "urn", in: "urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8", want: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{name: "not_a_uuid", in: "a1", want: "a1"},
		{name: "empty", in: "", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, CanonicalID(tc.in))
		})
	}
}
