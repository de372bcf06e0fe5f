package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	t.Parallel()

	require.Equal(t, "[REDACTED_TOKEN]", Token("eyJhbGciOi.payload.sig"))
	require.Equal(t, "", Token(""))
}

func TestAuthorization_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer", header: "Bearer abc.def.ghi", want: "Bearer [REDACTED_TOKEN]"},
		{name: "no_scheme", header: "abc.def.ghi", want: "[REDACTED_TOKEN]"},
		{name: "scheme_only", header: "Bearer ", want: "[REDACTED_TOKEN]"},
		{name: "empty", header: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Authorization(tt.header))
		})
	}
}
