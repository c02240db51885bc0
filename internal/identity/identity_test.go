package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		p    *Principal
		want string
	}{
		{"nil principal", nil, ""},
		{"profile name wins", &Principal{Email: "ann@example.com", DisplayName: "Ann K"}, "Ann K"},
		{"email local part fallback", &Principal{Email: "ann@example.com"}, "ann"},
		{"no at sign", &Principal{Email: "ann"}, "ann"},
		{"empty", &Principal{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.p.BestDisplayName())
		})
	}
}
