package mysql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImageCodec(t *testing.T) {
	tests := []struct {
		name   string
		images []string
	}{
		{name: "empty", images: nil},
		{name: "single", images: []string{"https://cdn.example.com/a.jpg"}},
		{
			name:   "reference_with_comma",
			images: []string{"https://cdn.example.com/a,b.jpg", "https://cdn.example.com/c.jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := encodeImages(tt.images)
			require.NoError(t, err)

			decoded, err := decodeImages(encoded)
			require.NoError(t, err)
			require.Equal(t, tt.images, decoded)
		})
	}
}

func TestDecodeImages_LegacyEmpty(t *testing.T) {
	decoded, err := decodeImages("")
	require.NoError(t, err)
	require.Nil(t, decoded)
}
