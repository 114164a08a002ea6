package media

import (
	"testing"
)

func TestMapVideoAspect(t *testing.T) {
	tests := []struct {
		ratio    AspectRatio
		expected string
	}{
		{RatioSquare, "16:9"},
		{RatioLandscape, "16:9"},
		{RatioPortrait, "9:16"},
		{RatioFourThirds, "16:9"},
		{RatioThreeFourths, "9:16"},
		{AspectRatio("21:9"), "16:9"},
		{AspectRatio(""), "16:9"},
	}

	for _, tt := range tests {
		t.Run(string(tt.ratio), func(t *testing.T) {
			result := MapVideoAspect(tt.ratio)
			if result != tt.expected {
				t.Errorf("MapVideoAspect(%q) = %q, want %q", tt.ratio, result, tt.expected)
			}
		})
	}
}
