package bodytext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromMarkdown(t *testing.T) {
	tests := []struct {
		name   string
		md     string
		expect string
	}{
		{
			name:   "empty",
			md:     "  \n ",
			expect: "",
		},
		{
			name:   "emphasis keeps words intact",
			md:     "a *quiet* river at **dawn**",
			expect: "a quiet river at dawn",
		},
		{
			name:   "blocks separated",
			md:     "# The River\n\nFirst line\nsecond line\n\n- one\n- two",
			expect: "The River First line second line one two",
		},
		{
			name:   "links keep their label",
			md:     "see [the bend](https://example.com/bend) today",
			expect: "see the bend today",
		},
		{
			name:   "inline code kept",
			md:     "run `go test` now",
			expect: "run go test now",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expect, FromMarkdown(tt.md))
		})
	}
}
