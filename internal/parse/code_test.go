package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseItemCode(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  ParsedCode
		expectErr bool
	}{
		{
			name:     "Canonical",
			raw:      "SR-0012",
			expected: ParsedCode{Prefix: "SR", Seq: 12, Canonical: "SR-0012"},
		},
		{
			name:     "Lower case without separator",
			raw:      "sr12",
			expected: ParsedCode{Prefix: "SR", Seq: 12, Canonical: "SR-0012"},
		},
		{
			name:     "Space separator and padding",
			raw:      "  mul 7 ",
			expected: ParsedCode{Prefix: "MUL", Seq: 7, Canonical: "MUL-0007"},
		},
		{
			name:     "Underscore separator",
			raw:      "AND_0003",
			expected: ParsedCode{Prefix: "AND", Seq: 3, Canonical: "AND-0003"},
		},
		{
			name:     "Long sequence keeps width",
			raw:      "CAM-123456",
			expected: ParsedCode{Prefix: "CAM", Seq: 123456, Canonical: "CAM-123456"},
		},
		{
			name:      "Empty",
			raw:       "   ",
			expectErr: true,
		},
		{
			name:      "No digits",
			raw:       "WHEELCHAIR",
			expectErr: true,
		},
		{
			name:      "Zero sequence",
			raw:       "SR-0000",
			expectErr: true,
		},
		{
			name:      "Digits first",
			raw:       "12-SR",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseItemCode(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, parsed)
			}
		})
	}
}
