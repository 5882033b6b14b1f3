package anonymizer

import (
	"errors"
	"testing"

	"github.com/docveil/docveil/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileValidRules(t *testing.T) {
	rs, err := Compile([]rules.Spec{
		{Type: rules.TypeExact, Name: "cliente", Pattern: "KFC España", Replacement: strPtr("ABC S.A.")},
		{Type: rules.TypeRegex, Pattern: `[A-Z]\d{8}`, Replacement: strPtr("[CIF-REDACTED]")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())
	assert.Equal(t, []string{"cliente", "regex-2"}, rs.Names())
}

func TestCompileInvalidRules(t *testing.T) {
	tcs := []struct {
		name string
		spec rules.Spec
	}{
		{
			name: "unrecognized type",
			spec: rules.Spec{Type: "fuzzy", Pattern: "x", Replacement: strPtr("y")},
		},
		{
			name: "empty pattern",
			spec: rules.Spec{Type: rules.TypeExact, Pattern: "", Replacement: strPtr("y")},
		},
		{
			name: "missing replacement",
			spec: rules.Spec{Type: rules.TypeExact, Pattern: "x"},
		},
		{
			name: "regex does not compile",
			spec: rules.Spec{Type: rules.TypeRegex, Pattern: `[unclosed`, Replacement: strPtr("y")},
		},
		{
			name: "unknown named group",
			spec: rules.Spec{Type: rules.TypeRegex, Pattern: `(\d+)`, Replacement: strPtr("y"), Group: "cif"},
		},
		{
			name: "group index out of range",
			spec: rules.Spec{Type: rules.TypeRegex, Pattern: `(\d+)`, Replacement: strPtr("y"), Group: "2"},
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			rs, err := Compile([]rules.Spec{tc.spec})
			assert.Nil(t, rs)
			require.Error(t, err)

			var invalid *InvalidRuleError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, 0, invalid.Index)
		})
	}
}

func TestCompileEmptyReplacementIsValid(t *testing.T) {
	rs, err := Compile([]rules.Spec{
		{Type: rules.TypeExact, Pattern: "x", Replacement: strPtr("")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
}

func TestCompilePreservesSourceOrder(t *testing.T) {
	specs := []rules.Spec{
		{Type: rules.TypeExact, Name: "first", Pattern: "a", Replacement: strPtr("b")},
		{Type: rules.TypeRegex, Name: "second", Pattern: "b", Replacement: strPtr("c")},
		{Type: rules.TypeExact, Name: "third", Pattern: "c", Replacement: strPtr("d")},
	}
	rs, err := Compile(specs)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, rs.Names())
}
