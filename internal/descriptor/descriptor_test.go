package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"java.base", false},
		{"a.b.c", false},
		{"_underscore.ok", false},
		{"", true},
		{"a..b", true},
		{"1leadingdigit", true},
		{"bad-dash", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDescriptorRequiresNames(t *testing.T) {
	d := &Descriptor{
		Name: "app",
		Dependences: []Dependence{
			{Target: "java.base"},
			{Target: "java.logging", Modifiers: ModPublic},
			{Target: "optional.lib", Modifiers: ModOptional},
		},
	}

	require.ElementsMatch(t, []string{"java.base", "java.logging"}, d.RequiresNames())
	require.Equal(t, []string{"optional.lib"}, d.OptionalNames())
	require.Equal(t, []string{"java.logging"}, d.PublicTargets())
}

func TestModuleIDString(t *testing.T) {
	require.Equal(t, "java.base", ModuleID{Name: "java.base"}.String())
	require.Equal(t, "java.base@11", ModuleID{Name: "java.base", Version: "11"}.String())
}

func TestNormalizeNamePassthroughUTF8(t *testing.T) {
	out, err := NormalizeName([]byte("java.base"))
	require.NoError(t, err)
	require.Equal(t, "java.base", out)
}
