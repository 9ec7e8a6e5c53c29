package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConfigShorthand(t *testing.T) {
	reg := NewRegistry()
	cfg, err := ParseConfig(strings.NewReader("strip-java-debug=on\nzip=on\n"), reg)
	require.NoError(t, err)
	require.Len(t, cfg.Stages, 2)
	require.Equal(t, "strip-java-debug", cfg.Stages[0].Plugin)
	require.Equal(t, CategoryTransformer, cfg.Stages[0].Category)
	require.True(t, cfg.PluginConfig("zip").On())
}

func TestParseConfigExplicitCategoryKeys(t *testing.T) {
	reg := NewRegistry()
	src := "resources.filter=exclude-resources\nexclude-resources.argument=*.jcov,**/META-INF/**\n"
	cfg, err := ParseConfig(strings.NewReader(src), reg)
	require.NoError(t, err)
	require.Len(t, cfg.Stages, 1)
	require.Equal(t, CategoryFilter, cfg.Stages[0].Category)
	pc := cfg.PluginConfig("exclude-resources")
	require.Equal(t, "*.jcov,**/META-INF/**", pc.Argument)
}

func TestParseConfigNumericSuffixOrdering(t *testing.T) {
	reg := NewRegistry()
	src := "resources.filter.1=exclude-files\nresources.filter.0=exclude-resources\n"
	cfg, err := ParseConfig(strings.NewReader(src), reg)
	require.NoError(t, err)
	require.Len(t, cfg.Stages, 2)
	// Declared out of numeric order; Build is responsible for sorting,
	// ParseConfig just records what was written.
	require.Equal(t, 1, cfg.Stages[0].Suffix)
	require.Equal(t, 0, cfg.Stages[1].Suffix)
}

func TestParseConfigUnknownPluginShorthandFails(t *testing.T) {
	reg := NewRegistry()
	_, err := ParseConfig(strings.NewReader("not-a-real-plugin=on\n"), reg)
	require.Error(t, err)
}

func TestParseConfigMissingEqualsFails(t *testing.T) {
	reg := NewRegistry()
	_, err := ParseConfig(strings.NewReader("garbage line\n"), reg)
	require.Error(t, err)
}

func TestParseConfigIgnoresCommentsAndBlankLines(t *testing.T) {
	reg := NewRegistry()
	src := "# a comment\n\nzip=on\n"
	cfg, err := ParseConfig(strings.NewReader(src), reg)
	require.NoError(t, err)
	require.Len(t, cfg.Stages, 1)
}
