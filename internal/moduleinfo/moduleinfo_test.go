package moduleinfo

import (
	"encoding/json"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/require"

	"github.com/00zhengfu00/modlink/internal/descriptor"
)

func utf16LEBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(units)*2)
	for _, u := range units {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := &descriptor.Descriptor{
		Name: "app.main",
		Dependences: []descriptor.Dependence{
			{Target: "java.base", Modifiers: descriptor.ModPublic},
		},
	}
	data, err := Encode(src)
	require.NoError(t, err)

	d, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, "app.main", d.Name)
	require.Equal(t, []string{"java.base"}, d.PublicTargets())
}

func TestDecodeNormalizesLegacyUTF16NameRaw(t *testing.T) {
	data, err := json.Marshal(map[string]any{"name_raw": utf16LEBytes("java.base")})
	require.NoError(t, err)

	d, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, "java.base", d.Name)
}
