package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verimatch/verimatch/template"
)

func sampleTemplate(t *testing.T) *template.Keystroke {
	t.Helper()
	tmpl, err := template.NewKeystroke([][]float64{
		{0.1, 0.2, 0.3},
		{0.2, 0.3, 0.4},
		{0.15, 0.25, 0.35},
	})
	require.NoError(t, err)
	return tmpl
}

func TestCodecRoundTrip(t *testing.T) {
	tmpl := sampleTemplate(t)

	for _, name := range []string{"json", "json+zstd", "json+lz4"} {
		t.Run(name, func(t *testing.T) {
			c, ok := ByName(name)
			require.True(t, ok)
			assert.Equal(t, name, c.Name())

			data, err := c.Marshal(tmpl)
			require.NoError(t, err)

			var decoded template.Keystroke
			require.NoError(t, c.Unmarshal(data, &decoded))
			assert.Equal(t, tmpl.Mean, decoded.Mean)
			assert.Equal(t, tmpl.Std, decoded.Std)
			assert.Equal(t, tmpl.Samples, decoded.Samples)
			assert.Equal(t, tmpl.Schema, decoded.Schema)
		})
	}
}

func TestByNameUnknown(t *testing.T) {
	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCompressedSmallerOnRepetitiveData(t *testing.T) {
	payload := map[string]string{"v": strings.Repeat("abcdef", 500)}

	plain := MustMarshal(JSON{}, payload)
	zstdBytes := MustMarshal(Zstd{Inner: JSON{}}, payload)
	lz4Bytes := MustMarshal(LZ4{Inner: JSON{}}, payload)

	assert.Less(t, len(zstdBytes), len(plain))
	assert.Less(t, len(lz4Bytes), len(plain))
}

func TestLZ4IncompressiblePayload(t *testing.T) {
	// Tiny payloads do not compress; the raw path must round-trip.
	c := LZ4{Inner: JSON{}}

	data, err := c.Marshal(map[string]float64{"a": 1})
	require.NoError(t, err)

	var decoded map[string]float64
	require.NoError(t, c.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]float64{"a": 1}, decoded)
}

func TestUnmarshalTruncated(t *testing.T) {
	var v map[string]any
	assert.Error(t, LZ4{}.Unmarshal([]byte{1, 2, 3}, &v))
	assert.Error(t, Zstd{}.Unmarshal([]byte{1, 2, 3}, &v))
}
