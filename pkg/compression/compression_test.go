package compression

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandenbergjp/FlatFiles/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Algorithm
	}{
		{"", None},
		{"none", None},
		{"gzip", Gzip},
		{"GZIP", Gzip},
		{"deflate", Deflate},
		{"zstd", Zstd},
		{"s2", S2},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := Parse("lzma")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestByExtension(t *testing.T) {
	assert.Equal(t, Gzip, ByExtension("data/accounts.csv.gz"))
	assert.Equal(t, Zstd, ByExtension("accounts.zst"))
	assert.Equal(t, S2, ByExtension("accounts.s2"))
	assert.Equal(t, None, ByExtension("accounts.csv"))
	assert.Equal(t, None, ByExtension("accounts"))
}

func TestRoundTrip(t *testing.T) {
	payload := strings.Repeat("id,name,balance\n42,alice,10.5\n", 200)

	for _, algo := range []Algorithm{None, Gzip, Deflate, Zstd, S2} {
		t.Run(string(algo), func(t *testing.T) {
			var compressed bytes.Buffer
			w, err := NewWriter(&compressed, algo)
			require.NoError(t, err)
			_, err = io.WriteString(w, payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := NewReader(bytes.NewReader(compressed.Bytes()), algo)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())

			assert.Equal(t, payload, string(got))
		})
	}
}

func TestNewReader_BadGzipStream(t *testing.T) {
	_, err := NewReader(strings.NewReader("not gzip"), Gzip)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))
}

func TestUnknownAlgorithm(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewReader(&buf, Algorithm("lz4"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	_, err = NewWriter(&buf, Algorithm("lz4"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}
