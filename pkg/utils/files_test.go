package utils

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

var testROM = []byte{0x3E, 0xAA, 0x06, 0xBB, 0x76}

func compress(t *testing.T, ext string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error

	switch ext {
	case ".gz":
		w = gzip.NewWriter(&buf)
	case ".xz":
		w, err = xz.NewWriter(&buf)
	case ".br":
		w = brotli.NewWriter(&buf)
	case ".zst":
		w, err = zstd.NewWriter(&buf)
	case ".lz4":
		w = lz4.NewWriter(&buf)
	case ".zip":
		zw := zip.NewWriter(&buf)
		f, err := zw.Create("test.gb")
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		return buf.Bytes()
	default:
		t.Fatalf("no compressor for %s", ext)
	}
	require.NoError(t, err)

	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("raw", func(t *testing.T) {
		for _, name := range []string{"test.gb", "test.gbc", "test.bin", "test"} {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, testROM, 0o644))

			data, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, testROM, data, name)
		}
	})

	for _, ext := range []string{".gz", ".xz", ".br", ".zst", ".lz4", ".zip"} {
		ext := ext
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "test.gb"+ext)
			require.NoError(t, os.WriteFile(path, compress(t, ext, testROM), 0o644))

			data, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, testROM, data)
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "missing.gb"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("corrupt", func(t *testing.T) {
		path := filepath.Join(dir, "corrupt.gz")
		require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0o644))

		_, err := LoadFile(path)
		assert.Error(t, err)
	})
}

func TestDecompress_EmptyZip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, zip.NewWriter(&buf).Close())

	_, err := Decompress(".zip", buf.Bytes())
	assert.ErrorIs(t, err, ErrEmptyArchive)
}

func TestDecompress_UnknownExtension(t *testing.T) {
	data, err := Decompress(".sav", testROM)
	require.NoError(t, err)
	assert.Equal(t, testROM, data)
}
