package utils

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// ErrEmptyArchive is returned when an archive holds no files.
var ErrEmptyArchive = errors.New("archive contains no files")

// LoadFile loads the given file and performs decompression if necessary.
// The decompressor is chosen from the file extension; archives (.zip, .7z)
// yield their first file.
func LoadFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	out, err := Decompress(filepath.Ext(filename), data)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", filename, err)
	}
	return out, nil
}

// Decompress decodes data according to ext, the extension including its
// leading dot. Unknown extensions are returned as is.
func Decompress(ext string, data []byte) ([]byte, error) {
	var decoder io.Reader
	var err error
	r := bytes.NewReader(data)

	switch strings.ToLower(ext) {
	case "", ".gb", ".gbc", ".bin", ".rom":
		return data, nil
	case ".gz":
		var gz *gzip.Reader
		if gz, err = gzip.NewReader(r); err == nil {
			defer gz.Close()
			decoder = gz
		}
	case ".xz":
		decoder, err = xz.NewReader(r)
	case ".br":
		decoder = brotli.NewReader(r)
	case ".lz4":
		decoder = lz4.NewReader(r)
	case ".zst":
		var zr *zstd.Decoder
		if zr, err = zstd.NewReader(r); err == nil {
			defer zr.Close()
			decoder = zr
		}
	case ".zip":
		var zipReader *zip.Reader
		if zipReader, err = zip.NewReader(r, int64(len(data))); err != nil {
			return nil, err
		}
		if len(zipReader.File) == 0 {
			return nil, ErrEmptyArchive
		}

		// read the first file in the zip file
		var rc io.ReadCloser
		if rc, err = zipReader.File[0].Open(); err != nil {
			return nil, err
		}
		defer rc.Close()
		decoder = rc
	case ".7z":
		var szReader *sevenzip.Reader
		if szReader, err = sevenzip.NewReader(r, int64(len(data))); err != nil {
			return nil, err
		}
		if len(szReader.File) == 0 {
			return nil, ErrEmptyArchive
		}

		// read the first file in the archive
		var rc io.ReadCloser
		if rc, err = szReader.File[0].Open(); err != nil {
			return nil, err
		}
		defer rc.Close()
		decoder = rc
	default:
		// return the data as is
		return data, nil
	}

	if err != nil {
		return nil, err
	}

	return io.ReadAll(decoder)
}
