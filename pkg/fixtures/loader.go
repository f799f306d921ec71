package fixtures

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/xxh3"
	"gopkg.in/yaml.v3"
)

// fixtureFile - on-disk layout of a fixture registry file
type fixtureFile struct {
	Catalog    string                  `yaml:"catalog"`
	Indices    map[string]IndexFixture `yaml:"indices"`
	ProtoCases []TestCase              `yaml:"proto_cases"`
}

// Load reads a fixture registry from a YAML file. Files with a ".zst"
// suffix are decompressed first (large fixture sets ship compressed).
//
// expectedChecksum, when non-empty, is the xxh3 (64-bit, hex) of the
// decompressed file bytes; a mismatch aborts the load. This guards the
// expectation data itself, independent of the md5 digests it contains.
func Load(path string, expectedChecksum string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	if strings.HasSuffix(path, ".zst") {
		raw, err = decompress(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress fixture file %s: %w", path, err)
		}
	}

	if expectedChecksum != "" {
		actual := checksum(raw)
		if actual != expectedChecksum {
			return nil, fmt.Errorf("fixture file %s checksum mismatch: expected %s, got %s",
				path, expectedChecksum, actual)
		}
	}

	var file fixtureFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fixture file %s: %w", path, err)
	}

	return NewRegistry(file.Catalog, file.Indices, file.ProtoCases)
}

// decompress inflates a zstd-compressed fixture file.
func decompress(raw []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(raw, nil)
}

// checksum computes the hex-encoded xxh3 (64-bit) of data.
func checksum(data []byte) string {
	h := xxh3.Hash(data)
	var b [8]byte
	for i := 7; i >= 0; i-- {
		b[i] = byte(h)
		h >>= 8
	}
	return hex.EncodeToString(b[:])
}

// Checksum exposes the fixture-file checksum algorithm so tooling can stamp
// new fixture files.
func Checksum(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return checksum(data), nil
}
