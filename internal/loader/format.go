// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/modgraph/modgraph/pkg/cueutil"
)

const (
	FormatCUE  Format = "cue"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

//go:embed descriptor_schema.cue
var descriptorSchema []byte

// Format is a descriptor file syntax.
type Format string

var formatsByExt = map[string]Format{
	".cue":  FormatCUE,
	".toml": FormatTOML,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".hcl":  FormatHCL,
}

func (f Format) String() string { return string(f) }

// FormatFor returns the format implied by path's extension.
func FormatFor(path string) (Format, bool) {
	f, ok := formatsByExt[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// Extensions returns the recognized descriptor file extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(formatsByExt))
	for ext := range formatsByExt {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Decode parses data in the given format. Every decoder rejects unknown
// fields. path is used in error messages only.
func Decode(format Format, path string, data []byte) (*Document, error) {
	var (
		doc *Document
		err error
	)
	switch format {
	case FormatCUE:
		doc, err = decodeCUE(path, data)
	case FormatTOML:
		doc, err = decodeTOML(data)
	case FormatYAML:
		doc, err = decodeYAML(data)
	case FormatHCL:
		doc, err = decodeHCL(path, data)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, &ParseError{Path: path, Format: format, Err: err}
	}
	return doc, nil
}

func decodeCUE(path string, data []byte) (*Document, error) {
	res, err := cueutil.ParseAndDecode[Document](descriptorSchema, data, "#Descriptors", cueutil.WithFilename(path))
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

func decodeTOML(data []byte) (*Document, error) {
	var doc Document
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, errors.New(strict.String())
		}
		return nil, err
	}
	return &doc, nil
}

// decodeYAML merges every document of a "---" separated stream, in order.
func decodeYAML(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	for i := 1; ; i++ {
		var part Document
		err := dec.Decode(&part)
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		if err != nil {
			if i > 1 {
				return nil, fmt.Errorf("document %d: %w", i, err)
			}
			return nil, err
		}
		doc.Modules = append(doc.Modules, part.Modules...)
		doc.Targets = append(doc.Targets, part.Targets...)
	}
}
