// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/format"
)

// ParseResult holds a decoded value and the unified CUE value it came from.
type ParseResult[T any] struct {
	Value   *T
	Unified cue.Value
}

// ParseAndDecode unifies data with the schema definition at definition
// (for example "#Descriptors"), validates the result and decodes it into T.
// Decoding follows the json struct tags of T.
func ParseAndDecode[T any](schema, data []byte, definition string, opts ...Option) (*ParseResult[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return nil, err
	}

	// A fresh context per call: cue.Context is not safe for concurrent use.
	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema, cue.Filename("schema.cue"))
	if err := schemaValue.Err(); err != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", err)
	}
	root := schemaValue.LookupPath(cue.ParsePath(definition))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", definition, err)
	}

	userValue := ctx.CompileBytes(data, cue.Filename(o.filename))
	if err := userValue.Err(); err != nil {
		return nil, FormatError(err, o.filename)
	}

	unified := root.Unify(userValue)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return nil, FormatError(err, o.filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, o.filename)
	}
	return &ParseResult[T]{Value: &result, Unified: unified}, nil
}

// Marshal encodes v as formatted CUE source. Field names follow the json
// struct tags of v.
func Marshal(v any) ([]byte, error) {
	ctx := cuecontext.New()
	value := ctx.Encode(v)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("encode value as CUE: %w", err)
	}
	src, err := format.Node(value.Syntax(cue.Concrete(true)))
	if err != nil {
		return nil, fmt.Errorf("format CUE: %w", err)
	}
	return src, nil
}
