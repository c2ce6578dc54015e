// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against an embedded schema and
// encodes Go values back into CUE source.
//
// Decoding follows three steps: compile the schema, unify the user data with
// one of its definitions, then validate and decode into a Go value. Errors
// carry the file name and the JSON-path of every offending field.
//
// # Usage
//
//	//go:embed descriptor_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[Document](schema, data, "#Descriptors",
//	    cueutil.WithFilename(path))
//	if err != nil {
//	    return nil, err
//	}
//	return res.Value, nil
package cueutil
