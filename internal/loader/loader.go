// SPDX-License-Identifier: MPL-2.0

// Package loader reads module and target descriptors from files and
// registers them into a store.
//
// Every supported format decodes into the same Document shape: a list of
// modules and a list of targets. The format is chosen by file extension:
// .cue, .toml, .yaml/.yml and .hcl. Directories are searched recursively and
// files are always processed in sorted path order, so duplicate-name errors
// are reproducible.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/modgraph/modgraph/internal/store"
	"github.com/modgraph/modgraph/pkg/cueutil"
	"github.com/modgraph/modgraph/pkg/descriptor"
	"github.com/modgraph/modgraph/pkg/fspath"
	"github.com/modgraph/modgraph/pkg/types"
)

var (
	// ErrNoDescriptors is returned when discovery finds no descriptor files.
	ErrNoDescriptors = errors.New("no descriptor files found")

	// ErrUnsupportedFormat is returned for an explicitly named file whose
	// extension has no decoder.
	ErrUnsupportedFormat = errors.New("unsupported descriptor format")

	// ErrParse is the sentinel wrapped by ParseError.
	ErrParse = errors.New("failed to parse descriptor file")
)

type (
	// Document is the decoded content of one descriptor file.
	Document struct {
		Modules []descriptor.ModuleDescriptor `json:"modules,omitempty" yaml:"modules,omitempty" toml:"modules,omitempty"`
		Targets []descriptor.TargetDescriptor `json:"targets,omitempty" yaml:"targets,omitempty" toml:"targets,omitempty"`
	}

	// ParseError reports a file that could not be decoded.
	ParseError struct {
		Path   string
		Format Format
		Err    error
	}

	// Summary describes what LoadInto registered.
	Summary struct {
		Files   []string
		Modules int
		Targets int
	}

	// Loader discovers and decodes descriptor files.
	Loader struct {
		logger      *slog.Logger
		maxFileSize int64
	}

	// Option configures a Loader.
	Option func(*Loader)
)

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s descriptor %s: %v", e.Format, e.Path, e.Err)
}

// Unwrap exposes the sentinel and the decoder error.
func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// WithLogger sets the logger for discovery and load messages.
func WithLogger(l *slog.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithMaxFileSize caps the size of a single descriptor file.
func WithMaxFileSize(n int64) Option {
	return func(ld *Loader) {
		if n > 0 {
			ld.maxFileSize = n
		}
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{logger: slog.Default(), maxFileSize: cueutil.DefaultMaxFileSize}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Discover expands paths into descriptor files. A directory is walked
// recursively, skipping hidden directories and files with unknown
// extensions; a file named explicitly must have a supported extension.
// The result is sorted and free of duplicates.
func (l *Loader) Discover(paths ...types.FilesystemPath) ([]string, error) {
	var files []string
	for _, p := range paths {
		if ok, errs := p.IsValid(); !ok {
			return nil, errors.Join(errs...)
		}
		root := fspath.Clean(p).String()
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("descriptor path %s: %w", root, err)
		}
		if !info.IsDir() {
			if _, ok := FormatFor(root); !ok {
				return nil, fmt.Errorf("%s: %w (supported: %s)", root, ErrUnsupportedFormat, strings.Join(Extensions(), ", "))
			}
			files = append(files, root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if _, ok := FormatFor(path); ok {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk descriptor directory %s: %w", root, err)
		}
	}

	slices.Sort(files)
	files = slices.Compact(files)
	if len(files) == 0 {
		return nil, ErrNoDescriptors
	}
	return files, nil
}

// LoadFile decodes one descriptor file and stamps every descriptor with its
// source path.
func (l *Loader) LoadFile(path string) (*Document, error) {
	format, ok := FormatFor(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > l.maxFileSize {
		return nil, &ParseError{Path: path, Format: format,
			Err: fmt.Errorf("file size %d bytes exceeds maximum %d bytes", info.Size(), l.maxFileSize)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Decode(format, path, data)
	if err != nil {
		return nil, err
	}
	for i := range doc.Modules {
		doc.Modules[i].Source = path
	}
	for i := range doc.Targets {
		doc.Targets[i].Source = path
	}
	l.logger.Debug("decoded descriptor file", "path", path, "format", format, "modules", len(doc.Modules), "targets", len(doc.Targets))
	return doc, nil
}

// LoadInto discovers every descriptor file under paths and registers its
// content into s in sorted file order, modules before targets within a file.
// It stops at the first error. The store is left open.
func (l *Loader) LoadInto(ctx context.Context, s *store.Store, paths ...types.FilesystemPath) (Summary, error) {
	files, err := l.Discover(paths...)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Files: files}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		doc, err := l.LoadFile(file)
		if err != nil {
			return sum, err
		}
		for _, m := range doc.Modules {
			if err := s.RegisterModule(m); err != nil {
				return sum, err
			}
			sum.Modules++
		}
		for _, t := range doc.Targets {
			if err := s.RegisterTarget(t); err != nil {
				return sum, err
			}
			sum.Targets++
		}
	}
	l.logger.Info("loaded descriptors", "files", len(files), "modules", sum.Modules, "targets", sum.Targets)
	return sum, nil
}
