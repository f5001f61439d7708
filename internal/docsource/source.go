// Package docsource discovers markdown files on disk and parses them into
// the engine's document model. It is the document service the engine
// consumes: the engine never touches the filesystem itself.
package docsource

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lawrencelj/mdsearch/pkg/config"
	"github.com/lawrencelj/mdsearch/pkg/document"
	apperrors "github.com/lawrencelj/mdsearch/pkg/errors"
	"github.com/lawrencelj/mdsearch/pkg/logger"
)

// Source loads markdown documents from a directory tree.
type Source struct {
	root        string
	extensions  map[string]bool
	ignore      []string
	maxFileSize int64
	logger      *slog.Logger
}

// New builds a source from configuration. Extension matching is
// case-insensitive and includes the leading dot.
func New(cfg config.SourceConfig) *Source {
	exts := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Source{
		root:        cfg.Root,
		extensions:  exts,
		ignore:      cfg.Ignore,
		maxFileSize: cfg.MaxFileSize,
		logger:      logger.WithComponent("docsource"),
	}
}

// Root returns the directory the source walks.
func (s *Source) Root() string {
	return s.root
}

// Load walks the source root and parses every matching file. Files that
// fail to load or parse are logged and skipped so one bad file cannot sink
// a whole corpus load; only walk-level failures propagate.
func (s *Source) Load(ctx context.Context) ([]document.Document, error) {
	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", s.root, err)
	}

	var docs []document.Document
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			// Unreadable entries are skipped, the walk continues.
			return nil
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			rel, _ := filepath.Rel(absRoot, path)
			if s.ignored(d.Name(), filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if !s.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, _ := filepath.Rel(absRoot, path)
		if s.ignored(d.Name(), filepath.ToSlash(rel)) {
			return nil
		}

		doc, err := s.LoadFile(path)
		if err != nil {
			s.logger.Warn("skipping document", "path", path, "error", err)
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("corpus loaded", "root", absRoot, "documents", len(docs))
	return docs, nil
}

// LoadFile reads and parses a single markdown file, returning typed errors
// for files the engine must not index.
func (s *Source) LoadFile(path string) (document.Document, error) {
	if !s.extensions[strings.ToLower(filepath.Ext(path))] {
		return document.Document{}, fmt.Errorf("%w: %s is not a markdown file", apperrors.ErrInvalidInput, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return document.Document{}, fmt.Errorf("%w: %s", apperrors.ErrDocumentNotFound, path)
		}
		return document.Document{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		return document.Document{}, fmt.Errorf("%w: %s is %d bytes, limit %d", apperrors.ErrDocumentTooLarge, path, info.Size(), s.maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return document.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(path, data, info.ModTime())
}

// ignored reports whether an entry should be pruned from the walk.
// Patterns match exact names, relative-path prefixes and globs.
func (s *Source) ignored(name, relPath string) bool {
	for _, p := range s.ignore {
		if name == p || strings.HasPrefix(relPath, p) {
			return true
		}
		if matched, _ := filepath.Match(p, relPath); matched {
			return true
		}
		if matched, _ := filepath.Match(p, name); matched {
			return true
		}
	}
	return false
}
