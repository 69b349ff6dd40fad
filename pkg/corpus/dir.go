package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zpam/zbayes/pkg/email"
)

// DirSource reads training samples from one directory per class
type DirSource struct {
	dirs       map[Class]string
	extensions map[string]bool
	parser     *email.Parser
}

// DirOption configures a DirSource
type DirOption func(*DirSource)

// WithExtensions restricts the source to files with the given extensions
// (".txt", ".eml"). Use "" to match files without an extension.
func WithExtensions(exts ...string) DirOption {
	return func(s *DirSource) {
		if len(exts) == 0 {
			return
		}
		s.extensions = make(map[string]bool, len(exts))
		for _, ext := range exts {
			s.extensions[strings.ToLower(ext)] = true
		}
	}
}

// WithEmailParsing strips RFC 5322 headers so only subject and body are tokenized
func WithEmailParsing() DirOption {
	return func(s *DirSource) {
		s.parser = email.NewParser()
	}
}

// NewDirSource creates a source reading spam samples from spamDir and ham samples from hamDir
func NewDirSource(spamDir, hamDir string, opts ...DirOption) *DirSource {
	s := &DirSource{dirs: map[Class]string{Spam: spamDir, Ham: hamDir}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Documents walks the class directory in lexical order. Files are not read here.
func (s *DirSource) Documents(ctx context.Context, class Class) ([]Document, error) {
	if _, err := ParseClass(string(class)); err != nil {
		return nil, err
	}

	dir := s.dirs[class]
	if dir == "" {
		return nil, nil
	}

	var docs []Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if s.extensions != nil && !s.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		docs = append(docs, &fileDocument{path: path, parser: s.parser})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s samples in %s: %w", class, dir, err)
	}

	return docs, nil
}

type fileDocument struct {
	path   string
	parser *email.Parser
}

func (d *fileDocument) Name() string { return d.path }

func (d *fileDocument) Read() ([]byte, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, err
	}
	if d.parser == nil {
		return data, nil
	}

	msg, err := d.parser.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	return []byte(msg.Text()), nil
}
