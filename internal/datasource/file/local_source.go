// Package file implements a local filesystem-backed catalog source, used for
// offline runs and fixtures.
package file

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"paketetl/internal/parser"
	jsonparser "paketetl/internal/parser/json"
	"paketetl/pkg/records"
)

// Local reads catalogs from disk. The path is either one catalog file, "-"
// for stdin, or a directory holding one <endpoint>.json per endpoint.
type Local struct {
	path   string
	parser parser.Parser
}

// NewLocal returns a Local bound to path. A nil parser selects the JSON
// catalog parser with its default list keys.
func NewLocal(path string, p parser.Parser) *Local {
	if p == nil {
		p = jsonparser.Parser{}
	}
	return &Local{path: path, parser: p}
}

// Open opens the configured path for reading.
//
// A canceled context is reported without touching the filesystem. Errors
// keep the underlying cause for errors.Is checks (e.g. os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	return l.open(ctx, l.path)
}

// Fetch implements datasource.Source. The query is ignored.
func (l *Local) Fetch(ctx context.Context, endpoint string, _ url.Values) ([]records.Record, error) {
	path := l.path
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		name := strings.Trim(endpoint, "/")
		if name == "" {
			return nil, fmt.Errorf("file: endpoint required for directory %s", path)
		}
		path = filepath.Join(path, filepath.FromSlash(name)+".json")
	}

	rc, err := l.open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	recs, err := l.parser.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("file: decode %s: %w", path, err)
	}
	return recs, nil
}

func (l *Local) open(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
