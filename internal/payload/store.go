package payload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ahmetkaya/modhost/internal/ctxlog"
)

// Store fetches payload blobs by their derived identifier. Implementations
// must be safe for concurrent use; multiple workers initialize in parallel.
type Store interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// DirStore serves payloads from a directory on the local filesystem.
// Identifiers are resolved relative to the root; the conventional "./"
// prefix on payload names is stripped before joining.
type DirStore struct {
	root string
}

// NewDirStore creates a DirStore rooted at dir.
func NewDirStore(dir string) (*DirStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("payload directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("payload path %s is not a directory", dir)
	}
	return &DirStore{root: dir}, nil
}

// Fetch reads the named payload. Path escapes out of the root are rejected
// so a malicious module identifier cannot read arbitrary files.
func (s *DirStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	logger := ctxlog.FromContext(ctx)

	rel := trimName(name)
	if rel == "" || strings.Contains(rel, "..") {
		return nil, fmt.Errorf("invalid payload name %q", name)
	}

	path := filepath.Join(s.root, filepath.FromSlash(rel))
	logger.Debug("Fetching payload from directory store.", "name", name, "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload %q: %w", name, err)
	}
	return data, nil
}

// trimName strips the conventional relative prefix from a payload name.
func trimName(name string) string {
	return strings.TrimPrefix(name, "./")
}
