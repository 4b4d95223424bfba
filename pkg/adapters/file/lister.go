package file

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/aretw0/hearth/pkg/domain"
)

// Lister implements ports.FileLister over the local filesystem.
type Lister struct{}

// NewLister creates a filesystem lister.
func NewLister() *Lister {
	return &Lister{}
}

// ListFiles returns the names of the regular files directly under dir,
// sorted. Failures wrap domain.ErrLookup.
func (l *Lister) ListFiles(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLookup, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
