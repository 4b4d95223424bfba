package ports

import "context"

// FileLister enumerates the resource files of a directory (e.g. VPN profiles).
type FileLister interface {
	// ListFiles returns the names (not paths) of the regular files in dir.
	ListFiles(ctx context.Context, dir string) ([]string, error)
}

// ConfigStore is a read-only view of the configuration.
// Keys are dotted paths, e.g. "vpn.dir" or "channels.music".
type ConfigStore interface {
	Get(key string) (any, bool)
}
