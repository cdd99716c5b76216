package docdb

import (
	"context"
	"fmt"
	"io"
)

// DocDB keeps the small amount of state that must survive a restart: the
// runtime-modified config. Cache samples are never written here.
type DocDB interface {
	io.Closer

	SaveConfig(ctx context.Context, cfg map[string]string) error
	LoadConfig(ctx context.Context) (map[string]string, error)
}

const (
	BackendSQLite = "sqlite"
	BackendGenji  = "genji"
)

// Open opens the DocDB of the given backend under dataPath.
func Open(ctx context.Context, backend, dataPath, logPath, logLevel string) (DocDB, error) {
	switch backend {
	case BackendSQLite:
		return NewSQLiteDB(dataPath, true)
	case BackendGenji:
		return NewGenjiDB(ctx, &GenjiConfig{
			Path:     dataPath,
			LogPath:  logPath,
			LogLevel: logLevel,
		})
	default:
		return nil, fmt.Errorf("unknown docdb backend %q", backend)
	}
}
