package source

import (
	"context"

	"github.com/pkg/errors"
)

//go:generate mockgen -destination=mock_source.go -package=source . StatSource

var (
	// ErrStatsUnavailable means the engine declined to report statistics for
	// one object. It only affects that object in the current cycle.
	ErrStatsUnavailable = errors.New("stats unavailable")

	// ErrReconnectNeeded means the connection to the cluster was lost in the
	// middle of a cycle. The driver reconnects on its own, so the next cycle
	// may succeed.
	ErrReconnectNeeded = errors.New("connection to the cluster lost, reconnect needed")

	// ErrMalformedStats means a statistics reply did not have the expected
	// WiredTiger layout, e.g. another storage engine or a mongos reply. It
	// fails the whole cycle.
	ErrMalformedStats = errors.New("malformed cache statistics")
)

// ObjectKind tells storable objects apart from pseudo objects.
type ObjectKind int

const (
	KindRegular ObjectKind = iota
	KindView
	KindSystemInternal
)

func (k ObjectKind) String() string {
	switch k {
	case KindRegular:
		return "regular"
	case KindView:
		return "view"
	case KindSystemInternal:
		return "system"
	default:
		return "unknown"
	}
}

// InternalObjectPrefix is the name prefix of engine-internal objects.
const InternalObjectPrefix = "system."

type ObjectInfo struct {
	Name string
	Kind ObjectKind
}

type IndexStats struct {
	Name         string
	InCacheBytes int64
}

// ObjectStats is the cache residency of one object and of each of its
// secondary indexes. Indexes keep the order reported by the engine.
type ObjectStats struct {
	InCacheBytes int64
	Indexes      []IndexStats
}

// StatSource asks the engine for statistics. Every method is a read-only
// round-trip bounded by ctx.
type StatSource interface {
	ListDatabaseNames(ctx context.Context) ([]string, error)
	ListStorableObjects(ctx context.Context, database string) ([]ObjectInfo, error)
	// ObjectCacheStats returns ErrStatsUnavailable when the engine does not
	// support statistics for the object.
	ObjectCacheStats(ctx context.Context, database, object string) (ObjectStats, error)
	// ClusterCacheConfig returns the configured maximum cache size in bytes.
	ClusterCacheConfig(ctx context.Context) (int64, error)
}
