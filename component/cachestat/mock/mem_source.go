package mock

import (
	"context"
	"sync"

	"github.com/pingcap/cache-monitoring/component/cachestat/source"

	"github.com/pkg/errors"
)

var _ source.StatSource = &MemSource{}

type Object struct {
	Name  string
	Kind  source.ObjectKind
	Stats source.ObjectStats
	// Unavailable makes ObjectCacheStats fail with source.ErrStatsUnavailable.
	Unavailable bool
}

type Database struct {
	Name    string
	Objects []Object
}

// MemSource is an in-memory cluster. Databases and objects are listed in
// insertion order.
type MemSource struct {
	sync.Mutex

	Databases       []Database
	TotalConfigured int64

	// Err, when set, is returned by every call.
	Err error
	// StatsCalls counts ObjectCacheStats calls per "{db}.{object}".
	StatsCalls map[string]int
}

func NewMemSource(totalConfigured int64) *MemSource {
	return &MemSource{
		TotalConfigured: totalConfigured,
		StatsCalls:      make(map[string]int),
	}
}

// AddObject adds an object, creating its database when needed.
func (m *MemSource) AddObject(database string, obj Object) *MemSource {
	m.Lock()
	defer m.Unlock()
	for i := range m.Databases {
		if m.Databases[i].Name == database {
			m.Databases[i].Objects = append(m.Databases[i].Objects, obj)
			return m
		}
	}
	m.Databases = append(m.Databases, Database{Name: database, Objects: []Object{obj}})
	return m
}

// AddDatabase adds a database without any object.
func (m *MemSource) AddDatabase(database string) *MemSource {
	m.Lock()
	defer m.Unlock()
	m.Databases = append(m.Databases, Database{Name: database})
	return m
}

func (m *MemSource) SetErr(err error) {
	m.Lock()
	defer m.Unlock()
	m.Err = err
}

func (m *MemSource) GetStatsCalls(label string) int {
	m.Lock()
	defer m.Unlock()
	return m.StatsCalls[label]
}

func (m *MemSource) ListDatabaseNames(ctx context.Context) ([]string, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(m.Databases))
	for _, db := range m.Databases {
		names = append(names, db.Name)
	}
	return names, nil
}

func (m *MemSource) ListStorableObjects(ctx context.Context, database string) ([]source.ObjectInfo, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	db := m.findDatabase(database)
	if db == nil {
		return nil, nil
	}
	objects := make([]source.ObjectInfo, 0, len(db.Objects))
	for _, obj := range db.Objects {
		objects = append(objects, source.ObjectInfo{Name: obj.Name, Kind: obj.Kind})
	}
	return objects, nil
}

func (m *MemSource) ObjectCacheStats(ctx context.Context, database, object string) (source.ObjectStats, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.check(ctx); err != nil {
		return source.ObjectStats{}, err
	}
	m.StatsCalls[database+"."+object]++
	db := m.findDatabase(database)
	if db == nil {
		return source.ObjectStats{}, errors.Wrapf(source.ErrStatsUnavailable, "database %s not found", database)
	}
	for _, obj := range db.Objects {
		if obj.Name != object {
			continue
		}
		if obj.Unavailable || obj.Kind == source.KindView {
			return source.ObjectStats{}, errors.Wrapf(source.ErrStatsUnavailable, "%s.%s", database, object)
		}
		stats := obj.Stats
		stats.Indexes = append([]source.IndexStats(nil), obj.Stats.Indexes...)
		return stats, nil
	}
	return source.ObjectStats{}, errors.Wrapf(source.ErrStatsUnavailable, "%s.%s not found", database, object)
}

func (m *MemSource) ClusterCacheConfig(ctx context.Context) (int64, error) {
	m.Lock()
	defer m.Unlock()
	if err := m.check(ctx); err != nil {
		return 0, err
	}
	return m.TotalConfigured, nil
}

func (m *MemSource) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Err
}

func (m *MemSource) findDatabase(name string) *Database {
	for i := range m.Databases {
		if m.Databases[i].Name == name {
			return &m.Databases[i]
		}
	}
	return nil
}
