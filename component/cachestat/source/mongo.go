package source

import (
	"context"
	"sort"
	"strings"

	"github.com/pingcap/log"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
	"go.uber.org/zap"
)

const (
	codeNamespaceNotFound          = 26
	codeCommandNotSupportedOnView  = 166
	statsNotSupportedOnViewMessage = "Collection stats not supported on views"

	bytesInCacheField       = "bytes currently in the cache"
	maxBytesConfiguredField = "maximum bytes configured"

	adminDatabase = "admin"
)

type mongoSource struct {
	client *mongo.Client
}

// NewMongoSource reads statistics from a MongoDB cluster running the
// WiredTiger storage engine. Listings are sorted by name so that the
// enumeration order only depends on the cluster state.
func NewMongoSource(client *mongo.Client) StatSource {
	return &mongoSource{client: client}
}

func (s *mongoSource) ListDatabaseNames(ctx context.Context) ([]string, error) {
	names, err := s.client.ListDatabaseNames(ctx, bson.D{}, options.ListDatabases().SetNameOnly(true))
	if err != nil {
		return nil, wrapCallError(err, "list databases")
	}
	sort.Strings(names)
	return names, nil
}

func (s *mongoSource) ListStorableObjects(ctx context.Context, database string) ([]ObjectInfo, error) {
	specs, err := s.client.Database(database).ListCollectionSpecifications(ctx, bson.D{}, options.ListCollections().SetNameOnly(true))
	if err != nil {
		return nil, wrapCallError(err, "list collections of "+database)
	}
	objects := make([]ObjectInfo, 0, len(specs))
	for _, spec := range specs {
		objects = append(objects, ObjectInfo{
			Name: spec.Name,
			Kind: objectKind(spec.Name, spec.Type),
		})
	}
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].Name < objects[j].Name
	})
	return objects, nil
}

func objectKind(name, typ string) ObjectKind {
	if typ == "view" {
		return KindView
	}
	if strings.HasPrefix(name, InternalObjectPrefix) {
		return KindSystemInternal
	}
	return KindRegular
}

func (s *mongoSource) ObjectCacheStats(ctx context.Context, database, object string) (ObjectStats, error) {
	raw, err := s.client.Database(database).RunCommand(ctx, bson.D{{Key: "collStats", Value: object}}).Raw()
	if err != nil {
		if isStatsUnsupported(err) {
			log.Debug("collection stats not supported",
				zap.String("database", database),
				zap.String("object", object),
				zap.Error(err))
			return ObjectStats{}, errors.Wrapf(ErrStatsUnavailable, "%s.%s: %v", database, object, err)
		}
		return ObjectStats{}, wrapCallError(err, "collStats "+database+"."+object)
	}
	return decodeObjectStats(database, object, raw)
}

func decodeObjectStats(database, object string, raw bson.Raw) (ObjectStats, error) {
	stats, err := parseObjectStats(raw)
	if err != nil {
		return ObjectStats{}, errors.Wrapf(ErrMalformedStats, "collStats %s.%s: %v", database, object, err)
	}
	return stats, nil
}

func (s *mongoSource) ClusterCacheConfig(ctx context.Context) (int64, error) {
	raw, err := s.client.Database(adminDatabase).RunCommand(ctx, bson.D{{Key: "serverStatus", Value: 1}}).Raw()
	if err != nil {
		return 0, wrapCallError(err, "serverStatus")
	}
	return parseCacheConfig(raw)
}

// parseObjectStats extracts the cache residency from a collStats reply:
//
//	wiredTiger.cache["bytes currently in the cache"]
//	indexDetails.<index>.cache["bytes currently in the cache"]
func parseObjectStats(raw bson.Raw) (ObjectStats, error) {
	var stats ObjectStats
	val, err := raw.LookupErr("wiredTiger", "cache", bytesInCacheField)
	if err != nil {
		return stats, errors.Errorf("missing wiredTiger cache statistics")
	}
	if stats.InCacheBytes, err = byteCount(val); err != nil {
		return stats, err
	}

	details, err := raw.LookupErr("indexDetails")
	if err != nil {
		return stats, nil
	}
	doc, ok := details.DocumentOK()
	if !ok {
		return stats, errors.Errorf("unexpected indexDetails type %v", details.Type)
	}
	elems, err := doc.Elements()
	if err != nil {
		return stats, err
	}
	stats.Indexes = make([]IndexStats, 0, len(elems))
	for _, elem := range elems {
		indexDoc, ok := elem.Value().DocumentOK()
		if !ok {
			return stats, errors.Errorf("unexpected details type %v of index %s", elem.Value().Type, elem.Key())
		}
		val, err := indexDoc.LookupErr("cache", bytesInCacheField)
		if err != nil {
			return stats, errors.Errorf("missing cache statistics of index %s", elem.Key())
		}
		n, err := byteCount(val)
		if err != nil {
			return stats, err
		}
		stats.Indexes = append(stats.Indexes, IndexStats{Name: elem.Key(), InCacheBytes: n})
	}
	return stats, nil
}

func parseCacheConfig(raw bson.Raw) (int64, error) {
	val, err := raw.LookupErr("wiredTiger", "cache", maxBytesConfiguredField)
	if err != nil {
		return 0, errors.Wrap(ErrMalformedStats, "serverStatus has no wiredTiger cache section, is the storage engine WiredTiger?")
	}
	n, err := byteCount(val)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedStats, "serverStatus: %v", err)
	}
	return n, nil
}

// byteCount converts a numeric statistic to bytes. The engine reports
// counters as int32, int64 or double depending on the value and version.
func byteCount(val bson.RawValue) (int64, error) {
	var n int64
	switch val.Type {
	case bsontype.Int32:
		n = int64(val.Int32())
	case bsontype.Int64:
		n = val.Int64()
	case bsontype.Double:
		n = int64(val.Double())
	default:
		return 0, errors.Errorf("unexpected byte count type %v", val.Type)
	}
	if n < 0 {
		return 0, errors.Errorf("negative byte count %d", n)
	}
	return n, nil
}

func isStatsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	switch cmdErr.Code {
	case codeCommandNotSupportedOnView, codeNamespaceNotFound:
		return true
	}
	return strings.Contains(cmdErr.Message, statsNotSupportedOnViewMessage)
}

func wrapCallError(err error, op string) error {
	if mongo.IsNetworkError(err) || errors.Is(err, mongo.ErrClientDisconnected) || isServerSelectionError(err) {
		return errors.Wrapf(ErrReconnectNeeded, "%s: %v", op, err)
	}
	return errors.Wrap(err, op)
}

func isServerSelectionError(err error) bool {
	var selErr topology.ServerSelectionError
	return errors.As(err, &selErr) || errors.Is(err, topology.ErrServerSelectionTimeout)
}
