package cachestat

import (
	"context"
	"strings"

	"github.com/pingcap/cache-monitoring/component/cachestat/source"
)

// Enumerate walks every database and every object in it, calling fn for
// each object that should be sampled. Views and internal objects are
// skipped. The walk stops at the first error, either from src or from fn.
func Enumerate(ctx context.Context, src source.StatSource, fn func(ref StorableObjectRef) error) error {
	databases, err := src.ListDatabaseNames(ctx)
	if err != nil {
		return err
	}
	for _, database := range databases {
		objects, err := src.ListStorableObjects(ctx, database)
		if err != nil {
			return err
		}
		for _, obj := range objects {
			if skipObject(obj) {
				continue
			}
			ref := StorableObjectRef{Database: database, Name: obj.Name, Kind: obj.Kind}
			if err := fn(ref); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipObject(obj source.ObjectInfo) bool {
	if obj.Kind == source.KindView {
		return true
	}
	return obj.Kind == source.KindSystemInternal || strings.HasPrefix(obj.Name, source.InternalObjectPrefix)
}

// ListObjects returns every object Enumerate would visit, in the same order.
func ListObjects(ctx context.Context, src source.StatSource) ([]StorableObjectRef, error) {
	var refs []StorableObjectRef
	err := Enumerate(ctx, src, func(ref StorableObjectRef) error {
		refs = append(refs, ref)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}
