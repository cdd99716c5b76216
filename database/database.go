package database

import (
	"context"

	"github.com/pingcap/cache-monitoring/config"
	"github.com/pingcap/cache-monitoring/database/docdb"

	"github.com/pingcap/log"
	"go.uber.org/zap"
)

var documentDB docdb.DocDB

// Init opens the config store under the storage path. Failing to open it is
// fatal.
func Init(cfg *config.Config) docdb.DocDB {
	db, err := docdb.Open(context.Background(), cfg.Storage.DocDBBackend, cfg.Storage.Path, cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		log.Fatal("failed to open the document database",
			zap.String("path", cfg.Storage.Path),
			zap.String("backend", cfg.Storage.DocDBBackend),
			zap.Error(err))
	}
	documentDB = db

	log.Info("Initialize database successfully",
		zap.String("path", cfg.Storage.Path),
		zap.String("backend", cfg.Storage.DocDBBackend))
	return db
}

func Stop() {
	if documentDB == nil {
		return
	}
	log.Info("Stopping document database")
	if err := documentDB.Close(); err != nil {
		log.Error("failed to close the document database", zap.Error(err))
		return
	}
	documentDB = nil
	log.Info("Stop document database successfully")
}
