package docdb

import (
	"context"
	"path"
	"time"

	"github.com/pingcap/cache-monitoring/utils"

	"github.com/dgraph-io/badger/v3"
	"github.com/genjidb/genji"
	"github.com/genjidb/genji/document"
	"github.com/genjidb/genji/engine/badgerengine"
	"github.com/genjidb/genji/types"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

var gcInterval = 10 * time.Minute

type GenjiConfig struct {
	Path     string
	LogPath  string
	LogLevel string
}

type genjiDB struct {
	db      *genji.DB
	closeCh chan struct{}
}

func NewGenjiDB(ctx context.Context, cfg *GenjiConfig) (DocDB, error) {
	dataPath := path.Join(cfg.Path, "docdb")
	opts := badger.DefaultOptions(dataPath).
		WithZSTDCompressionLevel(3).
		WithBlockSize(8 * 1024).
		WithValueThreshold(128 * 1024)
	if l, err := initLogger(cfg.LogPath, cfg.LogLevel); err == nil {
		opts = opts.WithLogger(l)
	} else {
		opts = opts.WithLogger(nil)
	}

	engine, err := badgerengine.NewEngine(opts)
	if err != nil {
		return nil, err
	}
	d := &genjiDB{closeCh: make(chan struct{})}
	d.db, err = genji.New(ctx, engine)
	if err != nil {
		return nil, err
	}
	if err := d.tryInitTables(); err != nil {
		_ = d.db.Close()
		return nil, err
	}
	go utils.GoWithRecovery(func() {
		doGCLoop(engine.DB, d.closeCh)
	}, nil)
	return d, nil
}

func NewGenjiDBFromGenji(g *genji.DB) (DocDB, error) {
	d := &genjiDB{db: g, closeCh: make(chan struct{})}
	if err := d.tryInitTables(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *genjiDB) tryInitTables() error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS cache_monitoring_config (module TEXT primary key, config TEXT)",
	}
	for _, stmt := range stmts {
		if err := d.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (d *genjiDB) Close() error {
	close(d.closeCh)
	return d.db.Close()
}

func (d *genjiDB) SaveConfig(ctx context.Context, cfg map[string]string) error {
	err := d.db.WithContext(ctx).Exec("DELETE FROM cache_monitoring_config")
	if err != nil {
		return err
	}
	for module, data := range cfg {
		err = d.db.WithContext(ctx).Exec("INSERT INTO cache_monitoring_config (module, config) VALUES (?, ?)", module, data)
		if err != nil {
			return err
		}
		log.Info("save config into storage", zap.String("module", module), zap.String("config", data))
	}
	return nil
}

func (d *genjiDB) LoadConfig(ctx context.Context) (map[string]string, error) {
	res, err := d.db.WithContext(ctx).Query("SELECT module, config FROM cache_monitoring_config")
	if err != nil {
		return nil, err
	}
	defer res.Close()
	cfgMap := make(map[string]string)
	err = res.Iterate(func(d types.Document) error {
		var module, cfg string
		err = document.Scan(d, &module, &cfg)
		if err != nil {
			return err
		}
		cfgMap[module] = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cfgMap, nil
}

func doGCLoop(db *badger.DB, closed chan struct{}) {
	log.Info("badger start to run value log gc loop")
	ticker := time.NewTicker(gcInterval)
	defer func() {
		ticker.Stop()
		log.Info("badger stop running value log gc loop")
	}()

	for {
		select {
		case <-ticker.C:
			runValueLogGC(db)
		case <-closed:
			return
		}
	}
}

func runValueLogGC(db *badger.DB) {
	// at most do 10 value log gc each time.
	for i := 0; i < 10; i++ {
		err := db.RunValueLogGC(0.1)
		if err != nil {
			if err == badger.ErrNoRewrite {
				log.Debug("badger has no value log need gc now")
			} else {
				log.Error("badger run value log gc failed", zap.Error(err))
			}
			return
		}
		log.Info("badger run value log gc success")
	}
}
