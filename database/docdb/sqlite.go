package docdb

import (
	"context"
	"database/sql"
	"path"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

type sqliteDB struct {
	db *sql.DB
}

func NewSQLiteDB(dbPath string, useWAL bool) (DocDB, error) {
	dbPath = path.Join(dbPath, "cm-sqlite.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if useWAL {
		_, err := db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	d := &sqliteDB{db: db}
	if err := d.tryInitTables(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func (d *sqliteDB) tryInitTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cache_monitoring_config (module TEXT primary key, config TEXT)`,
	}
	for _, stmt := range stmts {
		if _, err := d.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (d *sqliteDB) Close() error {
	return d.db.Close()
}

func (d *sqliteDB) SaveConfig(ctx context.Context, cfg map[string]string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM cache_monitoring_config`); err != nil {
		return err
	}
	for module, data := range cfg {
		_, err = tx.ExecContext(ctx, "INSERT INTO cache_monitoring_config (module, config) VALUES (?, ?)", module, data)
		if err != nil {
			return err
		}
		log.Info("save config into storage", zap.String("module", module), zap.String("config", data))
	}
	return tx.Commit()
}

func (d *sqliteDB) LoadConfig(ctx context.Context) (map[string]string, error) {
	res, err := d.db.QueryContext(ctx, `SELECT module, config FROM cache_monitoring_config`)
	if err != nil {
		return nil, err
	}
	defer res.Close()
	cfgMap := make(map[string]string)
	for res.Next() {
		var module, config string
		if err := res.Scan(&module, &config); err != nil {
			return nil, err
		}
		cfgMap[module] = config
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return cfgMap, nil
}
