package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/pingcap/cache-monitoring/database/docdb"

	"github.com/pingcap/log"
	"go.uber.org/zap"
)

const (
	cacheModule = "cache"
)

func LoadConfigFromStorage(ctx context.Context, db docdb.DocDB) error {
	cfgMap, err := db.LoadConfig(ctx)
	if err != nil {
		return err
	}
	UpdateGlobalConfig(func(curCfg Config) (res Config) {
		res = curCfg
		for module, cfgStr := range cfgMap {
			switch module {
			case cacheModule:
				newCfg := curCfg.Cache
				if err = json.NewDecoder(bytes.NewReader([]byte(cfgStr))).Decode(&newCfg); err != nil {
					return
				}
				if verr := newCfg.Valid(); verr == nil {
					res.Cache = newCfg
				} else {
					log.Info("load invalid config",
						zap.String("module", module),
						zap.Reflect("module-config", newCfg),
						zap.Error(verr))
				}
			default:
				err = fmt.Errorf("unknow module config in storage, module: %v, config: %v", module, cfgStr)
				return
			}
			log.Info("load config from storage",
				zap.String("module", module),
				zap.String("module-config", cfgStr),
				zap.Reflect("cache-config", res.Cache))
		}
		return
	})
	return err
}

func saveConfigIntoStorage(ctx context.Context, db docdb.DocDB) error {
	cfg := GetGlobalConfig()
	data, err := json.Marshal(cfg.Cache)
	if err != nil {
		return err
	}
	return db.SaveConfig(ctx, map[string]string{
		cacheModule: string(data),
	})
}
