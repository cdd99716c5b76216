package service

import (
	"net"

	cachehttp "github.com/pingcap/cache-monitoring/component/cachestat/http"
	"github.com/pingcap/cache-monitoring/component/cachestat/presenter"
	"github.com/pingcap/cache-monitoring/config"
	"github.com/pingcap/cache-monitoring/database/docdb"
	"github.com/pingcap/cache-monitoring/service/http"
	"github.com/pingcap/cache-monitoring/utils"

	"github.com/pingcap/log"
	"go.uber.org/zap"
)

func Init(cfg *config.Config, docDB docdb.DocDB, latest *presenter.Latest, status cachehttp.CycleStatusGetter) {
	listener, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		log.Fatal("failed to listen",
			zap.String("address", cfg.Address),
			zap.Error(err),
		)
	}

	go utils.GoWithRecovery(func() {
		http.ServeHTTP(&cfg.Log, listener, docDB, latest, status)
	}, nil)

	log.Info(
		"starting http service",
		zap.String("address", cfg.Address),
	)
}

func Stop() {
	log.Info("shutting down http service")
	http.StopHTTP()
}
