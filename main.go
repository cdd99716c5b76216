package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"

	"github.com/pingcap/cache-monitoring/component/cachestat"
	"github.com/pingcap/cache-monitoring/component/cachestat/presenter"
	"github.com/pingcap/cache-monitoring/component/cachestat/scrape"
	"github.com/pingcap/cache-monitoring/component/cachestat/source"
	"github.com/pingcap/cache-monitoring/component/domain"
	"github.com/pingcap/cache-monitoring/config"
	"github.com/pingcap/cache-monitoring/database"
	"github.com/pingcap/cache-monitoring/service"
	"github.com/pingcap/cache-monitoring/utils/printer"

	"github.com/VictoriaMetrics/VictoriaMetrics/lib/procutil"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	nmVersion          = "version"
	nmAddr             = "address"
	nmMongoURI         = "mongo.uri"
	nmLogPath          = "log.path"
	nmLogLevel         = "log.level"
	nmConfig           = "config"
	nmStoragePath      = "storage.path"
	nmCacheInterval    = "cache.interval"
	nmCacheDenominator = "cache.denominator"

	envMongoURI = "MONGODB_URI"
)

var (
	version          = pflag.BoolP(nmVersion, "V", false, "print version information and exit")
	listenAddr       = pflag.String(nmAddr, "", "TCP address to listen for http connections")
	mongoURI         = pflag.String(nmMongoURI, "", "MongoDB connection string, also accepted as the first argument or through $"+envMongoURI)
	logPath          = pflag.String(nmLogPath, "", "Log path of cache-monitoring server")
	logLevel         = pflag.String(nmLogLevel, "", "Log level of cache-monitoring server")
	configPath       = pflag.String(nmConfig, "", "config file path")
	storagePath      = pflag.String(nmStoragePath, "", "Storage path of cache-monitoring server")
	cacheInterval    = pflag.Int(nmCacheInterval, 0, "Seconds between two cache statistics cycles")
	cacheDenominator = pflag.String(nmCacheDenominator, "", "Denominator of the reported shares, used_sum or configured_total")
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [mongodb-uri]\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *version {
		fmt.Println(printer.GetCMInfo())
		os.Exit(0)
	}

	cfg, err := config.InitConfig(*configPath, func(cfg *config.Config) {
		overrideConfig(cfg, pflag.CommandLine, os.LookupEnv)
	})
	if err != nil {
		stdlog.Fatalf("Failed to initialize config, err: %s", err.Error())
	}

	mustCreateDirs(cfg)

	cfg.Log.InitDefaultLogger()
	printer.PrintCMInfo()
	log.Info("config", zap.Any("config", cfg))

	docDB := database.Init(cfg)
	defer database.Stop()

	err = config.LoadConfigFromStorage(context.Background(), docDB)
	if err != nil {
		stdlog.Fatalf("Failed to load config from storage, err: %s", err.Error())
	}
	config.UpdateGlobalConfig(func(curCfg config.Config) config.Config {
		overrideCacheConfig(&curCfg.Cache, pflag.CommandLine)
		return curCfg
	})

	do, err := domain.NewDomain(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to connect to the cluster", zap.Error(err))
	}
	defer do.Close()

	latest := presenter.NewLatest()
	p := presenter.Multi(
		latest,
		presenter.NewMetrics(prometheus.DefaultRegisterer),
		presenter.NewLogger(log.L()),
	)
	manager := scrape.NewManager(cachestat.NewPipeline(source.NewMongoSource(do.Client())), p)
	manager.Start()
	defer manager.Close()

	service.Init(cfg, docDB, latest, manager)
	defer service.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go config.ReloadRoutine(ctx, *configPath)

	sig := procutil.WaitForSigterm()
	log.Info("received signal", zap.String("sig", sig.String()))
}

// overrideConfig applies the command line on top of the config file. The
// connection string is taken from, by priority: --mongo.uri, the first
// positional argument, $MONGODB_URI, the config file.
func overrideConfig(config *config.Config, fs *pflag.FlagSet, lookupEnv func(string) (string, bool)) {
	if uri, ok := lookupEnv(envMongoURI); ok && uri != "" {
		config.Mongo.URI = uri
	}
	if fs.NArg() > 0 {
		config.Mongo.URI = fs.Arg(0)
	}

	fs.Visit(func(f *pflag.Flag) {
		value := f.Value.String()
		switch f.Name {
		case nmAddr:
			config.Address = value
		case nmMongoURI:
			config.Mongo.URI = value
		case nmLogPath:
			config.Log.Path = value
		case nmLogLevel:
			config.Log.Level = value
		case nmStoragePath:
			config.Storage.Path = value
		}
	})
	overrideCacheConfig(&config.Cache, fs)
}

// overrideCacheConfig applies the [cache] flags. It runs again after the
// persisted [cache] section is loaded so that flags given on the command
// line win over it.
func overrideCacheConfig(cache *config.Cache, fs *pflag.FlagSet) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case nmCacheInterval:
			if interval, err := fs.GetInt(nmCacheInterval); err == nil {
				cache.IntervalSeconds = interval
			}
		case nmCacheDenominator:
			cache.Denominator = f.Value.String()
		}
	})
}

func mustCreateDirs(config *config.Config) {
	if config.Log.Path != "" {
		if err := os.MkdirAll(config.Log.Path, os.ModePerm); err != nil {
			stdlog.Fatalf("failed to init log path, err: %s", err.Error())
		}
	}

	if err := os.MkdirAll(config.Storage.Path, os.ModePerm); err != nil {
		stdlog.Fatalf("failed to init storage path, err: %s", err.Error())
	}
}
