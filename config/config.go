package config

import (
	"context"
	"crypto/tls"
	"fmt"
	stdlog "log"
	"net"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/VictoriaMetrics/VictoriaMetrics/lib/procutil"
	"github.com/pingcap/log"
	"go.etcd.io/etcd/client/pkg/v3/transport"
	"go.uber.org/zap"
)

type Config struct {
	Address  string   `toml:"address" json:"address"`
	Mongo    Mongo    `toml:"mongo" json:"mongo"`
	Log      Log      `toml:"log" json:"log"`
	Storage  Storage  `toml:"storage" json:"storage"`
	Cache    Cache    `toml:"cache" json:"cache"`
	Security Security `toml:"security" json:"security"`
}

var defaultConfig = Config{
	Address: "0.0.0.0:12021",
	Mongo: Mongo{
		ConnectTimeoutSeconds: 10,
	},
	Log: Log{
		Path:  "", // default output is stdout
		Level: "INFO",
	},
	Storage: Storage{
		Path:         "data",
		DocDBBackend: DocDBBackendSQLite,
	},
	Cache: Cache{
		IntervalSeconds: 60,
		TimeoutSeconds:  30,
		Denominator:     DenominatorUsedSum,
		Concurrency:     1,
	},
}

func GetDefaultConfig() Config {
	return defaultConfig
}

type Subscriber = chan GetLatestConfig
type GetLatestConfig = func() Config

var (
	globalConfigMutex sync.Mutex
	globalConfig      = defaultConfig

	subscribersMutex        sync.Mutex
	configChangeSubscribers []Subscriber
)

// Subscribe returns a channel that receives a config getter every
// time the config is changed. By calling the getter, you can get
// the latest config.
//
// There will be one getter in the channel after subscribing. It
// can be used to get the current config immediately as follows.
// ```go
// cfgSubscriber := config.Subscribe()
// getCurrentCfg := <-cfgSubscriber
// currentCfg := getCurrentCfg()
// ```
func Subscribe() Subscriber {
	subscribersMutex.Lock()
	defer subscribersMutex.Unlock()

	ch := make(chan GetLatestConfig, 1)
	configChangeSubscribers = append(configChangeSubscribers, ch)
	ch <- GetGlobalConfig
	return ch
}

// Unsubscribe stops delivering config changes to ch.
func Unsubscribe(ch Subscriber) {
	subscribersMutex.Lock()
	defer subscribersMutex.Unlock()

	for i, sub := range configChangeSubscribers {
		if sub == ch {
			configChangeSubscribers = append(configChangeSubscribers[:i], configChangeSubscribers[i+1:]...)
			return
		}
	}
}

func notifyConfigChange() {
	subscribersMutex.Lock()
	defer subscribersMutex.Unlock()

	for _, ch := range configChangeSubscribers {
		select {
		case ch <- GetGlobalConfig:
		default:
		}
	}
}

func GetGlobalConfig() (res Config) {
	globalConfigMutex.Lock()
	res = globalConfig
	globalConfigMutex.Unlock()
	return
}

// StoreGlobalConfig stores a new config to the globalConf. It mostly uses in the test to avoid some data races.
func StoreGlobalConfig(config Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()
	notifyConfigChange()
}

// UpdateGlobalConfig accesses an update function to update the global config
func UpdateGlobalConfig(update func(Config) Config) {
	globalConfigMutex.Lock()
	globalConfig = update(globalConfig)
	globalConfigMutex.Unlock()
	notifyConfigChange()
}

func InitConfig(configPath string, override func(config *Config)) (*Config, error) {
	config := defaultConfig

	if len(configPath) > 0 {
		if err := config.Load(configPath); err != nil {
			return nil, err
		}
	}

	override(&config)

	config.trimFiledSpace()

	if err := config.valid(); err != nil {
		return nil, err
	}
	StoreGlobalConfig(config)
	return &config, nil
}

func (c *Config) trimFiledSpace() {
	c.Address = strings.TrimSpace(c.Address)
	c.Mongo.URI = strings.TrimSpace(c.Mongo.URI)
	c.Cache.Denominator = strings.TrimSpace(c.Cache.Denominator)
}

func (c *Config) Load(fileName string) error {
	_, err := toml.DecodeFile(fileName, c)
	return err
}

func (c *Config) valid() error {
	var err error

	if len(c.Address) == 0 {
		return fmt.Errorf("unexpected empty address")
	}

	if err = validateAddress(c.Address, "address"); err != nil {
		return err
	}

	if err = c.Mongo.valid(); err != nil {
		return err
	}

	if err = c.Log.valid(); err != nil {
		return err
	}

	if err = c.Storage.valid(); err != nil {
		return err
	}

	if err = c.Cache.Valid(); err != nil {
		return err
	}

	return nil
}

func validateAddress(address, name string) error {
	if len(address) == 0 {
		return fmt.Errorf("unexpected empty %v", name)
	}
	_, port, err := net.SplitHostPort(address)
	if err == nil {
		var p int
		p, err = strconv.Atoi(port)
		if err == nil && p == 0 {
			err = fmt.Errorf("port cannot be set to 0")
		}
	}
	if err != nil {
		return fmt.Errorf("%v %v is invalid, err: %v", name, address, err)
	}
	return nil
}

type Mongo struct {
	URI                   string `toml:"uri" json:"-"`
	ConnectTimeoutSeconds int    `toml:"connect-timeout-seconds" json:"connect_timeout_seconds"`
}

func (m *Mongo) valid() error {
	if len(m.URI) == 0 {
		return fmt.Errorf("unexpected empty mongo uri, please specify one, e.g. --mongo.uri \"mongodb://127.0.0.1:27017\"")
	}
	if !strings.HasPrefix(m.URI, "mongodb://") && !strings.HasPrefix(m.URI, "mongodb+srv://") {
		return fmt.Errorf("mongo uri should start with mongodb:// or mongodb+srv://")
	}
	if m.ConnectTimeoutSeconds <= 0 {
		return fmt.Errorf("mongo connect-timeout-seconds should be greater than 0")
	}
	return nil
}

const (
	DocDBBackendSQLite = "sqlite"
	DocDBBackendGenji  = "genji"
)

type Storage struct {
	Path         string `toml:"path" json:"path"`
	DocDBBackend string `toml:"docdb-backend" json:"docdb_backend"`
}

func (s *Storage) valid() error {
	if len(s.Path) == 0 {
		return fmt.Errorf("unexpected empty storage path")
	}

	switch s.DocDBBackend {
	case DocDBBackendSQLite, DocDBBackendGenji:
	default:
		return fmt.Errorf("docdb backend should be %s or %s", DocDBBackendSQLite, DocDBBackendGenji)
	}

	return nil
}

const (
	DenominatorUsedSum         = "used_sum"
	DenominatorConfiguredTotal = "configured_total"
)

// Cache configures the cache statistics cycle. All of its fields can be
// changed at runtime and are read again before every cycle.
type Cache struct {
	IntervalSeconds int    `toml:"interval-seconds" json:"interval_seconds"`
	TimeoutSeconds  int    `toml:"timeout-seconds" json:"timeout_seconds"`
	Denominator     string `toml:"denominator" json:"denominator"`
	Concurrency     int    `toml:"concurrency" json:"concurrency"`
}

func (c Cache) Valid() error {
	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("cache interval-seconds should be greater than 0")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("cache timeout-seconds should be greater than 0")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("cache concurrency should be greater than 0")
	}
	switch c.Denominator {
	case DenominatorUsedSum, DenominatorConfiguredTotal:
	default:
		return fmt.Errorf("cache denominator should be %s or %s", DenominatorUsedSum, DenominatorConfiguredTotal)
	}
	return nil
}

type Log struct {
	Path  string `toml:"path" json:"path"`
	Level string `toml:"level" json:"level"`
}

const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

func (l *Log) valid() error {
	if len(l.Level) == 0 {
		return fmt.Errorf("unexpected empty log level")
	}

	switch l.Level {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
	default:
		return fmt.Errorf("log level should be %s, %s, %s or %s", LevelDebug, LevelInfo, LevelWarn, LevelError)
	}

	return nil
}

func (l *Log) InitDefaultLogger() {
	cfg := &log.Config{Level: strings.ToLower(l.Level)}
	if l.Path != "" {
		cfg.File = log.FileLogConfig{Filename: path.Join(l.Path, "cache-monitoring.log")}
	}

	logger, p, err := log.InitLogger(cfg)
	if err != nil {
		stdlog.Fatalf("Failed to init logger, err: %v", err)
	}
	log.ReplaceGlobals(logger, p)
}

// ReloadRoutine reloads the [cache] section of the config file every time
// SIGHUP is received. Other sections are only read at startup.
func ReloadRoutine(ctx context.Context, configPath string) {
	if len(configPath) == 0 {
		log.Warn("failed to reload config due to empty config path. Please specify the command line argument \"--config <path>\"")
		return
	}
	sighupCh := procutil.NewSighupChan()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sighupCh:
			log.Info("received SIGHUP and ready to reload config")
		}

		newCfg := new(Config)
		newCfg.Cache = GetGlobalConfig().Cache
		if err := newCfg.Load(configPath); err != nil {
			log.Warn("failed to reload config", zap.Error(err))
			continue
		}
		newCfg.Cache.Denominator = strings.TrimSpace(newCfg.Cache.Denominator)
		if err := newCfg.Cache.Valid(); err != nil {
			log.Warn("ignore invalid cache config", zap.Error(err))
			continue
		}

		UpdateGlobalConfig(func(curCfg Config) Config {
			if curCfg.Cache == newCfg.Cache {
				return curCfg
			}

			curCfg.Cache = newCfg.Cache
			log.Info("cache config changed", zap.Reflect("cache", curCfg.Cache))
			return curCfg
		})
	}
}

type Security struct {
	SSLCA     string      `toml:"ca-path" json:"ca_path"`
	SSLCert   string      `toml:"cert-path" json:"cert_path"`
	SSLKey    string      `toml:"key-path" json:"key_path"`
	tlsConfig *tls.Config `toml:"-" json:"-"`
}

// GetTLSConfig returns the TLS config used to talk with the cluster, or nil
// when no CA is configured. The client certificate is optional.
func (s *Security) GetTLSConfig() (*tls.Config, error) {
	if s.tlsConfig != nil {
		return s.tlsConfig, nil
	}
	if s.SSLCA == "" {
		return nil, nil
	}
	if (s.SSLCert == "") != (s.SSLKey == "") {
		return nil, fmt.Errorf("cert-path and key-path should be specified together")
	}
	tlsInfo := transport.TLSInfo{
		TrustedCAFile: s.SSLCA,
		KeyFile:       s.SSLKey,
		CertFile:      s.SSLCert,
	}
	tlsConfig, err := tlsInfo.ClientConfig()
	if err != nil {
		return nil, err
	}
	s.tlsConfig = tlsConfig
	return s.tlsConfig, nil
}
