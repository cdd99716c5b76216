package domain

import (
	"context"
	"sync"
	"time"

	"github.com/pingcap/cache-monitoring/config"

	"github.com/pingcap/log"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const appName = "cache-monitoring"

// ErrConnection is returned when the cluster can not be reached at startup.
// It is fatal: the process must not enter the collection loop.
var ErrConnection = errors.New("failed to connect to the cluster")

// Domain owns the connection to the monitored cluster for the whole process
// lifetime. The connection is only used for read-only statistics commands.
type Domain struct {
	client *mongo.Client

	closeOnce sync.Once
}

// NewDomain connects to the cluster and performs one liveness probe. It
// never retries: an unreachable cluster or a rejected login is returned as
// ErrConnection within the configured connect timeout.
func NewDomain(ctx context.Context, cfg *config.Config) (*Domain, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, wrapConnectionError(err)
	}
	timeout := time.Duration(cfg.Mongo.ConnectTimeoutSeconds) * time.Second

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, wrapConnectionError(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err = client.Ping(pingCtx, readpref.PrimaryPreferred()); err != nil {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, wrapConnectionError(err)
	}

	log.Info("connect to cluster success", zap.Strings("hosts", opts.Hosts))
	return &Domain{client: client}, nil
}

func clientOptions(cfg *config.Config) (*options.ClientOptions, error) {
	timeout := time.Duration(cfg.Mongo.ConnectTimeoutSeconds) * time.Second
	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetAppName(appName).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetReadPreference(readpref.PrimaryPreferred())
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	tlsConfig, err := cfg.Security.GetTLSConfig()
	if err != nil {
		return nil, err
	}
	if tlsConfig != nil {
		opts.SetTLSConfig(tlsConfig)
	}
	return opts, nil
}

func wrapConnectionError(err error) error {
	return errors.Wrapf(ErrConnection, "%v", err)
}

func (do *Domain) Client() *mongo.Client {
	return do.client
}

func (do *Domain) Close() {
	do.closeOnce.Do(func() {
		if do.client == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := do.client.Disconnect(ctx); err != nil {
			log.Warn("failed to disconnect from cluster", zap.Error(err))
		}
	})
}
