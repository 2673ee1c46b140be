// Copyright © 2026 The GSN Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package gsn wires a GSN runtime together: logging, metrics, the store of
// deployed topologies, the topology loader and the producer supervisor.
package gsn

import (
	"context"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/gsnio/gsn/pkg/foundation/cerrors"
	"github.com/gsnio/gsn/pkg/foundation/database"
	"github.com/gsnio/gsn/pkg/foundation/database/badger"
	"github.com/gsnio/gsn/pkg/foundation/database/inmemory"
	"github.com/gsnio/gsn/pkg/foundation/database/sqlite"
	"github.com/gsnio/gsn/pkg/foundation/log"
	"github.com/gsnio/gsn/pkg/foundation/metrics"
	"github.com/gsnio/gsn/pkg/foundation/metrics/measure"
	"github.com/gsnio/gsn/pkg/foundation/metrics/prometheus"
	"github.com/gsnio/gsn/pkg/supervisor"
	"github.com/gsnio/gsn/pkg/topology"
	"github.com/gsnio/gsn/pkg/topology/config/yaml"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gopkg.in/tomb.v2"
)

const (
	exitTimeout = 10 * time.Second
)

var ErrNoTopology = cerrors.New("no topology configured or stored")

// Runtime sets up all services needed to deploy and run a topology.
type Runtime struct {
	Config Config

	DB         database.DB
	Store      *topology.Store
	Supervisor *supervisor.Service
	// Ready will be closed when Runtime has successfully started
	Ready chan struct{}

	topology    *topology.Topology
	metricsAddr net.Addr
	prom        *promclient.Registry
	logger      log.CtxLogger
}

// NewRuntime sets up a Runtime instance and primes it for start.
func NewRuntime(cfg Config) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, cerrors.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg.Log.Level, cfg.Log.Format)

	db := cfg.DB.Driver
	if db == nil {
		var err error
		switch cfg.DB.Type {
		case DBTypeBadger:
			db, err = badger.New(logger.Logger, cfg.DB.Badger.Path)
		case DBTypeSQLite:
			db, err = sqlite.New(context.Background(), logger.Logger, cfg.DB.SQLite.Path, cfg.DB.SQLite.Table)
		case DBTypeInMemory:
			db = &inmemory.DB{}
			logger.Warn(context.Background()).Msg("Using in-memory store, the deployed topology will be lost when GSN stops.")
		default:
			err = cerrors.Errorf("invalid DB type %q", cfg.DB.Type)
		}
		if err != nil {
			return nil, cerrors.Errorf("failed to create a DB instance: %w", err)
		}
	}

	prom := configurePrometheus()
	measure.GSNInfo.WithValues(Version(true)).Inc()

	// validated above
	supervisorCfg, _ := cfg.supervisorConfig()

	return &Runtime{
		Config:     cfg,
		DB:         db,
		Store:      topology.NewStore(db),
		Supervisor: supervisor.NewService(logger, supervisorCfg, cfg.Registry),
		Ready:      make(chan struct{}),
		prom:       prom,
		logger:     logger.WithComponent("gsn.Runtime"),
	}, nil
}

func newLogger(level string, format string) log.CtxLogger {
	l, _ := zerolog.ParseLevel(level)
	f, _ := log.ParseFormat(format)
	logger := log.InitLogger(l, f)
	zerolog.DefaultContextLogger = &logger.Logger
	return logger
}

// configurePrometheus returns a prometheus registry exposing all GSN metrics
// together with the Go runtime and process collectors.
func configurePrometheus() *promclient.Registry {
	registry := prometheus.NewRegistry(nil)
	metrics.Register(registry)

	prom := promclient.NewRegistry()
	prom.MustRegister(
		registry,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return prom
}

// Run loads and deploys the topology and serves metrics. It blocks until the
// supplied context is cancelled or, with topology.exit-on-error, a producer
// fails. All producers are stopped and the DB is closed before it returns.
func (r *Runtime) Run(ctx context.Context) (err error) {
	t, ctx := tomb.WithContext(ctx)

	defer func() {
		if err != nil {
			// stop goroutines that might have been started already
			t.Kill(err)
		}
		<-t.Dying()
		r.logger.Warn(ctx).Msg("GSN is stopping, stand by for shutdown ...")
		err = t.Wait()
	}()

	// Register cleanup function that will run after tomb is killed
	r.registerCleanup(t)

	topo, err := r.LoadTopology(ctx)
	if err != nil {
		return cerrors.Errorf("failed to load topology: %w", err)
	}
	r.topology = topo

	if r.Config.Topology.ExitOnError {
		r.Supervisor.OnFailure(func(e supervisor.FailureEvent) {
			r.logger.Warn(ctx).
				Err(e.Error).
				Str(log.ProducerField, e.Producer).
				Msg("GSN will shut down due to a producer failure and 'exit on error' enabled")
			t.Kill(cerrors.Errorf("shut down due to 'exit on error' enabled: %w", e.Error))
		})
	}

	err = r.Supervisor.Deploy(ctx, topo)
	if err != nil {
		cerrors.ForEach(err, func(err error) {
			r.logger.Err(ctx, err).Msg("producer failed to be deployed")
		})
		if r.Config.Topology.ExitOnError {
			return cerrors.Errorf("shut down due to 'exit on error' enabled: %w", err)
		}
	}

	if r.Config.Metrics.Address != "" {
		addr, err := r.serveMetrics(ctx, t)
		if err != nil {
			return cerrors.Errorf("failed to serve metrics: %w", err)
		}
		r.metricsAddr = addr
	}

	close(r.Ready)
	return nil
}

// LoadTopology builds the topology from the configured YAML file and stores
// its declarations, replacing those of the previous run. Without a file the
// stored declarations are used.
func (r *Runtime) LoadTopology(ctx context.Context) (*topology.Topology, error) {
	builder := topology.NewBuilder(r.logger)

	if r.Config.Topology.Path == "" {
		stored, err := r.Store.GetAll(ctx)
		if err != nil {
			return nil, cerrors.Errorf("failed to load stored declarations: %w", err)
		}
		if len(stored) == 0 {
			return nil, ErrNoTopology
		}
		decls := make([]topology.Declaration, 0, len(stored))
		for _, d := range stored {
			decls = append(decls, d)
		}
		sort.Slice(decls, func(i, j int) bool { return decls[i].Name < decls[j].Name })

		r.logger.Info(ctx).Int("declarations", len(decls)).Msg("loaded topology from store")
		return builder.Build(ctx, decls)
	}

	decls, err := yaml.NewParser(r.logger).ParseFile(ctx, r.Config.Topology.Path)
	if err != nil {
		return nil, err
	}
	topo, err := builder.Build(ctx, decls)
	if err != nil {
		return nil, err
	}
	if err := r.Store.Replace(ctx, topo); err != nil {
		return nil, cerrors.Errorf("failed to store topology: %w", err)
	}
	r.logger.Info(ctx).
		Str(log.FilepathField, r.Config.Topology.Path).
		Int("declarations", len(decls)).
		Strs("order", topo.Order()).
		Msg("topology loaded")
	return topo, nil
}

// Topology returns the deployed topology, nil before Ready is closed.
func (r *Runtime) Topology() *topology.Topology {
	return r.topology
}

// MetricsAddr returns the address the metrics server listens on, nil if
// it is disabled or not started yet.
func (r *Runtime) MetricsAddr() net.Addr {
	return r.metricsAddr
}

func (r *Runtime) registerCleanup(t *tomb.Tomb) {
	t.Go(func() error {
		<-t.Dying()
		// start cleanup with a fresh context
		ctx, cancel := context.WithTimeout(context.Background(), exitTimeout)
		defer cancel()

		if err := r.Supervisor.StopAll(ctx); err != nil {
			r.logger.Err(ctx, err).Msg("failed to stop producers")
		}
		// failures were reported while running, a graceful shutdown only logs them
		if err := r.Supervisor.Wait(exitTimeout); err != nil {
			cerrors.ForEach(err, func(err error) {
				r.logger.Warn(ctx).Err(err).Msg("producer stopped with error")
			})
		}
		return r.DB.Close()
	})
}

func (r *Runtime) serveMetrics(ctx context.Context, t *tomb.Tomb) (net.Addr, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.prom, promhttp.HandlerOpts{}))

	return r.serveHTTP(ctx, t, &http.Server{
		Addr:              r.Config.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	})
}

func (r *Runtime) serveHTTP(
	ctx context.Context,
	t *tomb.Tomb,
	srv *http.Server,
) (net.Addr, error) {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, cerrors.Errorf("failed to listen on address %q: %w", srv.Addr, err)
	}

	t.Go(func() error {
		err := srv.Serve(ln)
		if err != nil {
			if err == http.ErrServerClosed {
				// ignore expected close
				return nil
			}
			return cerrors.Errorf("http server listening on %q stopped with error: %w", ln.Addr(), err)
		}
		return nil
	})
	t.Go(func() error {
		<-t.Dying()
		// start server shutdown with a timeout, use fresh context
		ctx, cancel := context.WithTimeout(context.Background(), exitTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	r.logger.Info(ctx).Str(log.ServerAddressField, ln.Addr().String()).Msg("metrics server started")
	return ln.Addr(), nil
}
