package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v3"

	"github.com/rubiojr/agentscope/pkg/api"
	"github.com/rubiojr/agentscope/pkg/config"
)

// drainTimeout bounds both graceful shutdown and how long a replaced source
// stays open for requests that started before a reload.
const drainTimeout = 30 * time.Second

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "Port to listen on (defaults to server.port)",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to (defaults to server.host)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("host"), c.String("port"))
		},
	}
}

// reloader swaps the engine behind the API server when the configuration changes.
type reloader struct {
	mu         sync.Mutex
	configPath string
	host, port string
	server     *api.Server
	cfg        *config.Config
	closeFn    func()
}

// load reads the configuration and applies the --host/--port overrides.
func (r *reloader) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(r.configPath)
	if err != nil {
		return nil, err
	}
	if r.host != "" {
		cfg.Server.Host = r.host
	}
	if r.port != "" {
		cfg.Server.Port = r.port
	}
	return cfg, nil
}

func (r *reloader) reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	newCfg, err := r.load()
	if err != nil {
		return fmt.Errorf("loading new config: %w", err)
	}
	service, closeFn, err := openService(newCfg)
	if err != nil {
		return err
	}

	if newCfg.Address() != r.cfg.Address() {
		logger.Warnf("listen address changes (%s) require a restart", newCfg.Address())
	}

	r.server.SetService(service)
	oldClose := r.closeFn
	time.AfterFunc(drainTimeout, oldClose)
	r.cfg = newCfg
	r.closeFn = closeFn
	logger.Infof("now serving from %s source", newCfg.Source.Type)
	return nil
}

func (r *reloader) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeFn()
}

// serve runs the API server until interrupted, reloading the configuration on
// SIGHUP or when the config file changes
func serve(ctx context.Context, configPath, host, port string) error {
	rl := &reloader{configPath: configPath, host: host, port: port, closeFn: func() {}}
	cfg, err := rl.load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	service, closeFn, err := openService(cfg)
	if err != nil {
		return err
	}
	apiServer := api.NewServer(service)
	rl.server, rl.cfg, rl.closeFn = apiServer, cfg, closeFn
	defer rl.close()

	if !service.Configured() {
		logger.Warnf("no indexed source configured, agent endpoints will answer 503")
	}

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting API server on http://%s", cfg.Address())
		logger.Infof("  GET /api/agents/{id} - Agent by id")
		logger.Infof("  GET /api/agents - Filtered search")
		logger.Infof("  GET /api/agents/stream - Filtered search streamed over WebSocket")
		logger.Infof("  GET /api/reputation - Reputation search")
		logger.Infof("  GET /health - Health check")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	// Set up filesystem watcher for config file
	var events <-chan fsnotify.Event
	var watchErrors <-chan error
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warnf("failed to create config file watcher: %v", err)
	} else {
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Warnf("failed to close config file watcher: %v", err)
			}
		}()
		if err := watcher.Add(configPath); err != nil {
			logger.Warnf("failed to watch config file %s: %v", configPath, err)
		} else {
			logger.Infof("Watching config file for changes: %s", configPath)
			events = watcher.Events
			watchErrors = watcher.Errors
		}
	}

	for {
		select {
		case <-ctx.Done():
			return shutdown(server)
		case err, ok := <-serverErr:
			if ok && err != nil {
				return fmt.Errorf("api server: %w", err)
			}
			return nil
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				logger.Infof("Received SIGHUP, reloading configuration...")
				if err := rl.reload(); err != nil {
					logger.Errorf("Failed to reload configuration: %v", err)
				}
			case syscall.SIGINT, syscall.SIGTERM:
				return shutdown(server)
			}
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			// Editors often replace the file atomically, so react to rename/remove too
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			logger.Infof("Config file changed: %s (event: %s), reloading configuration...", event.Name, event.Op.String())

			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				time.Sleep(200 * time.Millisecond)
				if _, err := os.Stat(configPath); os.IsNotExist(err) {
					logger.Warnf("Config file was removed and not replaced, skipping reload")
					continue
				}
				if err := watcher.Add(configPath); err != nil {
					logger.Warnf("failed to re-add config file to watcher after rename/remove: %v", err)
				}
			} else {
				time.Sleep(100 * time.Millisecond)
			}

			if err := rl.reload(); err != nil {
				logger.Errorf("Failed to reload configuration after file change: %v", err)
			}
		case err, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			logger.Warnf("Config file watcher error: %v", err)
		}
	}
}

func shutdown(server *http.Server) error {
	logger.Infof("Shutting down API server...")
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}
