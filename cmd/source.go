package cmd

import (
	"fmt"

	"github.com/rubiojr/agentscope/pkg/config"
	"github.com/rubiojr/agentscope/pkg/core"
	"github.com/rubiojr/agentscope/pkg/log"
	"github.com/rubiojr/agentscope/pkg/search"
	"github.com/rubiojr/agentscope/pkg/storage"
	"github.com/rubiojr/agentscope/pkg/subgraph"
)

var logger = log.ForService("cmd")

// openSource builds the indexed source selected by the configuration. A nil
// source (type "none") is valid; the engine then reports a configuration error
// on every operation. The returned close function is never nil.
func openSource(cfg *config.Config) (core.IndexedSource, func(), error) {
	noop := func() {}

	switch cfg.Source.Type {
	case config.SourceSQLite:
		ix, err := storage.Open(cfg.Source.Database)
		if err != nil {
			return nil, noop, fmt.Errorf("opening agent mirror: %w", err)
		}
		closeFn := func() {
			if err := ix.Close(); err != nil {
				logger.Warnf("failed to close agent mirror: %v", err)
			}
		}
		return ix, closeFn, nil
	case config.SourceSubgraph:
		client, err := subgraph.New(subgraph.Config{
			URL:     cfg.Source.URL,
			ChainID: cfg.Source.ChainID,
			Timeout: cfg.Source.Timeout.Duration,
			APIKey:  cfg.Source.APIKey,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("creating subgraph client: %w", err)
		}
		return client, noop, nil
	case config.SourceNone:
		return nil, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown source type %q", cfg.Source.Type)
	}
}

// openService builds the discovery engine over the configured source.
func openService(cfg *config.Config) (*search.Service, func(), error) {
	source, closeFn, err := openSource(cfg)
	if err != nil {
		return nil, closeFn, err
	}
	logger.Debugf("using %s source", cfg.Source.Type)
	return search.NewService(source), closeFn, nil
}

// loadService loads the configuration at configPath and opens the engine.
func loadService(configPath string) (*search.Service, *config.Config, func(), error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, func() {}, fmt.Errorf("loading config: %w", err)
	}
	service, closeFn, err := openService(cfg)
	if err != nil {
		return nil, nil, closeFn, err
	}
	return service, cfg, closeFn, nil
}
