package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lawrencelj/mdsearch/internal/docsource"
	"github.com/lawrencelj/mdsearch/internal/engine"
	"github.com/lawrencelj/mdsearch/pkg/config"
	"github.com/lawrencelj/mdsearch/pkg/metrics"
	"github.com/lawrencelj/mdsearch/pkg/monitor"
)

// buildEngine assembles the engine and its collaborators from config. A nil
// registerer keeps the collectors on a private registry, which is what the
// one-shot commands want; serve passes the default registry so the scrape
// endpoint sees them.
func buildEngine(cfg *config.Config, reg prometheus.Registerer) (*engine.Engine, *monitor.Monitor, *docsource.Source, *metrics.Metrics) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	mon := monitor.New(cfg.Engine.MonitorWindow)
	m := metrics.New(reg)
	eng := engine.New(engine.Options{
		CacheCapacity: cfg.Engine.CacheCapacity,
		Monitor:       mon,
		Metrics:       m,
	})
	return eng, mon, docsource.New(cfg.Source), m
}

// indexCorpus loads every document under the source root into the engine.
func indexCorpus(ctx context.Context, eng *engine.Engine, src *docsource.Source) (int, error) {
	docs, err := src.Load(ctx)
	if err != nil {
		return 0, err
	}
	for _, doc := range docs {
		eng.IndexDocument(doc)
	}
	return len(docs), nil
}
