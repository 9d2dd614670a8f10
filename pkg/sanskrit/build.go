package sanskrit

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/sanskrit/pkg/sanskrit/config"
	"github.com/cognicore/sanskrit/pkg/sanskrit/internalerr"
	"github.com/cognicore/sanskrit/pkg/sanskrit/oracle"
	"github.com/cognicore/sanskrit/pkg/sanskrit/pipeline"
	"github.com/cognicore/sanskrit/pkg/sanskrit/segment"
	"github.com/cognicore/sanskrit/pkg/sanskrit/store"
	"github.com/cognicore/sanskrit/pkg/sanskrit/store/memstore"
	"github.com/cognicore/sanskrit/pkg/sanskrit/store/sqlite"
	"github.com/cognicore/sanskrit/pkg/sanskrit/tagger"
)

// OpenStore opens the store named by cfg.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "", config.DriverMemory:
		return memstore.New(), nil
	case config.DriverSQLite:
		return sqlite.OpenSQLite(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", internalerr.ErrInvalidConfig, cfg.Driver)
	}
}

// Build assembles an Analyzer from configuration: data files, the store,
// the segmentation engine with its optional cache and the tagger.
// Missing score tables or split pairs degrade the analyzer and are
// reported through Warnings.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	comp, err := cfg.Loader().Load()
	if err != nil {
		return nil, err
	}
	warnings := comp.Warnings

	st, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	tables := comp.Tables
	if tables == nil && cfg.Tagging.FromStore {
		tables, err = st.LoadTables(ctx)
		switch {
		case errors.Is(err, internalerr.ErrNotFound):
			warnings = append(warnings, "no score tables in store, tagging by classifier")
		case err != nil:
			st.Close()
			return nil, fmt.Errorf("load score tables from store: %w", err)
		}
	}

	orc := comp.Oracle
	if orc == nil && cfg.Oracle.Kind == config.OracleLexicon {
		pairs, err := st.Splits(ctx)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("load split pairs: %w", err)
		}
		if len(pairs) == 0 {
			warnings = append(warnings, "lexicon oracle has no split pairs")
		} else {
			orc = oracle.NewLexicon(pairs)
		}
	}

	var seg segment.Segmenter = segment.NewEngine(segment.Options{
		Rules:           comp.Rules,
		EdgeCases:       comp.EdgeCases,
		Oracle:          orc,
		AcceptThreshold: cfg.Segmentation.AcceptThreshold,
		Logger:          logger.Named("segment"),
	})
	if cfg.Segmentation.CacheSize > 0 {
		cache, err := segment.NewCache(seg, cfg.Segmentation.CacheSize)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("segment cache: %w", err)
		}
		seg = cache
	}

	p := pipeline.New(pipeline.Options{
		Segmenter: seg,
		Tagger:    tagger.New(tables),
		Rules:     comp.Rules,
		MinRatio:  cfg.Admissibility.MinRatio,
		Logger:    logger.Named("pipeline"),
	})

	for _, w := range warnings {
		logger.Warn("degraded analyzer", zap.String("reason", w))
	}

	return New(Options{
		Pipeline:    p,
		Store:       st,
		Logger:      logger,
		TaggerReady: tables != nil,
		Warnings:    warnings,
	}), nil
}
