package topology

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/linkstatus-core/internal/devicestatus"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/config"
)

// Logger is the subset of logging.Logger used while loading.
type Logger interface {
	Info(msg string, args ...any)
}

// Load resolves the layout for cfg.Source.
//
// For the database source, repo must be non-nil. If the tables are empty the
// file layout (cfg.SeedFromFile) or else the embedded default is stored first.
//
// Parameters:
//   - ctx: Context for database access
//   - cfg: topology section of the service configuration
//   - repo: layout store, used only for the database source
//   - logger: receives one line describing where the layout came from
//
// Returns:
//   - devicestatus.Layout: validated layout
//   - error: if the source cannot be read or the layout is invalid
func Load(ctx context.Context, cfg config.TopologyConfig, repo Repository, logger Logger) (devicestatus.Layout, error) {
	switch cfg.Source {
	case config.TopologyEmbedded, "":
		layout, err := Default()
		if err != nil {
			return devicestatus.Layout{}, err
		}
		logger.Info("topology loaded", "source", config.TopologyEmbedded, "links", len(layout.Links))
		return layout, nil

	case config.TopologyFile:
		layout, err := LoadFile(cfg.File)
		if err != nil {
			return devicestatus.Layout{}, err
		}
		logger.Info("topology loaded", "source", config.TopologyFile, "file", cfg.File, "links", len(layout.Links))
		return layout, nil

	case config.TopologyDatabase:
		if repo == nil {
			return devicestatus.Layout{}, errors.New("topology: database source requires a repository")
		}
		if err := seedIfEmpty(ctx, repo, cfg, logger); err != nil {
			return devicestatus.Layout{}, err
		}
		layout, err := repo.Load(ctx)
		if err != nil {
			return devicestatus.Layout{}, err
		}
		logger.Info("topology loaded", "source", config.TopologyDatabase, "links", len(layout.Links))
		return layout, nil

	default:
		return devicestatus.Layout{}, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}
}

// seedIfEmpty stores the seed layout when repo holds nothing yet.
// An existing stored layout is never overwritten.
func seedIfEmpty(ctx context.Context, repo Repository, cfg config.TopologyConfig, logger Logger) error {
	empty, err := repo.IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	if !cfg.SeedFromFile {
		layout, err := Default()
		if err != nil {
			return fmt.Errorf("seeding topology: %w", err)
		}
		return seedLayout(ctx, repo, layout, config.TopologyEmbedded, logger)
	}

	layout, err := LoadFile(cfg.File)
	if err != nil {
		return fmt.Errorf("seeding topology: %w", err)
	}
	return seedLayout(ctx, repo, layout, cfg.File, logger)
}

func seedLayout(ctx context.Context, repo Repository, layout devicestatus.Layout, origin string, logger Logger) error {
	if err := repo.Save(ctx, layout); err != nil {
		return fmt.Errorf("seeding topology: %w", err)
	}
	logger.Info("topology seeded", "from", origin, "links", len(layout.Links))
	return nil
}
