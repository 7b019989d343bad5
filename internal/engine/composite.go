package engine

import (
	"fmt"
	"log/slog"

	"github.com/dotcommander/farol/internal/aggregate"
	"github.com/dotcommander/farol/internal/config"
	"github.com/dotcommander/farol/internal/dataset"
	"github.com/dotcommander/farol/internal/discovery"
	"github.com/dotcommander/farol/internal/types"
)

// ErrNoComposite is returned when the model declares no composite.
var ErrNoComposite = fmt.Errorf("%w: model declares no composite", types.ErrValidation)

// Composite loads every category of the model's composite from dataDir and
// aggregates them. Category files may be globs that match exactly one file.
func Composite(c *Compiled, dataDir string) (aggregate.Result, error) {
	if c.Composite == nil {
		return aggregate.Result{}, ErrNoComposite
	}
	return LoadAndAggregate(*c.Composite, dataDir)
}

// LoadAndAggregate resolves, loads and aggregates the categories of spec.
func LoadAndAggregate(spec config.CompositeSpec, dataDir string) (aggregate.Result, error) {
	fd := discovery.NewFileDiscovery(dataDir)

	categories := make([]aggregate.Category, 0, len(spec.Categories))
	for _, cs := range spec.Categories {
		f, err := fd.FindOne(cs.File)
		if err != nil {
			return aggregate.Result{}, fmt.Errorf("category %s: %w", cs.Label, err)
		}
		t, err := dataset.Load(f.Path, dataset.Options{Sheet: cs.Sheet})
		if err != nil {
			return aggregate.Result{}, fmt.Errorf("category %s: %w", cs.Label, err)
		}
		slog.Debug("category loaded", "label", cs.Label, "file", f.RelPath, "rows", t.Len(), "weight", cs.Weight)

		categories = append(categories, aggregate.Category{
			Label:        cs.Label,
			Table:        t,
			KeyColumn:    cs.Key,
			ScoreColumn:  cs.ScoreColumn,
			StatusColumn: cs.StatusColumn,
			Weight:       cs.Weight,
		})
	}

	res, err := aggregate.Aggregate(categories, aggregate.Options{
		Key:   spec.Key,
		Name:  spec.Name,
		Carry: spec.Carry,
	})
	if err != nil {
		return aggregate.Result{}, err
	}
	if res.Skipped > 0 {
		slog.Warn("rows without a key were skipped", "key", spec.Key, "count", res.Skipped)
	}
	slog.Info("composite computed", "name", res.Name, "records", len(res.Rows), "categories", len(res.Labels))
	return res, nil
}
