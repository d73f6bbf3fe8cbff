package seed

import (
	"context"
	"errors"
	"io/fs"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/ecoverde/compensa/internal/config"
	rulesdomain "github.com/ecoverde/compensa/internal/rules/domain"
	"github.com/ecoverde/compensa/pkg/db"
	"github.com/ecoverde/compensa/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LoaderParams struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Sources *config.SourcesHolder
}

// Loader seeds the rule store from CSV sources. Each kind loads at most
// once per store lifetime; a populated table short-circuits the load
// unless force is set, in which case the table is replaced atomically.
type Loader struct {
	conn    *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	sources *config.SourcesHolder

	treeStore    repository.Repository[rulesdomain.TreeRule]
	patchStore   repository.Repository[rulesdomain.PatchRule]
	appStore     repository.Repository[rulesdomain.AppRule]
	speciesStore repository.Repository[rulesdomain.SpeciesStatus]
}

func NewLoader(p LoaderParams) *Loader {
	return &Loader{
		conn:    p.DB,
		log:     p.Log.Named("seed.loader"),
		genID:   p.GenID,
		sources: p.Sources,

		treeStore:    repository.ProvideStore[rulesdomain.TreeRule](p.DB),
		patchStore:   repository.ProvideStore[rulesdomain.PatchRule](p.DB),
		appStore:     repository.ProvideStore[rulesdomain.AppRule](p.DB),
		speciesStore: repository.ProvideStore[rulesdomain.SpeciesStatus](p.DB),
	}
}

// LoadAll seeds every rule kind. Missing source files are skipped; storage
// errors abort.
func (l *Loader) LoadAll(ctx context.Context) error {
	if err := l.LoadTreeRules(ctx, false); err != nil {
		return err
	}
	if err := l.LoadPatchRules(ctx, false); err != nil {
		return err
	}
	if err := l.LoadAppRules(ctx, false); err != nil {
		return err
	}
	return l.LoadSpeciesStatuses(ctx, false)
}

// Reload force-reloads a single rule kind, replacing its table contents.
func (l *Loader) Reload(ctx context.Context, kind rulesdomain.Kind) error {
	switch kind {
	case rulesdomain.KindTree:
		return l.LoadTreeRules(ctx, true)
	case rulesdomain.KindPatch:
		return l.LoadPatchRules(ctx, true)
	case rulesdomain.KindApp:
		return l.LoadAppRules(ctx, true)
	case rulesdomain.KindSpecies:
		return l.LoadSpeciesStatuses(ctx, true)
	default:
		return rulesdomain.ErrUnknownKind
	}
}

func (l *Loader) LoadTreeRules(ctx context.Context, force bool) error {
	if !force {
		count, err := l.treeStore.Count(ctx, &rulesdomain.TreeRule{})
		if err != nil {
			return err
		}
		if count > 0 {
			l.log.Debug("tree rules already populated", zap.Int64("count", count))
			return nil
		}
	}

	path := l.sources.Get().TreeCSV
	records, err := readRecords(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.log.Warn("tree rule source not found, skipping", zap.String("path", path))
			return nil
		}
		return err
	}

	rows := make([]*rulesdomain.TreeRule, 0, len(records))
	for _, record := range records {
		group := record["group"]
		municipality := record["municipality"]
		if group == "" || municipality == "" {
			continue
		}

		compensation, err := strconv.Atoi(record["compensation"])
		if err != nil {
			continue
		}

		multiplier := 1.0
		if raw := record["endangered"]; raw != "" {
			if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
				multiplier = parsed
			}
		}

		rows = append(rows, &rulesdomain.TreeRule{
			ID:                   l.genID.Generate(),
			Group:                group,
			Municipality:         municipality,
			BaseCompensation:     compensation,
			EndangeredMultiplier: multiplier,
		})
	}

	if err := replaceRows(ctx, l.conn, force, l.treeStore, rows); err != nil {
		return err
	}
	l.log.Info("tree compensation rules loaded", zap.Int("rows", len(rows)), zap.String("path", path))
	return nil
}

func (l *Loader) LoadPatchRules(ctx context.Context, force bool) error {
	if !force {
		count, err := l.patchStore.Count(ctx, &rulesdomain.PatchRule{})
		if err != nil {
			return err
		}
		if count > 0 {
			l.log.Debug("patch rules already populated", zap.Int64("count", count))
			return nil
		}
	}

	path := l.sources.Get().PatchCSV
	records, err := readRecords(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.log.Warn("patch rule source not found, skipping", zap.String("path", path))
			return nil
		}
		return err
	}

	rows := make([]*rulesdomain.PatchRule, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, record := range records {
		municipality := record["municipality"]
		if municipality == "" || seen[municipality] {
			continue
		}

		compensation, err := strconv.ParseFloat(record["compensation_m2"], 64)
		if err != nil {
			continue
		}

		seen[municipality] = true
		rows = append(rows, &rulesdomain.PatchRule{
			ID:             l.genID.Generate(),
			Municipality:   municipality,
			CompensationM2: compensation,
		})
	}

	if err := replaceRows(ctx, l.conn, force, l.patchStore, rows); err != nil {
		return err
	}
	l.log.Info("patch compensation rules loaded", zap.Int("rows", len(rows)), zap.String("path", path))
	return nil
}

func (l *Loader) LoadAppRules(ctx context.Context, force bool) error {
	if !force {
		count, err := l.appStore.Count(ctx, &rulesdomain.AppRule{})
		if err != nil {
			return err
		}
		if count > 0 {
			l.log.Debug("app rules already populated", zap.Int64("count", count))
			return nil
		}
	}

	path := l.sources.Get().AppCSV
	records, err := readRecords(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.log.Warn("app rule source not found, skipping", zap.String("path", path))
			return nil
		}
		return err
	}

	rows := make([]*rulesdomain.AppRule, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, record := range records {
		municipality := record["municipality"]
		if municipality == "" || seen[municipality] {
			continue
		}

		compensation, err := strconv.ParseFloat(record["compensation"], 64)
		if err != nil {
			continue
		}

		seen[municipality] = true
		rows = append(rows, &rulesdomain.AppRule{
			ID:                  l.genID.Generate(),
			Municipality:        municipality,
			CompensationPerUnit: compensation,
		})
	}

	if err := replaceRows(ctx, l.conn, force, l.appStore, rows); err != nil {
		return err
	}
	l.log.Info("app compensation rules loaded", zap.Int("rows", len(rows)), zap.String("path", path))
	return nil
}

func (l *Loader) LoadSpeciesStatuses(ctx context.Context, force bool) error {
	if !force {
		count, err := l.speciesStore.Count(ctx, &rulesdomain.SpeciesStatus{})
		if err != nil {
			return err
		}
		if count > 0 {
			l.log.Debug("species statuses already populated", zap.Int64("count", count))
			return nil
		}
	}

	path := l.sources.Get().SpeciesCSV
	records, err := readRecords(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.log.Warn("species status source not found, skipping", zap.String("path", path))
			return nil
		}
		return err
	}

	rows := make([]*rulesdomain.SpeciesStatus, 0, len(records))
	for _, record := range records {
		family := record["family"]
		specie := record["specie"]
		if specie == "" {
			specie = record["species"]
		}
		status := record["status"]
		if family == "" || specie == "" || status == "" {
			continue
		}

		rows = append(rows, &rulesdomain.SpeciesStatus{
			ID:     l.genID.Generate(),
			Family: family,
			Specie: specie,
			Status: status,
		})
	}

	if err := replaceRows(ctx, l.conn, force, l.speciesStore, rows); err != nil {
		return err
	}
	l.log.Info("species statuses loaded", zap.Int("rows", len(rows)), zap.String("path", path))
	return nil
}

// replace commits the parsed rows in one transaction. With force the
// existing table contents are cleared first, so readers see either the old
// snapshot or the new one. A duplicate-key failure means a concurrent
// loader won the first-load race; the rows it inserted are equivalent, so
// the pass is abandoned without error.
func replaceRows[T any](ctx context.Context, conn *gorm.DB, force bool, store repository.Repository[T], rows []*T) error {
	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scoped := store.WithTrx(tx)
		if force {
			if err := scoped.DeleteAll(ctx); err != nil {
				return err
			}
		}
		return scoped.BatchCreate(ctx, rows)
	})
	if err != nil && db.IsDuplicateKeyErr(err) {
		return nil
	}
	return err
}
