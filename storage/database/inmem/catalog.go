package inmemdb

import (
	"context"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/catalog"
)

type catalogRepository struct {
	db *catalogTable
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db.catalogs}
}

func (repo *catalogRepository) GetLatestCatalog(ctx context.Context, exec ...core.DBExecutor) (catalog.Catalog, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if len(repo.db.versions) == 0 {
		return catalog.Catalog{}, catalog.ErrNotFound
	}
	return copyCatalog(repo.db.versions[len(repo.db.versions)-1]), nil
}

func (repo *catalogRepository) GetCatalogVersion(ctx context.Context, version int, exec ...core.DBExecutor) (catalog.Catalog, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, cat := range repo.db.versions {
		if cat.Version == version {
			return copyCatalog(cat), nil
		}
	}
	return catalog.Catalog{}, catalog.ErrNotFound
}

func (repo *catalogRepository) SaveCatalog(ctx context.Context, cat catalog.Catalog, exec ...core.DBExecutor) (catalog.Catalog, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.versions = append(repo.db.versions, copyCatalog(cat))
	return cat, nil
}

// copyCatalog deep-copies the module list so callers cannot mutate a stored
// version in place.
func copyCatalog(cat catalog.Catalog) catalog.Catalog {
	cp := cat
	cp.Modules = make([]catalog.ModuleTemplate, len(cat.Modules))
	for i, mod := range cat.Modules {
		m := mod
		m.Tasks = make([]catalog.TaskTemplate, len(mod.Tasks))
		for j, tmpl := range mod.Tasks {
			t := tmpl
			t.Checklist = append([]string(nil), tmpl.Checklist...)
			t.Deliverables = append([]string(nil), tmpl.Deliverables...)
			m.Tasks[j] = t
		}
		cp.Modules[i] = m
	}
	return cp
}
