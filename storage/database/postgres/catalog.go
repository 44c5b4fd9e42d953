package pgrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/catalog"
)

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo catalogRepository) getExec(svcExec []core.DBExecutor) execer {
	if len(svcExec) > 0 {
		if ext, ok := svcExec[0].(execer); ok {
			return ext
		}
	}
	return repo.db
}

func (repo catalogRepository) GetLatestCatalog(ctx context.Context, exec ...core.DBExecutor) (catalog.Catalog, error) {
	ext := repo.getExec(exec)
	var doc []byte
	err := ext.QueryRowxContext(ctx, "SELECT doc FROM catalogs ORDER BY version DESC LIMIT 1").Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return catalog.Catalog{}, catalog.ErrNotFound
		}
		return catalog.Catalog{}, errors.Wrap(err, "getting latest catalog")
	}
	return unmarshalCatalog(doc)
}

func (repo catalogRepository) GetCatalogVersion(ctx context.Context, version int, exec ...core.DBExecutor) (catalog.Catalog, error) {
	ext := repo.getExec(exec)
	var doc []byte
	err := ext.QueryRowxContext(ctx, ext.Rebind("SELECT doc FROM catalogs WHERE version = ?"), version).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return catalog.Catalog{}, catalog.ErrNotFound
		}
		return catalog.Catalog{}, errors.Wrap(err, "getting catalog version")
	}
	return unmarshalCatalog(doc)
}

// SaveCatalog inserts cat as a new version row; stored versions are never
// modified.
func (repo catalogRepository) SaveCatalog(ctx context.Context, cat catalog.Catalog, exec ...core.DBExecutor) (catalog.Catalog, error) {
	ext := repo.getExec(exec)
	doc, err := json.Marshal(cat)
	if err != nil {
		return catalog.Catalog{}, errors.Wrap(err, "marshalling catalog")
	}
	q := ext.Rebind("INSERT INTO catalogs (version, doc) VALUES (?, ?)")
	if _, err = ext.ExecContext(ctx, q, cat.Version, doc); err != nil {
		return catalog.Catalog{}, errors.Wrap(err, "inserting catalog version")
	}
	return cat, nil
}

func unmarshalCatalog(doc []byte) (catalog.Catalog, error) {
	var cat catalog.Catalog
	err := json.Unmarshal(doc, &cat)
	return cat, errors.Wrap(err, "unmarshalling catalog")
}
