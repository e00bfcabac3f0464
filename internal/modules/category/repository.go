package category

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"linkup-api/internal/database"
)

// Repository defines the database operations for the category module.
type Repository interface {
	List(ctx context.Context) ([]Category, error)
	FindByID(ctx context.Context, id int64) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	Search(ctx context.Context, q string) ([]Category, error)
}

// repository implements the Repository interface using pgx and squirrel.
type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new category repository with the given database connection.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const columns = "id, name, image, latitude, longitude"

func (r *repository) List(ctx context.Context) ([]Category, error) {
	sql, args, err := r.psql.Select(columns).From("categories").OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	var cats []Category
	if err := pgxscan.Select(ctx, r.db, &cats, sql, args...); err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Category, error) {
	sql, args, err := r.psql.Select(columns).From("categories").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}
	var cat Category
	if err := pgxscan.Get(ctx, r.db, &cat, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &cat, nil
}

// FindByName matches a name case-insensitively but exactly.
func (r *repository) FindByName(ctx context.Context, name string) (*Category, error) {
	sql, args, err := r.psql.Select(columns).From("categories").
		Where("name ILIKE ?", name).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}
	var cat Category
	if err := pgxscan.Get(ctx, r.db, &cat, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &cat, nil
}

// Search matches category names by case-insensitive substring.
func (r *repository) Search(ctx context.Context, q string) ([]Category, error) {
	sql, args, err := r.psql.Select(columns).From("categories").
		Where("name ILIKE ?", "%"+q+"%").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, err
	}
	var cats []Category
	if err := pgxscan.Select(ctx, r.db, &cats, sql, args...); err != nil {
		return nil, err
	}
	return cats, nil
}
