package user

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"linkup-api/internal/modules/category"
)

// --- Profile associations (languages, interest categories) ---

func (r *repository) LanguagesForUser(ctx context.Context, userID int64) ([]Language, error) {
	query, args, err := r.psql.Select("l.id", "l.name").
		From("languages l").
		Join("user_languages ul ON ul.language_id = l.id").
		Where(squirrel.Eq{"ul.user_id": userID}).
		OrderBy("l.name").
		ToSql()
	if err != nil {
		return nil, err
	}
	var langs []Language
	if err := pgxscan.Select(ctx, r.db, &langs, query, args...); err != nil {
		return nil, err
	}
	return langs, nil
}

func (r *repository) InterestsForUser(ctx context.Context, userID int64) ([]category.Category, error) {
	query, args, err := r.psql.Select("c.id", "c.name", "c.image", "c.latitude", "c.longitude").
		From("categories c").
		Join("user_interests ui ON ui.category_id = c.id").
		Where(squirrel.Eq{"ui.user_id": userID}).
		OrderBy("c.name").
		ToSql()
	if err != nil {
		return nil, err
	}
	var cats []category.Category
	if err := pgxscan.Select(ctx, r.db, &cats, query, args...); err != nil {
		return nil, err
	}
	return cats, nil
}

// ReplaceLanguages swaps the user's language set for the given ids.
// Unknown ids are silently dropped by the FK join on insert.
func (r *repository) ReplaceLanguages(ctx context.Context, userID int64, languageIDs []int64) error {
	return r.replaceAssociations(ctx, "user_languages", "language_id", "languages", userID, languageIDs)
}

// ReplaceInterests swaps the user's interest categories for the given ids.
func (r *repository) ReplaceInterests(ctx context.Context, userID int64, categoryIDs []int64) error {
	return r.replaceAssociations(ctx, "user_interests", "category_id", "categories", userID, categoryIDs)
}

func (r *repository) replaceAssociations(ctx context.Context, joinTable, refColumn, refTable string, userID int64, ids []int64) error {
	del, args, err := r.psql.Delete(joinTable).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, del, args...); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	// Insert only ids that actually exist in the referenced table.
	ins := fmt.Sprintf(
		"INSERT INTO %s (user_id, %s) SELECT $1, id FROM %s WHERE id = ANY($2)",
		joinTable, refColumn, refTable,
	)
	_, err = r.db.Exec(ctx, ins, userID, ids)
	return err
}
