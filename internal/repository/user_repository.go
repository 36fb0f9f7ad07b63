package repository

import (
	"context"

	"journey-chat/internal/domain/user"

	"github.com/jackc/pgx/v5"
)

// PostgresUserRepository reads public profiles from the users table owned by
// the user service.
type PostgresUserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) GetPublicProfile(ctx context.Context, id string) (user.PublicProfile, error) {
	var p user.PublicProfile
	err := r.db.QueryRow(ctx, `
		SELECT id, username, COALESCE(display_name, ''), COALESCE(avatar_url, '')
		FROM users WHERE id = $1`, id).Scan(&p.ID, &p.Username, &p.DisplayName, &p.AvatarURL)
	if err != nil {
		return user.PublicProfile{}, notFound(err)
	}
	return p, nil
}

func (r *PostgresUserRepository) GetPublicProfiles(ctx context.Context, ids []string) (map[string]user.PublicProfile, error) {
	out := make(map[string]user.PublicProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, username, COALESCE(display_name, ''), COALESCE(avatar_url, '')
		FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	profiles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (user.PublicProfile, error) {
		var p user.PublicProfile
		err := row.Scan(&p.ID, &p.Username, &p.DisplayName, &p.AvatarURL)
		return p, err
	})
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.ID] = p
	}
	return out, nil
}
