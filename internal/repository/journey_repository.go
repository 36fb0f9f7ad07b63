package repository

import (
	"context"

	"journey-chat/internal/domain/journey"
)

type PostgresJourneyRepository struct {
	db DBTX
}

func NewJourneyRepository(db DBTX) JourneyRepository {
	return &PostgresJourneyRepository{db: db}
}

func (r *PostgresJourneyRepository) GetByID(ctx context.Context, id string) (journey.Journey, error) {
	var j journey.Journey
	err := r.db.QueryRow(ctx, `
		SELECT j.id, j.creator_id,
			COALESCE(array_agg(c.user_id ORDER BY c.user_id) FILTER (WHERE c.user_id IS NOT NULL), '{}')
		FROM journeys j
		LEFT JOIN journey_collaborators c ON c.journey_id = j.id
		WHERE j.id = $1
		GROUP BY j.id, j.creator_id`, id).Scan(&j.ID, &j.CreatorID, &j.Collaborators)
	if err != nil {
		return journey.Journey{}, notFound(err)
	}
	return j, nil
}
