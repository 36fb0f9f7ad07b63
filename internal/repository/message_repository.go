package repository

import (
	"context"
	"fmt"
	"time"

	"journey-chat/internal/domain/message"
	"journey-chat/internal/domain/room"
	chat_errors "journey-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const messageColumns = `m.id, m.sender_id, m.content, m.message_type, m.room_id, m.room_category,
	m.journey_id, m.location, m.parent_message_id, m.attachments, m.status, m.is_edited,
	m.edited_at, m.original_content, m.is_deleted, m.deleted_at, m.created_at, m.updated_at`

type PostgresMessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	if m.Attachments == nil {
		m.Attachments = []message.Attachment{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_messages (id, sender_id, content, message_type, room_id, room_category,
			journey_id, location, parent_message_id, attachments, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		m.ID, m.SenderID, m.Content, string(m.Type), m.RoomID, string(m.RoomCategory),
		m.JourneyID, m.Location, m.ParentMessageID, m.Attachments, string(m.Status), m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: duplicate message id", chat_errors.ErrInvalidInput)
		}
		return err
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	m, err := scanMessage(r.db.QueryRow(ctx, `SELECT `+messageColumns+` FROM chat_messages m WHERE m.id = $1`, id))
	if err != nil {
		return message.Message{}, notFound(err)
	}
	msgs := []message.Message{m}
	if err := r.loadRelations(ctx, msgs); err != nil {
		return message.Message{}, err
	}
	return msgs[0], nil
}

func (r *PostgresMessageRepository) ListByRoom(ctx context.Context, roomID string, offset, limit int) ([]message.Message, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE room_id = $1 AND NOT is_deleted`, roomID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+messageColumns+`
		FROM chat_messages m
		WHERE m.room_id = $1 AND NOT m.is_deleted
		ORDER BY m.created_at DESC, m.id DESC
		OFFSET $2 LIMIT $3`, roomID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	msgs, err := collectMessages(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.loadRelations(ctx, msgs); err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func (r *PostgresMessageRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) (message.Message, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE chat_messages
		SET original_content = COALESCE(original_content, content),
			content = $2, is_edited = TRUE, edited_at = $3, updated_at = $3
		WHERE id = $1 AND NOT is_deleted`, id, content, editedAt)
	if err != nil {
		return message.Message{}, err
	}
	if tag.RowsAffected() == 0 {
		return message.Message{}, chat_errors.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresMessageRepository) SoftDelete(ctx context.Context, id uuid.UUID, deletedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE chat_messages
		SET is_deleted = TRUE, deleted_at = $2, content = $3, updated_at = $2
		WHERE id = $1 AND NOT is_deleted`, id, deletedAt, message.DeletedContent)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) UpsertReaction(ctx context.Context, id uuid.UUID, userID, emoji string, at time.Time) ([]message.Reaction, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_message_reactions (message_id, user_id, emoji, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (message_id, user_id) DO UPDATE SET emoji = EXCLUDED.emoji, created_at = EXCLUDED.created_at`,
		id, userID, emoji, at)
	if err != nil {
		return nil, err
	}
	return r.listReactions(ctx, id)
}

func (r *PostgresMessageRepository) RemoveReaction(ctx context.Context, id uuid.UUID, userID string) ([]message.Reaction, error) {
	_, err := r.db.Exec(ctx,
		`DELETE FROM chat_message_reactions WHERE message_id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return nil, err
	}
	return r.listReactions(ctx, id)
}

func (r *PostgresMessageRepository) MarkRead(ctx context.Context, roomID, userID string, ids []uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	var marked []uuid.UUID
	err := WithTx(ctx, r.db, func(tx DBTX) error {
		var (
			rows pgx.Rows
			err  error
		)
		if len(ids) == 0 {
			rows, err = tx.Query(ctx, `
				INSERT INTO chat_read_receipts (message_id, user_id, read_at)
				SELECT m.id, $2, $3 FROM chat_messages m
				WHERE m.room_id = $1 AND NOT m.is_deleted AND m.sender_id <> $2
				ON CONFLICT (message_id, user_id) DO NOTHING
				RETURNING message_id`, roomID, userID, at)
		} else {
			rows, err = tx.Query(ctx, `
				INSERT INTO chat_read_receipts (message_id, user_id, read_at)
				SELECT m.id, $2, $3 FROM chat_messages m
				WHERE m.room_id = $1 AND NOT m.is_deleted AND m.id = ANY($4::uuid[])
				ON CONFLICT (message_id, user_id) DO NOTHING
				RETURNING message_id`, roomID, userID, at, uuidStrings(ids))
		}
		if err != nil {
			return err
		}
		marked, err = pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
		if err != nil {
			return err
		}
		if len(marked) == 0 {
			return nil
		}
		_, err = tx.Exec(ctx, `
			UPDATE chat_messages SET status = 'read'
			WHERE id = ANY($1::uuid[]) AND sender_id <> $2`, uuidStrings(marked), userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return marked, nil
}

func (r *PostgresMessageRepository) ListParticipants(ctx context.Context, roomID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT sender_id FROM chat_messages
		WHERE room_id = $1
		GROUP BY sender_id
		ORDER BY MIN(created_at)`, roomID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *PostgresMessageRepository) ListRoomsForUser(ctx context.Context, userID string) ([]RoomSummary, error) {
	rows, err := r.db.Query(ctx, `
		WITH my_rooms AS (
			SELECT room_id FROM chat_messages WHERE sender_id = $1
			UNION
			SELECT cm.room_id FROM chat_read_receipts rr
			JOIN chat_messages cm ON cm.id = rr.message_id
			WHERE rr.user_id = $1
		), last AS (
			SELECT DISTINCT ON (m.room_id) `+messageColumns+`
			FROM chat_messages m
			JOIN my_rooms USING (room_id)
			WHERE NOT m.is_deleted
			ORDER BY m.room_id, m.created_at DESC, m.id DESC
		)
		SELECT `+messageColumns+`,
			(SELECT COUNT(*) FROM chat_messages u
			 WHERE u.room_id = m.room_id AND NOT u.is_deleted AND u.sender_id <> $1
			   AND NOT EXISTS (SELECT 1 FROM chat_read_receipts x WHERE x.message_id = u.id AND x.user_id = $1)
			) AS unread
		FROM last m
		ORDER BY m.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []RoomSummary
	for rows.Next() {
		var unread int64
		m, err := scanMessage(rows, &unread)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, RoomSummary{
			RoomID:       m.RoomID,
			RoomCategory: m.RoomCategory,
			LastMessage:  m,
			UnreadCount:  unread,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	msgs := make([]message.Message, len(summaries))
	for i := range summaries {
		msgs[i] = summaries[i].LastMessage
	}
	if err := r.loadRelations(ctx, msgs); err != nil {
		return nil, err
	}
	for i := range summaries {
		summaries[i].LastMessage = msgs[i]
	}
	return summaries, nil
}

func (r *PostgresMessageRepository) listReactions(ctx context.Context, id uuid.UUID) ([]message.Reaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, emoji, created_at FROM chat_message_reactions
		WHERE message_id = $1 ORDER BY created_at, user_id`, id)
	if err != nil {
		return nil, err
	}
	reactions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (message.Reaction, error) {
		var re message.Reaction
		err := row.Scan(&re.UserID, &re.Emoji, &re.CreatedAt)
		return re, err
	})
	if err != nil {
		return nil, err
	}
	if reactions == nil {
		reactions = []message.Reaction{}
	}
	return reactions, nil
}

// loadRelations fills reactions and read receipts for msgs in place.
func (r *PostgresMessageRepository) loadRelations(ctx context.Context, msgs []message.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	index := make(map[uuid.UUID]int, len(msgs))
	ids := make([]uuid.UUID, len(msgs))
	for i := range msgs {
		index[msgs[i].ID] = i
		ids[i] = msgs[i].ID
		msgs[i].Reactions = []message.Reaction{}
		msgs[i].ReadBy = []message.ReadReceipt{}
	}

	rows, err := r.db.Query(ctx, `
		SELECT message_id, user_id, emoji, created_at FROM chat_message_reactions
		WHERE message_id = ANY($1::uuid[]) ORDER BY created_at, user_id`, uuidStrings(ids))
	if err != nil {
		return err
	}
	for rows.Next() {
		var (
			id uuid.UUID
			re message.Reaction
		)
		if err := rows.Scan(&id, &re.UserID, &re.Emoji, &re.CreatedAt); err != nil {
			rows.Close()
			return err
		}
		if i, ok := index[id]; ok {
			msgs[i].Reactions = append(msgs[i].Reactions, re)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.db.Query(ctx, `
		SELECT message_id, user_id, read_at FROM chat_read_receipts
		WHERE message_id = ANY($1::uuid[]) ORDER BY read_at, user_id`, uuidStrings(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id uuid.UUID
			rr message.ReadReceipt
		)
		if err := rows.Scan(&id, &rr.UserID, &rr.ReadAt); err != nil {
			return err
		}
		if i, ok := index[id]; ok {
			msgs[i].ReadBy = append(msgs[i].ReadBy, rr)
		}
	}
	return rows.Err()
}

func collectMessages(rows pgx.Rows) ([]message.Message, error) {
	defer rows.Close()
	msgs := []message.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// scanMessage reads the messageColumns projection. extra receives any
// columns selected after it.
func scanMessage(row pgx.Row, extra ...any) (message.Message, error) {
	var (
		m                         message.Message
		msgType, category, status string
		original                  *string
	)
	dest := []any{
		&m.ID, &m.SenderID, &m.Content, &msgType, &m.RoomID, &category,
		&m.JourneyID, &m.Location, &m.ParentMessageID, &m.Attachments, &status, &m.IsEdited,
		&m.EditedAt, &original, &m.IsDeleted, &m.DeletedAt, &m.CreatedAt, &m.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return message.Message{}, err
	}
	m.Type = message.Type(msgType)
	m.RoomCategory = room.Category(category)
	m.Status = message.Status(status)
	if original != nil {
		m.OriginalContent = *original
	}
	if m.Attachments == nil {
		m.Attachments = []message.Attachment{}
	}
	return m, nil
}
