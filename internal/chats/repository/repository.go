package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/db"
)

const chatNotFoundMessage = "chat not found"

const chatColumns = `id, user_id, title, message_count, last_message, last_message_at, created_at, updated_at`

const listChatsQuery = `
	SELECT ` + chatColumns + `
	FROM chats
	WHERE user_id = $1
	ORDER BY COALESCE(last_message_at, created_at) DESC, id
	LIMIT $2 OFFSET $3`

const lockChatQuery = `SELECT id FROM chats WHERE id = $1 AND user_id = $2 FOR UPDATE`

const insertMessageQuery = `
	INSERT INTO messages (id, chat_id, role, content)
	VALUES ($1, $2, $3, $4)
	RETURNING id, chat_id, role, content, created_at`

const bumpChatQuery = `
	UPDATE chats
	SET message_count = message_count + 1,
		last_message = $2,
		last_message_at = $3,
		updated_at = now()
	WHERE id = $1
	RETURNING ` + chatColumns

// Repo implements the chats repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChat(row rowScanner) (Chat, error) {
	var c Chat
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.MessageCount, &c.LastMessage, &c.LastMessageAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanMessage(row rowScanner) (Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.CreatedAt)
	return m, err
}

func (r *Repo) ListChats(ctx context.Context, userID uuid.UUID, offset, limit int) ([]Chat, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chats WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count chats: %w", err)
	}

	rows, err := r.pool.Query(ctx, listChatsQuery, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	chats := make([]Chat, 0)
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, c)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate chats: %w", rows.Err())
	}
	return chats, total, nil
}

func (r *Repo) CreateChat(ctx context.Context, userID uuid.UUID, title string) (Chat, error) {
	chat, err := scanChat(r.pool.QueryRow(ctx, `
		INSERT INTO chats (id, user_id, title)
		VALUES ($1, $2, $3)
		RETURNING `+chatColumns, uuid.New(), userID, title))
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Chat{}, apperr.NotFound("user not found")
		}
		return Chat{}, fmt.Errorf("create chat: %w", err)
	}
	return chat, nil
}

func (r *Repo) GetChat(ctx context.Context, userID, chatID uuid.UUID) (Chat, error) {
	chat, err := scanChat(r.pool.QueryRow(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE id = $1 AND user_id = $2`, chatID, userID))
	if err != nil {
		if db.IsNoRows(err) {
			return Chat{}, apperr.NotFound(chatNotFoundMessage)
		}
		return Chat{}, fmt.Errorf("get chat: %w", err)
	}
	return chat, nil
}

// DeleteChat removes the chat; its messages cascade.
func (r *Repo) DeleteChat(ctx context.Context, userID, chatID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM chats WHERE id = $1 AND user_id = $2`, chatID, userID)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(chatNotFoundMessage)
	}
	return nil
}

func (r *Repo) ListMessages(ctx context.Context, userID, chatID uuid.UUID) ([]Message, error) {
	if _, err := r.GetChat(ctx, userID, chatID); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, chat_id, role, content, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at, id`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}
	return messages, nil
}

func (r *Repo) AddMessage(ctx context.Context, userID, chatID uuid.UUID, role, content string) (msg Message, chat Chat, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Message{}, Chat{}, fmt.Errorf("begin message tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var lockedID uuid.UUID
	if err = tx.QueryRow(ctx, lockChatQuery, chatID, userID).Scan(&lockedID); err != nil {
		if db.IsNoRows(err) {
			return Message{}, Chat{}, apperr.NotFound(chatNotFoundMessage)
		}
		return Message{}, Chat{}, fmt.Errorf("lock chat: %w", err)
	}

	msg, err = scanMessage(tx.QueryRow(ctx, insertMessageQuery, uuid.New(), chatID, role, content))
	if err != nil {
		return Message{}, Chat{}, fmt.Errorf("insert message: %w", err)
	}

	chat, err = scanChat(tx.QueryRow(ctx, bumpChatQuery, chatID, content, msg.CreatedAt))
	if err != nil {
		return Message{}, Chat{}, fmt.Errorf("update chat counters: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return Message{}, Chat{}, fmt.Errorf("commit message tx: %w", err)
	}
	return msg, chat, nil
}
