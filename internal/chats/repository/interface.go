package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Chat struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Title         string
	MessageCount  int
	LastMessage   *string
	LastMessageAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Message struct {
	ID        uuid.UUID
	ChatID    uuid.UUID
	Role      string
	Content   string
	CreatedAt time.Time
}

// Repository is the chats data access contract. Every call is scoped to the
// owning user; other users' chats are NotFound.
type Repository interface {
	ListChats(ctx context.Context, userID uuid.UUID, offset, limit int) ([]Chat, int, error)
	CreateChat(ctx context.Context, userID uuid.UUID, title string) (Chat, error)
	GetChat(ctx context.Context, userID, chatID uuid.UUID) (Chat, error)
	DeleteChat(ctx context.Context, userID, chatID uuid.UUID) error
	ListMessages(ctx context.Context, userID, chatID uuid.UUID) ([]Message, error)
	// AddMessage inserts the message and updates the chat's counter and last
	// message in one transaction.
	AddMessage(ctx context.Context, userID, chatID uuid.UUID, role, content string) (Message, Chat, error)
}
