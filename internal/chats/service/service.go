package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"vitelis_backend/internal/chats/repository"
	"vitelis_backend/internal/chats/transport"
	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/logger"
	"vitelis_backend/platform/sanitize"
)

const (
	defaultTitle   = "New chat"
	previewLength  = 280
	defaultPage    = 1
	defaultPerPage = 20
	maxPerPage     = 100
)

// Service implements owner-scoped chat threads.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) ListChats(ctx context.Context, userID uuid.UUID, req transport.ListChatsRequest) (transport.ChatListResponse, error) {
	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPerPage
	}
	if pageSize > maxPerPage {
		pageSize = maxPerPage
	}

	chats, total, err := s.repo.ListChats(ctx, userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return transport.ChatListResponse{}, err
	}
	items := make([]transport.ChatResponse, len(chats))
	for i, c := range chats {
		items[i] = toChatResponse(c)
	}
	return transport.ChatListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// CreateChat opens a thread. A blank title becomes "New chat".
func (s *Service) CreateChat(ctx context.Context, userID uuid.UUID, req transport.CreateChatRequest) (transport.ChatResponse, error) {
	title := sanitize.Text(req.Title)
	if title == "" {
		title = defaultTitle
	}
	chat, err := s.repo.CreateChat(ctx, userID, title)
	if err != nil {
		return transport.ChatResponse{}, err
	}
	return toChatResponse(chat), nil
}

func (s *Service) GetChat(ctx context.Context, userID, chatID uuid.UUID) (transport.ChatResponse, error) {
	chat, err := s.repo.GetChat(ctx, userID, chatID)
	if err != nil {
		return transport.ChatResponse{}, err
	}
	return toChatResponse(chat), nil
}

func (s *Service) DeleteChat(ctx context.Context, userID, chatID uuid.UUID) error {
	if err := s.repo.DeleteChat(ctx, userID, chatID); err != nil {
		return err
	}
	s.log.Info("chat deleted", "chatId", chatID, "userId", userID)
	return nil
}

func (s *Service) ListMessages(ctx context.Context, userID, chatID uuid.UUID) ([]transport.MessageResponse, error) {
	messages, err := s.repo.ListMessages(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.MessageResponse, len(messages))
	for i, m := range messages {
		out[i] = toMessageResponse(m)
	}
	return out, nil
}

// AddMessage appends a message. The chat keeps a truncated preview of it.
func (s *Service) AddMessage(ctx context.Context, userID, chatID uuid.UUID, req transport.AddMessageRequest) (transport.AddMessageResponse, error) {
	if req.Role != repository.RoleUser && req.Role != repository.RoleAssistant {
		return transport.AddMessageResponse{}, apperr.Validation("role must be user or assistant")
	}
	if strings.TrimSpace(req.Content) == "" {
		return transport.AddMessageResponse{}, apperr.Validation("content is required")
	}

	msg, chat, err := s.repo.AddMessage(ctx, userID, chatID, req.Role, req.Content)
	if err != nil {
		return transport.AddMessageResponse{}, err
	}
	return transport.AddMessageResponse{Message: toMessageResponse(msg), Chat: toChatResponse(chat)}, nil
}

func toChatResponse(c repository.Chat) transport.ChatResponse {
	var preview *string
	if c.LastMessage != nil {
		p := Preview(*c.LastMessage)
		preview = &p
	}
	return transport.ChatResponse{
		ID:            c.ID,
		Title:         c.Title,
		MessageCount:  c.MessageCount,
		LastMessage:   preview,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func toMessageResponse(m repository.Message) transport.MessageResponse {
	return transport.MessageResponse{ID: m.ID, ChatID: m.ChatID, Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt}
}

// Preview shortens s to at most previewLength runes.
func Preview(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= previewLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:previewLength-1]) + "…"
}
