package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"vitelis_backend/internal/chats/repository"
	"vitelis_backend/internal/chats/transport"
	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/logger"
)

type fakeRepo struct {
	chats    map[uuid.UUID]repository.Chat
	messages map[uuid.UUID][]repository.Message
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{chats: map[uuid.UUID]repository.Chat{}, messages: map[uuid.UUID][]repository.Message{}}
}

func (f *fakeRepo) ListChats(_ context.Context, userID uuid.UUID, _, _ int) ([]repository.Chat, int, error) {
	var out []repository.Chat
	for _, c := range f.chats {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) CreateChat(_ context.Context, userID uuid.UUID, title string) (repository.Chat, error) {
	c := repository.Chat{ID: uuid.New(), UserID: userID, Title: title, CreatedAt: time.Now()}
	f.chats[c.ID] = c
	return c, nil
}

func (f *fakeRepo) GetChat(_ context.Context, userID, chatID uuid.UUID) (repository.Chat, error) {
	c, ok := f.chats[chatID]
	if !ok || c.UserID != userID {
		return repository.Chat{}, apperr.NotFound("chat not found")
	}
	return c, nil
}

func (f *fakeRepo) DeleteChat(ctx context.Context, userID, chatID uuid.UUID) error {
	if _, err := f.GetChat(ctx, userID, chatID); err != nil {
		return err
	}
	delete(f.chats, chatID)
	delete(f.messages, chatID)
	return nil
}

func (f *fakeRepo) ListMessages(ctx context.Context, userID, chatID uuid.UUID) ([]repository.Message, error) {
	if _, err := f.GetChat(ctx, userID, chatID); err != nil {
		return nil, err
	}
	return f.messages[chatID], nil
}

func (f *fakeRepo) AddMessage(ctx context.Context, userID, chatID uuid.UUID, role, content string) (repository.Message, repository.Chat, error) {
	c, err := f.GetChat(ctx, userID, chatID)
	if err != nil {
		return repository.Message{}, repository.Chat{}, err
	}
	m := repository.Message{ID: uuid.New(), ChatID: chatID, Role: role, Content: content, CreatedAt: time.Now()}
	f.messages[chatID] = append(f.messages[chatID], m)
	c.MessageCount++
	c.LastMessage = &content
	c.LastMessageAt = &m.CreatedAt
	f.chats[chatID] = c
	return m, c, nil
}

func TestCreateChatDefaultsTitle(t *testing.T) {
	svc := New(newFakeRepo(), logger.Discard())

	got, err := svc.CreateChat(context.Background(), uuid.New(), transport.CreateChatRequest{Title: "  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Title != "New chat" {
		t.Fatalf("expected default title, got %q", got.Title)
	}
}

func TestAddMessageUpdatesCounterAndPreview(t *testing.T) {
	svc := New(newFakeRepo(), logger.Discard())
	ctx := context.Background()
	user := uuid.New()
	chat, _ := svc.CreateChat(ctx, user, transport.CreateChatRequest{Title: "Acme"})

	_, _ = svc.AddMessage(ctx, user, chat.ID, transport.AddMessageRequest{Role: "user", Content: "hello"})
	got, err := svc.AddMessage(ctx, user, chat.ID, transport.AddMessageRequest{Role: "assistant", Content: "hi there"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got.Chat.MessageCount != 2 || got.Chat.LastMessage == nil || *got.Chat.LastMessage != "hi there" {
		t.Fatalf("unexpected chat %+v", got.Chat)
	}

	messages, err := svc.ListMessages(ctx, user, chat.ID)
	if err != nil || len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d (%v)", len(messages), err)
	}
}

func TestChatsAreOwnerScoped(t *testing.T) {
	svc := New(newFakeRepo(), logger.Discard())
	ctx := context.Background()
	chat, _ := svc.CreateChat(ctx, uuid.New(), transport.CreateChatRequest{Title: "mine"})
	stranger := uuid.New()

	if _, err := svc.GetChat(ctx, stranger, chat.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err := svc.AddMessage(ctx, stranger, chat.ID, transport.AddMessageRequest{Role: "user", Content: "x"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.DeleteChat(ctx, stranger, chat.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddMessageRejectsUnknownRole(t *testing.T) {
	svc := New(newFakeRepo(), logger.Discard())
	_, err := svc.AddMessage(context.Background(), uuid.New(), uuid.New(), transport.AddMessageRequest{Role: "system", Content: "x"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPreviewTruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("é", 500)
	got := Preview(long)
	if utf8.RuneCountInString(got) != 280 || !strings.HasSuffix(got, "…") {
		t.Fatalf("unexpected preview length %d", utf8.RuneCountInString(got))
	}
	if Preview(" short ") != "short" {
		t.Fatalf("short messages are kept")
	}
}
