package repository

import (
	"strings"
	"testing"
)

func TestListChatsOrdersByLatestActivity(t *testing.T) {
	if !strings.Contains(listChatsQuery, "ORDER BY COALESCE(last_message_at, created_at) DESC") {
		t.Fatalf("expected newest-activity ordering, got %s", listChatsQuery)
	}
	if !strings.Contains(listChatsQuery, "WHERE user_id = $1") {
		t.Fatalf("expected owner scoping")
	}
}

func TestAddMessageLocksOwnedChatAndBumpsCounter(t *testing.T) {
	if !strings.Contains(lockChatQuery, "user_id = $2 FOR UPDATE") {
		t.Fatalf("expected owner-scoped row lock, got %s", lockChatQuery)
	}
	if !strings.Contains(bumpChatQuery, "message_count = message_count + 1") {
		t.Fatalf("expected counter increment, got %s", bumpChatQuery)
	}
}
