package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTelegramSendMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	client := NewTelegramClient(TelegramOptions{Token: "123:abc", BaseURL: srv.URL})
	if err := client.SendMessage(context.Background(), 42, "привет"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if gotPath != "/bot123:abc/sendMessage" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody["chat_id"].(float64) != 42 || gotBody["text"] != "привет" {
		t.Fatalf("body = %v", gotBody)
	}
	if gotBody["parse_mode"] != "HTML" {
		t.Fatalf("parse_mode = %v", gotBody["parse_mode"])
	}
}

func TestTelegramSendMessageBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"description": "Forbidden: bot was blocked by the user",
		})
	}))
	defer srv.Close()

	client := NewTelegramClient(TelegramOptions{Token: "123:abc", BaseURL: srv.URL})
	err := client.SendMessage(context.Background(), 42, "привет")
	if err == nil || !strings.Contains(err.Error(), "blocked by the user") {
		t.Fatalf("err = %v", err)
	}
}
