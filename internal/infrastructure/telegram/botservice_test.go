package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marzhelp/internal/shared/config"
	apperrors "marzhelp/internal/shared/errors"
	"marzhelp/internal/shared/logger"
)

func newTestBot(t *testing.T, handler http.HandlerFunc) *BotService {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewBotService(&config.TelegramConfig{
		BotToken:   "test-token",
		APIBaseURL: server.URL,
	}, logger.NewLogger())
}

func TestSendMessage(t *testing.T) {
	var got sendMessageRequest
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	})

	err := bot.SendMessage(context.Background(), 42, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ChatID)
	assert.Equal(t, "hello", got.Text)
	assert.Nil(t, got.ReplyMarkup)
}

func TestSendMessageWithInlineKeyboard(t *testing.T) {
	var got sendMessageRequest
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	})

	markup := &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{{Text: "Renew", CallbackData: "renew:1"}},
		},
	}
	err := bot.SendMessageWithInlineKeyboard(context.Background(), 42, "choose", markup)
	require.NoError(t, err)
	require.NotNil(t, got.ReplyMarkup)
	assert.Equal(t, "Renew", got.ReplyMarkup.InlineKeyboard[0][0].Text)
}

func TestSendMessageAPIError(t *testing.T) {
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"chat not found"}`))
	})

	err := bot.SendMessage(context.Background(), 42, "hello")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailableError(err))
}

func TestNotifierRejectsBadRecipient(t *testing.T) {
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for invalid recipient")
	})
	notifier := NewNotifier(bot)

	err := notifier.Send(context.Background(), "not-a-chat-id", "hello")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}
