// Package telegram implements notification delivery through the
// Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"marzhelp/internal/shared/config"
	apperrors "marzhelp/internal/shared/errors"
	"marzhelp/internal/shared/logger"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// InlineKeyboardButton is one button of an inline keyboard.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

// InlineKeyboardMarkup is an inline keyboard attached to a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// BotService sends messages through the Telegram Bot API.
type BotService struct {
	token      string
	apiBaseURL string
	httpClient *http.Client
	logger     logger.Interface
}

// NewBotService creates a BotService from configuration.
func NewBotService(cfg *config.TelegramConfig, log logger.Interface) *BotService {
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BotService{
		token:      cfg.BotToken,
		apiBaseURL: baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

type sendMessageRequest struct {
	ChatID      int64                 `json:"chat_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// SendMessage delivers a plain text message to a chat.
func (s *BotService) SendMessage(ctx context.Context, chatID int64, text string) error {
	return s.send(ctx, sendMessageRequest{ChatID: chatID, Text: text, ParseMode: "HTML"})
}

// SendMessageWithInlineKeyboard delivers a message with an inline
// keyboard attached.
func (s *BotService) SendMessageWithInlineKeyboard(ctx context.Context, chatID int64, text string, markup *InlineKeyboardMarkup) error {
	return s.send(ctx, sendMessageRequest{ChatID: chatID, Text: text, ParseMode: "HTML", ReplyMarkup: markup})
}

func (s *BotService) send(ctx context.Context, payload sendMessageRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.NewInternalError("failed to encode telegram request", err.Error())
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBaseURL, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewInternalError("failed to build telegram request", err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperrors.NewUnavailableError("telegram request failed", err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewUnavailableError("failed to read telegram response", err.Error())
	}

	var apiResp apiResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return apperrors.NewUnavailableError("failed to decode telegram response",
			fmt.Sprintf("status %d: %s", resp.StatusCode, string(raw)))
	}
	if !apiResp.OK {
		s.logger.Warnw("telegram api rejected message",
			"chat_id", payload.ChatID,
			"error_code", apiResp.ErrorCode,
			"description", apiResp.Description)
		return apperrors.NewUnavailableError("telegram api error", apiResp.Description)
	}
	return nil
}
