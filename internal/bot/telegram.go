package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// Telegram Bot API wire types, reduced to the fields the bot reads.
type (
	Update struct {
		UpdateID int64    `json:"update_id"`
		Message  *Message `json:"message"`
	}

	Message struct {
		MessageID int64  `json:"message_id"`
		Text      string `json:"text"`
		Chat      Chat   `json:"chat"`
	}

	Chat struct {
		ID int64 `json:"id"`
	}

	ReplyKeyboardMarkup struct {
		Keyboard       [][]KeyboardButton `json:"keyboard"`
		ResizeKeyboard bool               `json:"resize_keyboard"`
	}

	KeyboardButton struct {
		Text string `json:"text"`
	}

	apiResponse struct {
		OK          bool            `json:"ok"`
		Result      json.RawMessage `json:"result"`
		Description string          `json:"description"`
	}
)

// TelegramClient talks to the Telegram Bot API over plain HTTP.
type TelegramClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewTelegramClient builds a client for api.telegram.org. baseURL is
// overridable for tests.
func NewTelegramClient(token, baseURL string, pollTimeout time.Duration) *TelegramClient {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &TelegramClient{
		// The HTTP timeout must outlast the long-poll window.
		httpClient: &http.Client{Timeout: pollTimeout + 10*time.Second},
		baseURL:    baseURL,
		token:      token,
	}
}

func (c *TelegramClient) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

func (c *TelegramClient) call(ctx context.Context, method string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	return decodeAPIResponse(resp, method)
}

// GetUpdates long-polls for new updates after offset.
func (c *TelegramClient) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	raw, err := c.call(ctx, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message"},
	})
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

// SendMessage sends a text message, optionally with a reply keyboard.
func (c *TelegramClient) SendMessage(ctx context.Context, chatID int64, text string, keyboard *ReplyKeyboardMarkup) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}
	_, err := c.call(ctx, "sendMessage", payload)
	return err
}

// SendDocument uploads a document via multipart form data.
func (c *TelegramClient) SendDocument(ctx context.Context, chatID int64, filename string, doc []byte, caption string) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("write chat_id field: %w", err)
	}
	if caption != "" {
		if err := mw.WriteField("caption", caption); err != nil {
			return fmt.Errorf("write caption field: %w", err)
		}
	}
	part, err := mw.CreateFormFile("document", filename)
	if err != nil {
		return fmt.Errorf("create document part: %w", err)
	}
	if _, err := part.Write(doc); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendDocument"), &buf)
	if err != nil {
		return fmt.Errorf("build sendDocument request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call sendDocument: %w", err)
	}
	defer resp.Body.Close()

	_, err = decodeAPIResponse(resp, "sendDocument")
	return err
}

func decodeAPIResponse(resp *http.Response, method string) (json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if !apiResp.OK {
		return nil, fmt.Errorf("%s failed: %s", method, apiResp.Description)
	}
	return apiResp.Result, nil
}
