// Package whatsapp предоставляет клиент для отправки сообщений через UltraMsg.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultBaseURL — адрес API UltraMsg.
const DefaultBaseURL = "https://api.ultramsg.com"

// Client инкапсулирует HTTP-взаимодействие с API UltraMsg.
type Client struct {
	baseURL    string
	instanceID string
	token      string
	httpClient *retryablehttp.Client
}

type chatRequest struct {
	Token string `json:"token"`
	To    string `json:"to"`
	Body  string `json:"body"`
}

// NewClient создаёт клиент для отправки сообщений в указанный инстанс
// UltraMsg. Число повторов и таймаут запроса задаются конфигурацией;
// значение retries 0 означает одну попытку доставки.
func NewClient(baseURL, instanceID, token string, timeout time.Duration, retries int) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retries
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		instanceID: instanceID,
		token:      token,
		httpClient: rc,
	}
}

// Configured сообщает, заданы ли учётные данные мессенджера.
func (c *Client) Configured() bool {
	return c != nil && c.instanceID != "" && c.token != ""
}

// SendMessage отправляет текстовое сообщение на указанный номер.
// Номер должен быть заранее приведён к международному формату.
func (c *Client) SendMessage(ctx context.Context, phone, body string) error {
	if !c.Configured() {
		return fmt.Errorf("whatsapp client not configured")
	}

	payload, err := json.Marshal(chatRequest{
		Token: c.token,
		To:    phone,
		Body:  body,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages/chat", c.baseURL, c.instanceID)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return nil
}
