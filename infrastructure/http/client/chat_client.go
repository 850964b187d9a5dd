// Package client wraps the relay's JSON surface behind the IChatClient
// contract so callers never touch wire types.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/infrastructure/http/wire"
)

var _ contract.IChatClient = (*ChatClient)(nil)

type ChatClient struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

func NewChatClient(baseURL string, timeout time.Duration, log *slog.Logger) *ChatClient {
	return &ChatClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *ChatClient) SendMessage(ctx context.Context, username, text string) (domain.Message, error) {
	payload, err := json.Marshal(wire.PostMessageRequest{Username: username, Message: text})
	if err != nil {
		return domain.Message{}, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(payload))
	if err != nil {
		return domain.Message{}, err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.http.Do(request)
	if err != nil {
		return domain.Message{}, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return domain.Message{}, decodeError(response)
	}

	var body wire.PostMessageResponse
	if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
		return domain.Message{}, err
	}

	message, err := toDomainMessage(body.Message)
	if err != nil {
		return domain.Message{}, err
	}

	c.log.Debug(fmt.Sprintf("Message %d delivered", message.ID))
	return message, nil
}

func (c *ChatClient) GetMessages(ctx context.Context, since int) ([]domain.Message, int, error) {
	var body wire.MessagesResponse
	if err := c.getJSON(ctx, c.baseURL+"/messages?since="+strconv.Itoa(since), &body); err != nil {
		return nil, 0, err
	}

	messages, err := toDomainMessages(body.Messages)
	if err != nil {
		return nil, 0, err
	}
	return messages, body.Total, nil
}

func (c *ChatClient) GetStatus(ctx context.Context) (domain.Status, error) {
	var body wire.StatusResponse
	if err := c.getJSON(ctx, c.baseURL+"/status", &body); err != nil {
		return domain.Status{}, err
	}

	if body.Status != wire.StatusOnline {
		return domain.Status{}, fmt.Errorf("server reports status %q", body.Status)
	}
	return domain.Status{MessageCount: body.MessageCount}, nil
}

func (c *ChatClient) Search(ctx context.Context, terms string, limit int) ([]domain.Message, error) {
	query := url.Values{}
	query.Set("q", terms)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var body wire.SearchResponse
	if err := c.getJSON(ctx, c.baseURL+"/search?"+query.Encode(), &body); err != nil {
		return nil, err
	}
	return toDomainMessages(body.Results)
}

func (c *ChatClient) getJSON(ctx context.Context, endpoint string, out any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	response, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return decodeError(response)
	}
	return json.NewDecoder(response.Body).Decode(out)
}

// decodeError surfaces the server's own wording when it explains itself,
// and falls back to the bare status code when it does not.
func decodeError(response *http.Response) error {
	var apiErr wire.ErrorResponse
	if err := json.NewDecoder(response.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
		return fmt.Errorf("server replied %d", response.StatusCode)
	}
	return fmt.Errorf("server replied %d: %s", response.StatusCode, apiErr.Error)
}

func toDomainMessage(message wire.Message) (domain.Message, error) {
	at, err := time.Parse(domain.WireTimeLayout, message.Timestamp)
	if err != nil {
		return domain.Message{}, fmt.Errorf("malformed timestamp %q: %w", message.Timestamp, err)
	}

	return domain.Message{
		ID:       message.ID,
		Username: message.Username,
		Text:     message.Message,
		At:       at,
	}, nil
}

func toDomainMessages(messages []wire.Message) ([]domain.Message, error) {
	out := make([]domain.Message, 0, len(messages))
	for _, message := range messages {
		converted, err := toDomainMessage(message)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}
