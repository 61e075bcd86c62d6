// Package fcm sends push notifications through the FCM HTTP v1 API.
package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// Error codes that mean the device token will never work again.
const (
	codeUnregistered    = "UNREGISTERED"
	codeInvalidArgument = "INVALID_ARGUMENT"
)

type (
	request struct {
		Message message `json:"message"`
	}

	message struct {
		Token        string            `json:"token"`
		Notification notification      `json:"notification"`
		Data         map[string]string `json:"data,omitempty"`
		Android      android           `json:"android"`
	}

	notification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}

	android struct {
		Priority string `json:"priority"`
		TTL      string `json:"ttl"`
	}

	response struct {
		Name string `json:"name"`
	}

	errorResponse struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
			Details []struct {
				ErrorCode string `json:"errorCode"`
			} `json:"details"`
		} `json:"error"`
	}
)

// Sender posts one message per call. The endpoint is the full messages:send URL of the
// project; the token is a bearer access token.
type Sender struct {
	client   *http.Client
	endpoint string
	token    string
}

func NewSender(client *http.Client, endpoint, token string) *Sender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Sender{client: client, endpoint: endpoint, token: token}
}

// Send returns the FCM message name. A token FCM no longer accepts yields
// ports.ErrInvalidPushToken; throttling and server errors are transient.
func (s *Sender) Send(ctx context.Context, token string, msg ports.PushMessage) (string, error) {
	body, err := json.Marshal(request{Message: message{
		Token:        token,
		Notification: notification{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
		Android:      android{Priority: "high", TTL: "300s"},
	}})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", errs.NewTransientError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errs.NewTransientError(err)
	}

	if resp.StatusCode == http.StatusOK {
		var ok response
		if err = json.Unmarshal(raw, &ok); err != nil {
			return "", fmt.Errorf("decode fcm response: %w", err)
		}
		return ok.Name, nil
	}

	return "", classify(resp.StatusCode, raw)
}

func classify(status int, raw []byte) error {
	var er errorResponse
	_ = json.Unmarshal(raw, &er)

	for _, d := range er.Error.Details {
		if d.ErrorCode == codeUnregistered || d.ErrorCode == codeInvalidArgument {
			return ports.ErrInvalidPushToken
		}
	}
	if er.Error.Status == codeInvalidArgument {
		return ports.ErrInvalidPushToken
	}

	cause := fmt.Errorf("fcm responded %d: %s", status, er.Error.Message)
	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return errs.NewTransientError(cause)
	}
	return cause
}
