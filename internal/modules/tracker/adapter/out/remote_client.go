package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"activitylog/internal/modules/tracker/dto"
	trackerin "activitylog/internal/modules/tracker/port/in"
	apperrors "activitylog/internal/platform/errors"
)

// RemoteClient drives the tracker of a running instance through its HTTP API,
// so one-shot commands never write to the database themselves.
type RemoteClient struct {
	baseURL string
	http    *http.Client
}

var _ trackerin.Controller = (*RemoteClient)(nil)

// NewRemoteClient accepts a listen address such as ":7878" or "127.0.0.1:7878",
// or a full http:// URL.
func NewRemoteClient(addr string, timeout time.Duration) (*RemoteClient, error) {
	base, err := baseURL(addr)
	if err != nil {
		return nil, err
	}
	return &RemoteClient{baseURL: base, http: &http.Client{Timeout: timeout}}, nil
}

func (c *RemoteClient) Start(ctx context.Context, input dto.StartInput) (dto.StateOutput, error) {
	return c.post(ctx, "/api/start", input)
}

func (c *RemoteClient) Switch(ctx context.Context, input dto.StartInput) (dto.StateOutput, error) {
	return c.post(ctx, "/api/switch", input)
}

func (c *RemoteClient) Stop(ctx context.Context, input dto.StopInput) (dto.StateOutput, error) {
	return c.post(ctx, "/api/stop", input)
}

func (c *RemoteClient) Tick(ctx context.Context, input dto.TickInput) (dto.StateOutput, error) {
	return c.post(ctx, "/api/tick", input)
}

func (c *RemoteClient) Status(ctx context.Context) (dto.StateOutput, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/state", nil)
	if err != nil {
		return dto.StateOutput{}, err
	}
	return c.do(req)
}

func (c *RemoteClient) post(ctx context.Context, path string, body any) (dto.StateOutput, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return dto.StateOutput{}, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return dto.StateOutput{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *RemoteClient) do(req *http.Request) (dto.StateOutput, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return dto.StateOutput{}, fmt.Errorf("no running tracker at %s (start one with `activitylog serve`): %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return dto.StateOutput{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &body)
		if body.Error == "" {
			body.Error = resp.Status
		}
		return dto.StateOutput{}, remoteError(resp.StatusCode, body.Error)
	}
	var out dto.StateOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return dto.StateOutput{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func remoteError(status int, msg string) error {
	switch status {
	case http.StatusBadRequest:
		return fmt.Errorf("%s: %w", msg, apperrors.ErrInvalidInput)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, apperrors.ErrNotFound)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%s: %w", msg, apperrors.ErrSequencerClosed)
	default:
		return fmt.Errorf("tracker returned %d: %s", status, msg)
	}
}

func baseURL(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("http listen address is not configured: %w", apperrors.ErrInvalidInput)
	}
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimRight(addr, "/"), nil
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("listen address %q: %v: %w", addr, err, apperrors.ErrInvalidInput)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port), nil
}
