// Package eapi is a minimal JSON-RPC 2.0 client for the switch
// command API. The dispatcher uses it to apply configuration batches
// on health transitions.
package eapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"pingcheck/pkg/log"
)

const (
	commandAPIPath = "/command-api"
	requestTimeout = 30 * time.Second
	retryWaitMin   = 500 * time.Millisecond
	retryWaitMax   = 2 * time.Second
)

// Config carries the connection settings for one switch endpoint.
type Config struct {
	Endpoint    string // base URL, e.g. https://switch1
	Username    string
	Password    string
	InsecureTLS bool
	// RetryMax caps transport-level retries. Zero means a failed POST
	// is reported after a single attempt; an apply must never be
	// multiplied because the switch was slow to answer.
	RetryMax int
}

// Client submits command batches to one switch.
type Client struct {
	url      string
	username string
	password string
	client   *retryablehttp.Client
	logger   zerolog.Logger
	seq      atomic.Int64
}

// NewClient builds a client for the given switch.
func NewClient(cfg Config) *Client {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.Logger = nil // Disable retryablehttp logging
	client.CheckRetry = transportRetryPolicy
	client.HTTPClient.Timeout = requestTimeout

	if cfg.InsecureTLS {
		if transport, ok := client.HTTPClient.Transport.(*http.Transport); ok {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via -eapi-insecure
		}
	}

	return &Client{
		url:      strings.TrimRight(cfg.Endpoint, "/") + commandAPIPath,
		username: cfg.Username,
		password: cfg.Password,
		client:   client,
		logger:   log.Component("eapi"),
	}
}

// transportRetryPolicy only retries when no response arrived at all.
// A response, any response, is an answer from the switch and retrying
// it could run the command batch twice.
func transportRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if resp != nil {
		return false, nil
	}
	if err != nil {
		return true, nil //nolint:nilerr // retryablehttp carries the error itself
	}
	return false, nil
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      string    `json:"id"`
}

type rpcParams struct {
	Version int      `json:"version"`
	Cmds    []string `json:"cmds"`
	Format  string   `json:"format"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    []rpcDatum `json:"data"`
}

type rpcDatum struct {
	Errors []string `json:"errors"`
}

// CommandError is a failed command batch as the switch reported it.
type CommandError struct {
	Code    int
	Message string
	Details []string
}

func (e *CommandError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("eapi error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("eapi error %d: %s: %s", e.Code, e.Message, strings.Join(e.Details, "; "))
}

// Apply runs the command batch in configure mode. Privilege and
// configure prefixes are added here, so action files carry only the
// configuration lines themselves.
func (c *Client) Apply(ctx context.Context, cmds []string) error {
	full := make([]string, 0, len(cmds)+2)
	full = append(full, "enable", "configure")
	full = append(full, cmds...)

	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "runCmds",
		Params:  rpcParams{Version: 1, Cmds: full, Format: "json"},
		ID:      fmt.Sprintf("pingcheck-%d", c.seq.Add(1)),
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", c.url, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, c.url)
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if decoded.Error != nil {
		cmdErr := &CommandError{Code: decoded.Error.Code, Message: decoded.Error.Message}
		for _, datum := range decoded.Error.Data {
			cmdErr.Details = append(cmdErr.Details, datum.Errors...)
		}
		return cmdErr
	}
	return nil
}
