package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"timelock-vault/config"
	"timelock-vault/internal/core/domain"
	"timelock-vault/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	pullPath = "/api/v1/transfers/pull"
	pushPath = "/api/v1/transfers/push"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.TransferPort against the external settlement
// service, which is the system actually holding and moving assets. The
// vault only records custody; every deposit and withdrawal round-trips
// through here.
type Client struct {
	baseURL    string
	apiKey     string
	secret     string
	httpClient HTTPClient
	sigSvc     ports.SignatureService
	log        zerolog.Logger
}

// NewClient creates a settlement client from config.
func NewClient(cfg config.SettlementConfig, sigSvc ports.SignatureService, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		secret:     cfg.Secret,
		httpClient: &http.Client{Timeout: timeout},
		sigSvc:     sigSvc,
		log:        log,
	}
}

// NewClientWithHTTP creates a client with a custom HTTP client.
func NewClientWithHTTP(cfg config.SettlementConfig, sigSvc ports.SignatureService, httpClient HTTPClient, log zerolog.Logger) *Client {
	c := NewClient(cfg, sigSvc, log)
	c.httpClient = httpClient
	return c
}

type pullRequest struct {
	Account  string `json:"account"`
	Asset    string `json:"asset"`
	Amount   int64  `json:"amount"`
	Deadline int64  `json:"deadline"`
	Nonce    string `json:"nonce"`
}

type pushRequest struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Amount  int64  `json:"amount"`
}

type transferResponse struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason"`
}

// PullInto instructs settlement to move the authorized amount into custody.
// A non-accepted response is an error: a deposit cannot half-happen.
func (c *Client) PullInto(ctx context.Context, auth domain.TransferAuthorization) error {
	body := pullRequest{
		Account:  auth.Account.String(),
		Asset:    auth.Asset,
		Amount:   auth.Amount,
		Deadline: auth.Deadline.Unix(),
		Nonce:    auth.Nonce,
	}

	resp, err := c.post(ctx, pullPath, body)
	if err != nil {
		return err
	}
	if !resp.Accepted {
		if resp.Reason == "" {
			resp.Reason = "transfer declined by settlement"
		}
		return fmt.Errorf("settlement pull declined: %s", resp.Reason)
	}
	return nil
}

// PushOut instructs settlement to move the amount back out of custody.
// Returns (false, nil) when settlement declines without a transport fault.
func (c *Client) PushOut(ctx context.Context, account uuid.UUID, asset string, amount int64) (bool, error) {
	body := pushRequest{
		Account: account.String(),
		Asset:   asset,
		Amount:  amount,
	}

	resp, err := c.post(ctx, pushPath, body)
	if err != nil {
		return false, err
	}
	return resp.Accepted, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*transferResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal settlement request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create settlement request: %w", err)
	}

	timestamp := time.Now().Unix()
	nonce := uuid.NewString()
	canonical := c.sigSvc.BuildCanonicalString(http.MethodPost, path, timestamp, nonce, string(payload))

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("X-Timestamp", fmt.Sprintf("%d", timestamp))
	req.Header.Set("X-Nonce", nonce)
	req.Header.Set("X-Signature", c.sigSvc.Sign(c.secret, canonical))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("settlement request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read settlement response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("path", path).
			Msg("settlement returned non-2xx")
		return nil, fmt.Errorf("settlement returned status %d", resp.StatusCode)
	}

	var decoded transferResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode settlement response: %w", err)
	}
	return &decoded, nil
}
