package visa

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"visamcp/internal/config"
	"visamcp/pkg/logging"
)

const (
	logSubsystem = "VisaClient"

	// requestTimeout bounds a single request/response cycle. There are no
	// retries; every operation is a single attempt.
	requestTimeout = 30 * time.Second
)

// Client is an authenticated Visa API client. The zero state is "unready":
// the mutual-TLS transport is built lazily on the first operation call and
// reused afterwards. Client is safe for concurrent use.
type Client struct {
	cfg     *config.Config
	baseURL string

	mu         sync.Mutex
	httpClient *http.Client
}

// NewClient creates a client for the given configuration. No certificate
// material is read here; failures surface on the first operation call.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:     cfg,
		baseURL: cfg.VisaBaseURL(),
	}
}

// Ready reports whether the authenticated channel has been established.
func (c *Client) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.httpClient != nil
}

// ensureClient returns the shared HTTP client, building it on first use.
// The first successful build wins; a failed build is not cached, so the
// certificate and key paths are re-checked on every subsequent call.
func (c *Client) ensureClient() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.httpClient != nil {
		return c.httpClient, nil
	}

	if _, err := os.Stat(c.cfg.CertPath); err != nil {
		logging.Warn(logSubsystem, "Client certificate not found at %s; Visa API calls will fail until it is provided", c.cfg.CertPath)
		return nil, &ConfigError{Reason: fmt.Sprintf("client certificate not found at %s", c.cfg.CertPath)}
	}
	if _, err := os.Stat(c.cfg.KeyPath); err != nil {
		logging.Warn(logSubsystem, "Client private key not found at %s; Visa API calls will fail until it is provided", c.cfg.KeyPath)
		return nil, &ConfigError{Reason: fmt.Sprintf("client private key not found at %s", c.cfg.KeyPath)}
	}

	tlsConfig, err := c.buildTLSConfig()
	if err != nil {
		logging.Warn(logSubsystem, "Failed to build TLS configuration: %v", err)
		return nil, &ConfigError{Reason: err.Error()}
	}

	c.httpClient = &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: tlsConfig,
		},
		Timeout: requestTimeout,
	}

	logging.Info(logSubsystem, "Established mutual-TLS channel to %s", c.baseURL)
	return c.httpClient, nil
}

// buildTLSConfig loads the client key pair and optional trust anchors.
// Server certificate verification is always enabled.
func (c *Client) buildTLSConfig() (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(c.cfg.CertPath, c.cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load client TLS key pair: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	if c.cfg.CAPath != "" {
		caCert, err := os.ReadFile(c.cfg.CAPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("no certificates found in CA file %s", c.cfg.CAPath)
		}
		tlsConfig.RootCAs = caPool
	}

	return tlsConfig, nil
}

// do performs exactly one request against the Visa API and returns the raw
// response body. Callers own the interpretation of the payload.
func (c *Client) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	httpClient, err := c.ensureClient()
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.SetBasicAuth(c.cfg.UserID, c.cfg.Password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}

	if resp.StatusCode >= 400 {
		msg := upstreamErrorMessage(data)
		if msg == "" {
			msg = fmt.Sprintf("request to %s failed with %s", path, resp.Status)
		}
		logging.Debug(logSubsystem, "Upstream error on %s %s: status=%d message=%q", method, path, resp.StatusCode, msg)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if len(data) == 0 {
		return json.RawMessage(`{}`), nil
	}
	return json.RawMessage(data), nil
}

// upstreamErrorMessage extracts the Visa error message from a response body.
// Visa APIs report errors under a few different envelopes; all of them carry
// a human-readable "message" field somewhere.
func upstreamErrorMessage(data []byte) string {
	var envelope struct {
		Message        string `json:"message"`
		ResponseStatus struct {
			Message string `json:"message"`
		} `json:"responseStatus"`
		ErrorResponse struct {
			Message string `json:"message"`
		} `json:"errorResponse"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ""
	}
	switch {
	case envelope.ResponseStatus.Message != "":
		return envelope.ResponseStatus.Message
	case envelope.ErrorResponse.Message != "":
		return envelope.ErrorResponse.Message
	default:
		return envelope.Message
	}
}
