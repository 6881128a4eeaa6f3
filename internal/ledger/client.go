// =============================================================================
// Invoice Sync - Ledger Client
// =============================================================================
//
// This module talks to the remote ledger's invoice register over HTTP.
//
// OPERATIONS:
//   FetchIndex    : one GET listing the keys of every invoice the ledger holds
//   CreateInvoice : one form-encoded POST per invoice, header and lines together
//
// Every request carries HTTP basic auth. Requests take a context so the
// caller can bound the whole session; the client itself never retries.
//
// =============================================================================

package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ginjaninja78/invoice-sync/internal/config"
	"github.com/ginjaninja78/invoice-sync/internal/logging"
	"github.com/ginjaninja78/invoice-sync/internal/types"
)

var (
	// ErrRemoteQuery means the index query failed or returned garbage.
	ErrRemoteQuery = errors.New("ledger index query failed")

	// ErrRemoteCreate means a create request was rejected or never answered.
	ErrRemoteCreate = errors.New("ledger create failed")
)

// indexFields are the only fields the index query asks for.
const indexFields = "InvoiceNr,SerNr,VECode"

// maxBodyLog caps how much of a response body ends up in errors and logs.
const maxBodyLog = 512

// Client is a ledger API client. It is safe for concurrent use.
type Client struct {
	endpoint   string
	username   string
	password   string
	encodeRows bool
	httpClient *http.Client
	logger     logging.Logger
}

// NewClient creates a client for the configured register.
//
// PARAMETERS:
//   - cfg: Ledger settings; BaseURL and credentials must be set.
//   - timeout: Upper bound for any single request.
//   - logger: Receives request traces at debug level.
func NewClient(cfg config.LedgerConfig, timeout time.Duration, logger logging.Logger) *Client {
	return &Client{
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + "/" + cfg.Register,
		username:   cfg.Username,
		password:   cfg.Password,
		encodeRows: cfg.EncodeRowFields,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Endpoint returns the register URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// =============================================================================
// INDEX QUERY
// =============================================================================

// FetchIndex lists the invoices the ledger already holds.
//
// RETURNS:
//   - The index. An empty response body yields an empty index.
//   - An error wrapping ErrRemoteQuery on transport faults, non-200 status
//     or an unparseable body.
func (c *Client) FetchIndex(ctx context.Context) (*Index, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteQuery, err)
	}
	req.URL.RawQuery = "fields=" + indexFields
	req.SetBasicAuth(c.username, c.password)

	c.logger.Debug("GET %s", req.URL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteQuery, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrRemoteQuery, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRemoteQuery, resp.StatusCode, Excerpt(string(body)))
	}

	index, err := ParseIndex(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteQuery, err)
	}

	c.logger.Debug("Index holds %d invoices", index.Len())
	return index, nil
}

// =============================================================================
// INVOICE CREATION
// =============================================================================

// CreateInvoice posts one invoice with all of its lines.
//
// RETURNS:
//   - The response body, for diagnostics only.
//   - An error wrapping ErrRemoteCreate when the ledger does not answer 200.
func (c *Client) CreateInvoice(ctx context.Context, h *types.InvoiceHeader) (string, error) {
	payload := EncodeInvoice(h, c.encodeRows)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRemoteCreate, h.Key(), err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.username, c.password)

	c.logger.Debug("POST %s invoice %s (%d lines)", c.endpoint, h.Key(), len(h.Details))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRemoteCreate, h.Key(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: reading response: %v", ErrRemoteCreate, h.Key(), err)
	}

	if resp.StatusCode != http.StatusOK {
		return string(body), fmt.Errorf("%w: %s: status %d: %s", ErrRemoteCreate, h.Key(), resp.StatusCode, Excerpt(string(body)))
	}

	return string(body), nil
}

// Excerpt trims a response body and caps it for errors and logs.
func Excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxBodyLog {
		return s
	}
	return s[:maxBodyLog] + "..."
}
