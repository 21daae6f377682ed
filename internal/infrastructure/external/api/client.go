// Package api implements port.Store against the remote bills API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// Config holds remote API settings
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// StatusError is returned for non-2xx responses. Its message is the
// user-facing "Erreur <code>" text.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Erreur %d", e.Code)
}

// Client talks to the bills API on behalf of one session user
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	user       entity.User
	logger     *zap.Logger
}

// NewClient creates a client. Use ForUser to scope it to a session user.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ForUser returns a copy of the client acting for user
func (c *Client) ForUser(user entity.User) port.Store {
	scoped := *c
	scoped.user = user
	return &scoped
}

// Bills returns the bill resource
func (c *Client) Bills() port.BillResource {
	return &remoteBills{client: c}
}

// billDTO is the wire shape of a bill
type billDTO struct {
	ID           string      `json:"id,omitempty"`
	Email        string      `json:"email"`
	Type         string      `json:"type"`
	Name         string      `json:"name"`
	Date         string      `json:"date"`
	Amount       json.Number `json:"amount"`
	VAT          string      `json:"vat"`
	Pct          int         `json:"pct"`
	Commentary   string      `json:"commentary"`
	CommentAdmin string      `json:"commentAdmin"`
	FileURL      string      `json:"fileUrl"`
	FileName     string      `json:"fileName"`
	Status       string      `json:"status"`
}

func toDTO(b *entity.Bill) billDTO {
	return billDTO{
		ID:           b.ID,
		Email:        b.Email,
		Type:         b.Type,
		Name:         b.Name,
		Date:         b.Date,
		Amount:       json.Number(b.Amount.String()),
		VAT:          b.VAT,
		Pct:          b.Pct,
		Commentary:   b.Commentary,
		CommentAdmin: b.CommentAdmin,
		FileURL:      b.FileURL,
		FileName:     b.FileName,
		Status:       string(b.Status),
	}
}

func (d billDTO) toEntity() (entity.Bill, error) {
	amount := decimal.Zero
	if d.Amount != "" {
		var err error
		amount, err = decimal.NewFromString(d.Amount.String())
		if err != nil {
			return entity.Bill{}, fmt.Errorf("invalid amount %q for bill %s: %w", d.Amount, d.ID, err)
		}
	}
	return entity.Bill{
		ID:           d.ID,
		Email:        d.Email,
		Type:         d.Type,
		Name:         d.Name,
		Date:         d.Date,
		Amount:       amount,
		VAT:          d.VAT,
		Pct:          d.Pct,
		Commentary:   d.Commentary,
		CommentAdmin: d.CommentAdmin,
		FileURL:      d.FileURL,
		FileName:     d.FileName,
		Status:       entity.BillStatus(d.Status),
	}, nil
}

type remoteBills struct {
	client *Client
}

func (r *remoteBills) List(ctx context.Context) ([]entity.Bill, error) {
	query := url.Values{}
	if !r.client.user.IsAdmin() && r.client.user.Email != "" {
		query.Set("email", r.client.user.Email)
	}

	var records []json.RawMessage
	if err := r.client.do(ctx, http.MethodGet, "/bills", query, nil, &records); err != nil {
		return nil, err
	}

	// A malformed record is logged and skipped so the others still list.
	bills := make([]entity.Bill, 0, len(records))
	for i, raw := range records {
		bill, err := decodeBill(raw)
		if err != nil {
			r.client.logger.Error("Skipping malformed bill record",
				zap.Int("index", i),
				zap.ByteString("record", raw),
				zap.Error(err))
			continue
		}
		bills = append(bills, bill)
	}
	return bills, nil
}

func decodeBill(raw json.RawMessage) (entity.Bill, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var d billDTO
	if err := decoder.Decode(&d); err != nil {
		return entity.Bill{}, fmt.Errorf("invalid bill record: %w", err)
	}
	return d.toEntity()
}

func (r *remoteBills) Create(ctx context.Context, bill *entity.Bill) error {
	if !r.client.user.IsAdmin() {
		bill.Email = r.client.user.Email
	}

	var created billDTO
	if err := r.client.do(ctx, http.MethodPost, "/bills", nil, toDTO(bill), &created); err != nil {
		return err
	}
	if created.ID != "" {
		bill.ID = created.ID
	}
	return nil
}

func (r *remoteBills) Update(ctx context.Context, bill *entity.Bill) error {
	if bill.ID == "" {
		return fmt.Errorf("%w: empty id", entity.ErrBillNotFound)
	}
	return r.client.do(ctx, http.MethodPatch, "/bills/"+url.PathEscape(bill.ID), nil, toDTO(bill), nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Bills API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("bills api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Bills API request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
