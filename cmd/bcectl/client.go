package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opensource-finance/bce/internal/domain"
)

// client talks to a running BCE server.
type client struct {
	baseURL  string
	tenantID string
	http     *http.Client
}

func newClient(baseURL, tenantID string, timeout time.Duration) *client {
	return &client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		tenantID: tenantID,
		http:     &http.Client{Timeout: timeout},
	}
}

// apiError is a non-2xx answer from the server.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", c.tenantID)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var msg struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return &apiError{Status: resp.StatusCode, Message: msg.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *client) validate(ctx context.Context, in *domain.ValidationInput) (*verdictResponse, error) {
	var out verdictResponse
	if err := c.do(ctx, http.MethodPost, "/validate", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) putItem(ctx context.Context, item *domain.ExceptionItem) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/sequences/%d", item.ItemNo), item, nil)
}

func (c *client) postCabins(ctx context.Context, rows []domain.RBDCabin) error {
	return c.do(ctx, http.MethodPost, "/cabins", rows, nil)
}

func (c *client) putZone(ctx context.Context, zone *domain.Zone) error {
	return c.do(ctx, http.MethodPut, "/zones/"+zone.Zone, zone, nil)
}

func (c *client) postTSI(ctx context.Context, def *domain.TSIDefinition) error {
	return c.do(ctx, http.MethodPost, "/tsi", def, nil)
}

// verdictResponse mirrors the POST /validate answer.
type verdictResponse struct {
	domain.Verdict
	Reasons []string `json:"reasons"`
	Version string   `json:"version"`
}
