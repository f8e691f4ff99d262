// Package sheets appends interview stats to a Google spreadsheet over the
// v4 REST surface, authenticated by a service account.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/oauth2/google"
)

const (
	defaultBaseURL = "https://sheets.googleapis.com"
	scope          = "https://www.googleapis.com/auth/spreadsheets"

	// how long Append waits for the async sheet discovery
	readyTimeout = 10 * time.Second
)

type Client struct {
	http          *http.Client
	baseURL       string
	spreadsheetID string

	ready      chan struct{}
	sheetTitle string
}

// NewClient builds a client from a service-account credentials file.
func NewClient(credentialsFile, spreadsheetID string) (*Client, error) {
	if credentialsFile == "" || spreadsheetID == "" {
		return nil, errors.New("sheets: credentials file and spreadsheet id are required")
	}
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets: read credentials: %w", err)
	}
	cfg, err := google.JWTConfigFromJSON(data, scope)
	if err != nil {
		return nil, fmt.Errorf("sheets: parse credentials: %w", err)
	}
	return &Client{
		http:          cfg.Client(context.Background()),
		baseURL:       defaultBaseURL,
		spreadsheetID: spreadsheetID,
		ready:         make(chan struct{}),
	}, nil
}

// NewWithHTTP wires an explicit http client and base URL. Used by tests.
func NewWithHTTP(hc *http.Client, baseURL, spreadsheetID string) *Client {
	return &Client{
		http:          hc,
		baseURL:       baseURL,
		spreadsheetID: spreadsheetID,
		ready:         make(chan struct{}),
	}
}

// Start discovers the first sheet title and ensures the header row in the
// background. Append blocks on that discovery, bounded by readyTimeout.
func (c *Client) Start(ctx context.Context, header []any) {
	go func() {
		defer close(c.ready)

		title, err := c.firstSheetTitle(ctx)
		if err != nil {
			log.Printf("[sheets] sheet discovery failed, falling back to Sheet1: %v", err)
			title = "Sheet1"
		}
		c.sheetTitle = title

		if err := c.EnsureHeader(ctx, header); err != nil {
			log.Printf("[sheets] ensure header failed: %v", err)
		}
	}()
}

func (c *Client) waitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-time.After(readyTimeout):
		return errors.New("sheets: client not ready")
	case <-ctx.Done():
		return ctx.Err()
	}
}

type valueRange struct {
	Values [][]any `json:"values"`
}

// Append adds one row after the last row of the sheet.
func (c *Client) Append(ctx context.Context, values []any) error {
	if err := c.waitReady(ctx); err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!A:L", c.sheetTitle)
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED",
		c.baseURL, c.spreadsheetID, url.PathEscape(rng))

	return c.call(ctx, http.MethodPost, endpoint, valueRange{Values: [][]any{values}}, nil)
}

// EnsureHeader writes the header row if A1:L1 is still empty.
func (c *Client) EnsureHeader(ctx context.Context, header []any) error {
	title := c.sheetTitle
	if title == "" {
		title = "Sheet1"
	}
	rng := fmt.Sprintf("%s!A1:L1", title)

	var existing valueRange
	getURL := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s", c.baseURL, c.spreadsheetID, url.PathEscape(rng))
	if err := c.call(ctx, http.MethodGet, getURL, nil, &existing); err != nil {
		return err
	}
	if len(existing.Values) > 0 {
		return nil
	}

	putURL := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?valueInputOption=USER_ENTERED",
		c.baseURL, c.spreadsheetID, url.PathEscape(rng))
	return c.call(ctx, http.MethodPut, putURL, valueRange{Values: [][]any{header}}, nil)
}

func (c *Client) firstSheetTitle(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s?fields=sheets.properties.title", c.baseURL, c.spreadsheetID)

	var decoded struct {
		Sheets []struct {
			Properties struct {
				Title string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	if err := c.call(ctx, http.MethodGet, endpoint, nil, &decoded); err != nil {
		return "", err
	}
	if len(decoded.Sheets) == 0 || decoded.Sheets[0].Properties.Title == "" {
		return "", errors.New("sheets: spreadsheet has no sheets")
	}
	return decoded.Sheets[0].Properties.Title, nil
}

func (c *Client) call(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2*1024))
		return fmt.Errorf("sheets: %s %s: status %d: %s", method, endpoint, resp.StatusCode, msg)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
