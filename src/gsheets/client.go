// Package gsheets is a minimal REST client for the Google Sheets v4 values
// API, covering the one operation the pipeline needs: fetch every row of a
// named worksheet as raw strings. Authentication uses a service-account JSON
// key with the spreadsheets.readonly scope.
package gsheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/google"

	"github.com/username/foliomap/src/errs"
	"github.com/username/foliomap/src/logger"
	"github.com/username/foliomap/src/models"
)

const (
	defaultBaseURL = "https://sheets.googleapis.com"
	readonlyScope  = "https://www.googleapis.com/auth/spreadsheets.readonly"
	requestTimeout = 30 * time.Second
)

type spreadsheetMetadataResponse struct {
	Sheets []struct {
		Properties struct {
			SheetID int    `json:"sheetId"`
			Title   string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

type valueRangeResponse struct {
	Range          string  `json:"range"`
	MajorDimension string  `json:"majorDimension"`
	Values         [][]any `json:"values"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Client talks to the Sheets API for one service account.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option adjusts a Client; used by tests to point at a fixture server.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient injects a pre-authenticated HTTP client, skipping the
// service-account key entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient reads and validates the service-account key and prepares an
// authenticated HTTP client. The key file is the only credential this system
// touches; a missing or unparsable file is an auth failure.
func NewClient(credentialsPath string, opts ...Option) (*Client, error) {
	c := &Client{baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient != nil {
		return c, nil
	}

	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Newf(errs.KindAuth, "Service account JSON not found at %s", credentialsPath)
		}
		return nil, errs.Wrap(errs.KindAuth, "reading service account JSON", err)
	}

	conf, err := google.JWTConfigFromJSON(data, readonlyScope)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuth, "parsing service account JSON", err)
	}

	c.httpClient = conf.Client(context.Background())
	c.httpClient.Timeout = requestTimeout
	return c, nil
}

// FetchRecords retrieves all rows of the named worksheet. The first row is
// the header row; every following row becomes a Record keyed by header,
// padded with empty strings to header width. One metadata call resolves
// worksheet existence first so a missing tab surfaces as not-found rather
// than as an opaque range-parse failure.
func (c *Client) FetchRecords(ctx context.Context, spreadsheetID, worksheet string) (*models.RecordSet, error) {
	if err := c.checkWorksheetExists(ctx, spreadsheetID, worksheet); err != nil {
		return nil, err
	}

	values, err := c.fetchValues(ctx, spreadsheetID, worksheet)
	if err != nil {
		return nil, err
	}

	rs, err := buildRecordSet(values)
	if err != nil {
		return nil, err
	}

	logger.L.Info("Fetched worksheet",
		"worksheet", worksheet,
		"rows", len(rs.Rows),
		"columns", len(rs.Headers))
	return rs, nil
}

func (c *Client) checkWorksheetExists(ctx context.Context, spreadsheetID, worksheet string) error {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s?fields=sheets.properties",
		c.baseURL, url.PathEscape(spreadsheetID))

	var meta spreadsheetMetadataResponse
	if err := c.getJSON(ctx, endpoint, &meta); err != nil {
		return err
	}

	for _, sheet := range meta.Sheets {
		if sheet.Properties.Title == worksheet {
			return nil
		}
	}
	return errs.Newf(errs.KindNotFound, "Worksheet not found: %q", worksheet)
}

func (c *Client) fetchValues(ctx context.Context, spreadsheetID, worksheet string) ([][]any, error) {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?majorDimension=ROWS",
		c.baseURL, url.PathEscape(spreadsheetID), url.PathEscape(worksheet))

	var vr valueRangeResponse
	if err := c.getJSON(ctx, endpoint, &vr); err != nil {
		return nil, err
	}
	return vr.Values, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errs.Wrap(errs.KindUnexpected, "building Sheets API request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrap(errs.KindRemoteService, "Google API error", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Wrap(errs.KindRemoteService, "decoding Sheets API response", err)
	}
	return nil
}

// statusError maps a non-2xx Sheets API response onto the error taxonomy:
// 401/403 are credential problems, 404 means the spreadsheet is gone or
// shared with the wrong account, and everything else is the remote service
// misbehaving. No retries happen here; failures surface to the caller.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr apiErrorResponse
	_ = json.Unmarshal(body, &apiErr)

	msg := apiErr.Error.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errs.Newf(errs.KindAuth, "Google Sheets rejected the service account (%d): %s", resp.StatusCode, msg)
	case http.StatusNotFound:
		return errs.Newf(errs.KindNotFound, "Spreadsheet not found or no access: %s", msg)
	default:
		return errs.Newf(errs.KindRemoteService, "Google API error (%d): %s", resp.StatusCode, msg)
	}
}

func buildRecordSet(values [][]any) (*models.RecordSet, error) {
	if len(values) == 0 {
		return &models.RecordSet{}, nil
	}

	headerRow := values[0]
	positional := make([]string, len(headerRow))
	headers := make([]string, 0, len(headerRow))
	seen := make(map[string]bool, len(headerRow))
	for i, cell := range headerRow {
		h := strings.TrimSpace(cellString(cell))
		positional[i] = h
		if h == "" {
			// Columns without a header carry no key to address them by.
			continue
		}
		if seen[h] {
			return nil, errs.Newf(errs.KindSchema, "duplicate header column %q in worksheet", h)
		}
		seen[h] = true
		headers = append(headers, h)
	}

	rows := make([]models.Record, 0, len(values)-1)
	for _, cells := range values[1:] {
		record := make(models.Record, len(headers))
		for i, h := range positional {
			if h == "" {
				continue
			}
			if i < len(cells) {
				record[h] = cellString(cells[i])
			} else {
				record[h] = ""
			}
		}
		rows = append(rows, record)
	}

	return &models.RecordSet{Headers: headers, Rows: rows}, nil
}

// cellString renders an API cell as the raw string the cleaning stage
// expects. With the default FORMATTED_VALUE rendering cells arrive as
// strings, but the JSON layer may still hand back numbers or booleans.
func cellString(v any) string {
	switch cell := v.(type) {
	case string:
		return cell
	case float64:
		return strconv.FormatFloat(cell, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(cell)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", cell)
	}
}
