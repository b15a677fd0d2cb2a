// Package google reads the ledger from a Google Sheets spreadsheet with one
// tab per resource. The first row of each tab names the columns using the
// same keys as the JSON records (id, name, amount, asset_id, ...).
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// Config selects the spreadsheet and the credentials used to read it.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string

	TransactionsSheet string
	AssetsSheet       string
	CategoriesSheet   string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheets        map[string]string
	logger        *log.Logger
}

var _ ledger.Reader = (*Client)(nil)

// New creates a read-only Sheets client using service account credentials.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentLedger)

	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheets: map[string]string{
			"transactions": orDefault(cfg.TransactionsSheet, "Transactions"),
			"assets":       orDefault(cfg.AssetsSheet, "Assets"),
			"categories":   orDefault(cfg.CategoriesSheet, "Categories"),
		},
		logger: logger,
	}, nil
}

func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	var (
		credentialsJSON []byte
		err             error
	)
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		credentialsJSON, err = os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	logger.InfoContext(ctx, "Creating Google Sheets service", "credentials_size", len(credentialsJSON))
	return gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
}

func (c *Client) Transactions(ctx context.Context) ([]core.Transaction, error) {
	return read(ctx, c, "transactions", ledger.DecodeTransactions)
}

func (c *Client) Assets(ctx context.Context) ([]core.Asset, error) {
	return read(ctx, c, "assets", ledger.DecodeAssets)
}

func (c *Client) Categories(ctx context.Context) ([]core.Category, error) {
	return read(ctx, c, "categories", ledger.DecodeCategories)
}

func read[T any](ctx context.Context, c *Client, resource string, decode func(io.Reader) ([]T, error)) ([]T, error) {
	sheet := c.sheets[resource]
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	body, err := rowsToJSON(resp.Values)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	out, err := decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	c.logger.DebugContext(ctx, "Sheet read", "sheet", sheet, log.FieldCount, len(out))
	return out, nil
}

// rowsToJSON turns a header row plus data rows into a JSON array of
// objects keyed by header. Blank rows are skipped and short rows leave
// trailing keys unset. Cells keep their sheet type, so numbers stay
// numbers and text stays text.
func rowsToJSON(values [][]any) ([]byte, error) {
	if len(values) == 0 {
		return []byte("[]"), nil
	}

	header := make([]string, len(values[0]))
	for i, h := range values[0] {
		header[i] = strings.TrimSpace(fmt.Sprint(h))
	}

	records := make([]map[string]any, 0, len(values)-1)
	for _, row := range values[1:] {
		if blank(row) {
			continue
		}
		rec := make(map[string]any, len(header))
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			rec[header[i]] = cell
		}
		records = append(records, rec)
	}
	return json.Marshal(records)
}

func blank(row []any) bool {
	for _, cell := range row {
		if strings.TrimSpace(fmt.Sprint(cell)) != "" {
			return false
		}
	}
	return true
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
