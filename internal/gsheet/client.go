package gsheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	valueInputOption = "USER_ENTERED"
	insertDataOption = "INSERT_ROWS"
	requestTimeout   = 30 * time.Second
)

// Client appends rows to a named sheet of a Google spreadsheet. The API
// handle is created on first use and reused afterwards.
type Client struct {
	credentialsPath string
	spreadsheetID   string
	sheetName       string
	header          []string
	logger          *slog.Logger

	svc        atomic.Pointer[sheets.Service]
	newService func(ctx context.Context) (*sheets.Service, error)
}

// NewClient returns a Client that authenticates with the service-account
// JSON at credentialsPath and keeps header as the first row of sheetName.
func NewClient(credentialsPath, spreadsheetID, sheetName string, header []string, logger *slog.Logger) *Client {
	c := &Client{
		credentialsPath: credentialsPath,
		spreadsheetID:   spreadsheetID,
		sheetName:       sheetName,
		header:          header,
		logger:          logger,
	}
	c.newService = c.dial
	return c
}

// EnsureInitialized authenticates and creates the sheet with its header row
// if it does not exist yet. It is idempotent; concurrent first calls may each
// authenticate, and the first stored handle wins. A failed attempt is
// retried on the next call.
func (c *Client) EnsureInitialized(ctx context.Context) error {
	_, err := c.service(ctx)
	return err
}

// AppendRow appends row below the last row of the sheet and returns the
// number of updated cells.
func (c *Client) AppendRow(ctx context.Context, row []string) (int64, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return 0, err
	}

	resp, err := svc.Spreadsheets.Values.Append(c.spreadsheetID, c.columnsRange(), &sheets.ValueRange{
		Values: [][]interface{}{toValues(row)},
	}).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("append row: %w", err)
	}

	var cells int64
	if resp.Updates != nil {
		cells = resp.Updates.UpdatedCells
	}
	c.logger.Debug("sheet row appended", "sheet", c.sheetName, "updated_cells", cells)
	return cells, nil
}

func (c *Client) service(ctx context.Context) (*sheets.Service, error) {
	if svc := c.svc.Load(); svc != nil {
		return svc, nil
	}

	svc, err := c.newService(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize sheets: %w", err)
	}
	if err := c.ensureSheet(ctx, svc); err != nil {
		return nil, err
	}

	if !c.svc.CompareAndSwap(nil, svc) {
		return c.svc.Load(), nil
	}
	c.logger.Info("sheets logger initialized", "spreadsheet_id", c.spreadsheetID, "sheet", c.sheetName)
	return svc, nil
}

func (c *Client) dial(ctx context.Context) (*sheets.Service, error) {
	if c.spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is empty")
	}

	data, err := os.ReadFile(c.credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	cfg, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	// Authorize now so bad credentials surface here rather than on append.
	if _, err := cfg.TokenSource(ctx).Token(); err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}

	hc := cfg.Client(context.Background())
	hc.Timeout = requestTimeout
	return sheets.NewService(ctx, option.WithHTTPClient(hc))
}

func (c *Client) ensureSheet(ctx context.Context, svc *sheets.Service) error {
	ss, err := svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.sheetName {
			return nil
		}
	}

	_, err = svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: c.sheetName},
			},
		}},
	}).Context(ctx).Do()
	switch {
	case sheetExists(err):
		// A concurrent first call created it; rewriting the header is harmless.
		c.logger.Debug("sheet created concurrently", "sheet", c.sheetName)
	case err != nil:
		return fmt.Errorf("add sheet %q: %w", c.sheetName, err)
	}

	_, err = svc.Spreadsheets.Values.Update(c.spreadsheetID, c.headerRange(), &sheets.ValueRange{
		Values: [][]interface{}{toValues(c.header)},
	}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	c.logger.Info("sheet created with headers", "sheet", c.sheetName)
	return nil
}

// sheetExists reports whether err is the API's rejection of an AddSheet for
// a title that is already taken.
func sheetExists(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != http.StatusBadRequest {
		return false
	}
	return strings.Contains(strings.ToLower(gerr.Message), "already exists")
}

// columnsRange is the full-height range spanning the header columns, e.g.
// 'Conversation Logs'!A:I.
func (c *Client) columnsRange() string {
	last := columnName(len(c.header))
	return fmt.Sprintf("%s!A:%s", c.quotedName(), last)
}

// headerRange is the first row across the header columns, e.g.
// 'Conversation Logs'!A1:I1.
func (c *Client) headerRange() string {
	last := columnName(len(c.header))
	return fmt.Sprintf("%s!A1:%s1", c.quotedName(), last)
}

func (c *Client) quotedName() string {
	return "'" + strings.ReplaceAll(c.sheetName, "'", "''") + "'"
}

// columnName converts a 1-based column index to its A1 letters.
func columnName(n int) string {
	if n < 1 {
		n = 1
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

func toValues(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
