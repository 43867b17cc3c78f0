// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package adapter

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/avdeyev/sheetfin/internal/config"
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/models"
	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"
)

// appendRange is the open-ended range the transaction rows land in. The
// values:append call locates the first free row in the sheet itself.
const appendRange = "A:G"

// sheetsWriter implements [SpreadsheetWriter] against the Google Sheets v4
// values API.
type sheetsWriter struct {
	client  *resty.Client
	retries int
	logger  *logger.Logger
}

// NewSheetsWriter constructs a [SpreadsheetWriter] from the Sheets
// configuration.
func NewSheetsWriter(cfg config.Sheets, log *logger.Logger) SpreadsheetWriter {
	client := resty.New().
		SetBaseURL(cfg.APIBaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Accept", "application/json")

	return &sheetsWriter{
		client:  client,
		retries: cfg.AppendRetries,
		logger:  log,
	}
}

// row renders a finalized transaction as one spreadsheet row.
func row(tx models.Transaction) []any {
	return []any{
		tx.RecordedAt.Format("2006-01-02 15:04:05"),
		string(tx.Kind),
		tx.Category,
		tx.Subcategory,
		tx.Amount.StringFixed(2),
		tx.Comment,
		tx.ID,
	}
}

// Append implements [SpreadsheetWriter]. Transient failures (5xx, network)
// are retried with exponential backoff up to the configured attempt budget;
// 4xx responses fail immediately since retrying cannot change the outcome.
func (w *sheetsWriter) Append(ctx context.Context, accessToken string, ref models.SheetRef, tx models.Transaction) error {
	log := logger.FromContext(ctx)

	body := map[string]any{
		"values": [][]any{row(tx)},
	}
	endpoint := fmt.Sprintf("/spreadsheets/%s/values/%s:append",
		url.PathEscape(ref.SpreadsheetID), url.PathEscape(appendRange))

	backoff := retry.WithMaxRetries(uint64(w.retries), retry.NewExponential(500*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := w.client.R().
			SetContext(ctx).
			SetAuthToken(accessToken).
			SetQueryParam("valueInputOption", "USER_ENTERED").
			SetBody(body).
			Post(endpoint)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: %s", ErrProviderUnavailable, err))
		}

		switch {
		case resp.IsSuccess():
			return nil
		case resp.StatusCode() == 404 || resp.StatusCode() == 403:
			return fmt.Errorf("%w: status %d", ErrSpreadsheetNotFound, resp.StatusCode())
		case resp.StatusCode() >= 500 || resp.StatusCode() == 429:
			return retry.RetryableError(fmt.Errorf("%w: append status %d", ErrProviderUnavailable, resp.StatusCode()))
		default:
			return fmt.Errorf("%w: append status %d", ErrSpreadsheetWrite, resp.StatusCode())
		}
	})
	if err != nil {
		log.Err(err).Str("func", "*sheetsWriter.Append").Str("spreadsheet_id", ref.SpreadsheetID).Msg("append failed")
		return fmt.Errorf("%w: %w", ErrSpreadsheetWrite, err)
	}

	return nil
}

// SpreadsheetTitle implements [SpreadsheetWriter].
func (w *sheetsWriter) SpreadsheetTitle(ctx context.Context, accessToken, spreadsheetID string) (string, error) {
	log := logger.FromContext(ctx)

	var out struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParam("fields", "properties.title").
		SetResult(&out).
		Get(fmt.Sprintf("/spreadsheets/%s", url.PathEscape(spreadsheetID)))
	if err != nil {
		log.Err(err).Str("func", "*sheetsWriter.SpreadsheetTitle").Msg("title request failed")
		return "", fmt.Errorf("%w: %s", ErrProviderUnavailable, err)
	}

	switch {
	case resp.IsSuccess():
		return out.Properties.Title, nil
	case resp.StatusCode() == 404 || resp.StatusCode() == 403:
		return "", fmt.Errorf("%w: status %d", ErrSpreadsheetNotFound, resp.StatusCode())
	case resp.StatusCode() >= 500:
		return "", fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode())
	default:
		return "", fmt.Errorf("%w: status %d", ErrSpreadsheetNotFound, resp.StatusCode())
	}
}
