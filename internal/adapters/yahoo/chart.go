package yahoo

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"github.com/alejandrodnm/gbmpricer/internal/domain"
)

// chartResponse es la respuesta de /v8/finance/chart/{symbol}.
// Los valores pueden venir a null en días sin cotización.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				Currency string `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchAdjustedClose devuelve los cierres ajustados diarios de symbol en
// [start, end], ordenados por fecha. Si la respuesta no trae adjclose usa el
// cierre sin ajustar. Cualquier fallo se envuelve en domain.ErrDataUnavailable.
func (c *Client) FetchAdjustedClose(ctx context.Context, symbol string, start, end time.Time) ([]domain.PricePoint, error) {
	if symbol == "" {
		return nil, fmt.Errorf("yahoo.FetchAdjustedClose: %w: empty symbol", domain.ErrInvalidParameter)
	}

	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", fmt.Sprintf("%d", start.Unix()))
	q.Set("period2", fmt.Sprintf("%d", end.Unix()))
	q.Set("events", "div,splits")
	u := fmt.Sprintf("%s/%s?%s", c.base, url.PathEscape(symbol), q.Encode())

	var resp chartResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("yahoo.FetchAdjustedClose %s: %w: %v", symbol, domain.ErrDataUnavailable, err)
	}

	if e := resp.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo.FetchAdjustedClose %s: %w: %s: %s", symbol, domain.ErrDataUnavailable, e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo.FetchAdjustedClose %s: %w: empty result", symbol, domain.ErrDataUnavailable)
	}

	r := resp.Chart.Result[0]
	var closes []*float64
	switch {
	case len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) > 0:
		closes = r.Indicators.AdjClose[0].AdjClose
	case len(r.Indicators.Quote) > 0:
		slog.Debug("adjclose missing, using close", "symbol", symbol)
		closes = r.Indicators.Quote[0].Close
	}

	points := make([]domain.PricePoint, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		points = append(points, domain.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Price: *closes[i],
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("yahoo.FetchAdjustedClose %s: %w: no prices between %s and %s",
			symbol, domain.ErrDataUnavailable, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	slog.Debug("prices fetched",
		"symbol", symbol,
		"points", len(points),
		"last", points[len(points)-1].Price,
	)
	return points, nil
}
