// Package fixture serves market data from a local YAML file. It backs the
// --dry-run mode and the service tests, where no network is available.
package fixture

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/alejandrodnm/gbmpricer/internal/domain"
	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Symbols map[string][]struct {
		Date  string  `yaml:"date"`
		Close float64 `yaml:"close"`
	} `yaml:"symbols"`
}

// Provider devuelve series de precios fijas por símbolo.
type Provider struct {
	series map[string][]domain.PricePoint
}

// Load lee un fichero de fixtures con el formato:
//
//	symbols:
//	  CCF:
//	    - {date: "2025-10-17", close: 95.98}
func Load(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture.Load: %w", err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("fixture.Load: parse %s: %w", path, err)
	}

	p := &Provider{series: make(map[string][]domain.PricePoint, len(f.Symbols))}
	for sym, rows := range f.Symbols {
		points := make([]domain.PricePoint, 0, len(rows))
		for _, r := range rows {
			d, err := time.Parse(time.DateOnly, r.Date)
			if err != nil {
				return nil, fmt.Errorf("fixture.Load: %s: %w", sym, err)
			}
			points = append(points, domain.PricePoint{Date: d, Price: r.Close})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
		p.series[strings.ToUpper(sym)] = points
	}
	return p, nil
}

// New crea un Provider en memoria.
func New(series map[string][]domain.PricePoint) *Provider {
	p := &Provider{series: make(map[string][]domain.PricePoint, len(series))}
	for sym, points := range series {
		p.series[strings.ToUpper(sym)] = points
	}
	return p
}

// FetchAdjustedClose devuelve los puntos con fecha ≤ end. start se ignora
// para que los fixtures sigan sirviendo cuando la ventana se mueve con el reloj.
func (p *Provider) FetchAdjustedClose(_ context.Context, symbol string, _, end time.Time) ([]domain.PricePoint, error) {
	series, ok := p.series[strings.ToUpper(symbol)]
	if !ok {
		return nil, fmt.Errorf("fixture: %w: unknown symbol %q", domain.ErrDataUnavailable, symbol)
	}
	var out []domain.PricePoint
	for _, pt := range series {
		if !pt.Date.After(end) {
			out = append(out, pt)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("fixture: %w: no prices for %s before %s", domain.ErrDataUnavailable, symbol, end.Format(time.DateOnly))
	}
	return out, nil
}
