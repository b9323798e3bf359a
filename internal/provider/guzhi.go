package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"FundEye/internal/market"
)

// GuzhiFetcher implements ValuationProvider against a fund-estimate
// endpoint that answers JSONP: `jsonpgz({"fundcode":"161725",...});`.
// Payload fields are strings; malformed numbers normalize to 0.
type GuzhiFetcher struct {
	BaseURL string
	Client  *http.Client

	now func() time.Time
}

// NewGuzhiFetcher creates a fetcher with optional proxy support.
func NewGuzhiFetcher(baseURL, proxyURL string) *GuzhiFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &GuzhiFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		now: time.Now,
	}
}

func (f *GuzhiFetcher) Name() string { return "guzhi" }

// guzhiPayload mirrors the endpoint's JSONP body. All numeric fields
// arrive as strings.
type guzhiPayload struct {
	FundCode string `json:"fundcode"`
	Name     string `json:"name"`
	NetValue string `json:"dwjz"`
	NetDate  string `json:"jzrq"`
	Estimate string `json:"gsz"`
	Change   string `json:"gszzl"`
	Time     string `json:"gztime"`
}

// GetValuation fetches and decodes one fund's estimate.
func (f *GuzhiFetcher) GetValuation(ctx context.Context, fundCode string) (*FundValuation, error) {
	u := fmt.Sprintf("%s/js/%s.js?rt=%d", f.BaseURL, url.PathEscape(fundCode), f.now().UnixMilli())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://fund.eastmoney.com/")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("guzhi fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("guzhi read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("guzhi: status %d, body: %s", resp.StatusCode, string(body))
	}

	return f.parse(fundCode, string(body))
}

func (f *GuzhiFetcher) parse(fundCode, body string) (*FundValuation, error) {
	payload, err := decodeJSONP(body)
	if err != nil {
		return nil, err
	}
	if payload.FundCode != "" && payload.FundCode != fundCode {
		return nil, fmt.Errorf("guzhi: fund %s not found (payload for %s)", fundCode, payload.FundCode)
	}

	v := &FundValuation{
		FundCode:        fundCode,
		FundName:        payload.Name,
		NetValue:        parseFloat(payload.NetValue),
		NetValueDate:    payload.NetDate,
		EstimatedValue:  parseFloat(payload.Estimate),
		EstimatedChange: parseFloat(payload.Change),
		UpdateTime:      payload.Time,
	}

	// The endpoint keeps serving yesterday's estimate after close; a
	// session is live only when the estimate timestamp is from today
	// and inside a trading window.
	if ts, err := time.ParseInLocation("2006-01-02 15:04", payload.Time, time.Local); err == nil {
		now := f.now()
		sameDay := ts.Year() == now.Year() && ts.YearDay() == now.YearDay()
		v.IsTradingSession = sameDay && market.IsOpen(ts)
		// Once the official net value for the estimate's day is
		// published the two dates coincide and the value is real.
		v.IsRealValue = payload.NetDate != "" && strings.HasPrefix(payload.Time, payload.NetDate)
	}

	return v, nil
}
