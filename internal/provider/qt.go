package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"FundEye/internal/model"
)

// QtQuoteFetcher implements QuoteProvider against a batch quote
// endpoint answering one line per instrument:
//
//	v_sh600519="1~name~600519~1700.00~1690.00~...";
//
// Fields are tilde-separated; index 3 is the price, 31 the change
// amount, 32 the change percent. Lines that fail to parse are skipped.
type QtQuoteFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewQtQuoteFetcher creates a fetcher with optional proxy support.
func NewQtQuoteFetcher(baseURL, proxyURL string) *QtQuoteFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &QtQuoteFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *QtQuoteFetcher) Name() string { return "qt" }

// GetQuotes fetches the whole batch in a single request. Codes absent
// from the response are simply missing from the result.
func (f *QtQuoteFetcher) GetQuotes(ctx context.Context, codes []string) ([]model.Quote, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	symbols := make([]string, 0, len(codes))
	for _, c := range codes {
		symbols = append(symbols, exchangeSymbol(c))
	}
	u := fmt.Sprintf("%s/q=%s", f.BaseURL, strings.Join(symbols, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qt fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("qt read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("qt: status %d", resp.StatusCode)
	}

	return parseQtBody(string(body)), nil
}

// parseQtBody extracts quotes from the line-per-instrument response.
func parseQtBody(body string) []model.Quote {
	var quotes []model.Quote
	for _, line := range strings.Split(body, ";") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		eq := strings.Index(line, "=")
		if eq < 0 {
			continue
		}
		value := strings.Trim(line[eq+1:], `"`)
		fields := strings.Split(value, "~")
		if len(fields) < 33 {
			continue
		}
		quotes = append(quotes, model.Quote{
			Code:         fields[2],
			Name:         fields[1],
			Price:        parseFloat(fields[3]),
			ChangeAmount: parseFloat(fields[31]),
			Change:       parseFloat(fields[32]),
		})
	}
	return quotes
}

// exchangeSymbol prefixes a bare A-share code with its exchange:
// 6xx -> Shanghai, everything else -> Shenzhen. Codes that already
// carry a prefix pass through.
func exchangeSymbol(code string) string {
	if strings.HasPrefix(code, "sh") || strings.HasPrefix(code, "sz") || strings.HasPrefix(code, "bj") {
		return code
	}
	if strings.HasPrefix(code, "6") {
		return "sh" + code
	}
	return "sz" + code
}
