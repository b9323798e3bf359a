package provider

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// parseFloat normalizes provider string numbers; anything malformed
// becomes 0 so downstream valuation math stays total.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// decodeJSONP unwraps `callback({...});` and decodes the inner object.
func decodeJSONP(body string) (*guzhiPayload, error) {
	open := strings.Index(body, "(")
	end := strings.LastIndex(body, ")")
	if open < 0 || end < open {
		return nil, fmt.Errorf("guzhi: parse jsonp wrapper: %q", truncate(body, 60))
	}
	var payload guzhiPayload
	if err := json.Unmarshal([]byte(body[open+1:end]), &payload); err != nil {
		return nil, fmt.Errorf("guzhi: parse payload json: %w", err)
	}
	return &payload, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
