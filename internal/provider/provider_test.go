package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guzhiBody = `jsonpgz({"fundcode":"161725","name":"招商中证白酒指数","jzrq":"2024-01-04","dwjz":"0.9440","gsz":"0.9553","gszzl":"1.20","gztime":"2024-01-05 14:30"});`

func TestGuzhiParse(t *testing.T) {
	f := NewGuzhiFetcher("https://example.com", "")
	// A Friday inside the afternoon window, same day as the estimate.
	f.now = func() time.Time { return time.Date(2024, 1, 5, 14, 31, 0, 0, time.Local) }

	v, err := f.parse("161725", guzhiBody)
	require.NoError(t, err)

	assert.Equal(t, "161725", v.FundCode)
	assert.Equal(t, "招商中证白酒指数", v.FundName)
	assert.InDelta(t, 0.9440, v.NetValue, 1e-9)
	assert.Equal(t, "2024-01-04", v.NetValueDate)
	assert.InDelta(t, 0.9553, v.EstimatedValue, 1e-9)
	assert.InDelta(t, 1.20, v.EstimatedChange, 1e-9)
	assert.Equal(t, "2024-01-05 14:30", v.UpdateTime)
	assert.True(t, v.IsTradingSession)
	assert.False(t, v.IsRealValue)
}

func TestGuzhiParseStaleEstimate(t *testing.T) {
	f := NewGuzhiFetcher("https://example.com", "")
	// Next morning before open: yesterday's estimate is not a session.
	f.now = func() time.Time { return time.Date(2024, 1, 6, 9, 0, 0, 0, time.Local) }

	v, err := f.parse("161725", guzhiBody)
	require.NoError(t, err)
	assert.False(t, v.IsTradingSession)
}

func TestGuzhiParseRealValue(t *testing.T) {
	body := `jsonpgz({"fundcode":"161725","name":"x","jzrq":"2024-01-05","dwjz":"0.9553","gsz":"0.9553","gszzl":"1.20","gztime":"2024-01-05 15:00"});`
	f := NewGuzhiFetcher("https://example.com", "")
	f.now = func() time.Time { return time.Date(2024, 1, 5, 15, 0, 0, 0, time.Local) }

	v, err := f.parse("161725", body)
	require.NoError(t, err)
	assert.True(t, v.IsRealValue)
}

func TestGuzhiParseWrongFund(t *testing.T) {
	f := NewGuzhiFetcher("https://example.com", "")
	_, err := f.parse("000001", guzhiBody)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGuzhiParseBadWrapper(t *testing.T) {
	f := NewGuzhiFetcher("https://example.com", "")
	_, err := f.parse("161725", "<html>blocked</html>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestGuzhiParseMalformedNumbers(t *testing.T) {
	body := `jsonpgz({"fundcode":"161725","name":"x","jzrq":"2024-01-04","dwjz":"--","gsz":"","gszzl":"n/a","gztime":"2024-01-05 10:00"});`
	f := NewGuzhiFetcher("https://example.com", "")
	f.now = func() time.Time { return time.Date(2024, 1, 5, 10, 0, 0, 0, time.Local) }

	v, err := f.parse("161725", body)
	require.NoError(t, err)
	assert.Zero(t, v.NetValue)
	assert.Zero(t, v.EstimatedValue)
	assert.Zero(t, v.EstimatedChange)
}

func TestParseQtBody(t *testing.T) {
	body := "v_sh600519=\"1~贵州茅台~600519~1700.00~1690.00~1695.00~32098~16219~15879~1700.01~22" +
		"~1699.99~11~0~0~0~0~0~0~0~0~0~0~0~0~0~0~0~0~0~20240105143000~10.00~0.59~1710.00~1688.00~x~y~z\";\n" +
		"v_sz000858=\"51~五粮液~000858~150.50~152.00~151.80~~~~~~~~~~~~~~~~~~~~~~~~~20240105143000~-1.50~-0.99~153.00~149.00~a~b~c\";\n"

	quotes := parseQtBody(body)
	require.Len(t, quotes, 2)

	assert.Equal(t, "600519", quotes[0].Code)
	assert.Equal(t, "贵州茅台", quotes[0].Name)
	assert.InDelta(t, 1700.00, quotes[0].Price, 1e-9)
	assert.InDelta(t, 10.00, quotes[0].ChangeAmount, 1e-9)
	assert.InDelta(t, 0.59, quotes[0].Change, 1e-9)

	assert.Equal(t, "000858", quotes[1].Code)
	assert.InDelta(t, -0.99, quotes[1].Change, 1e-9)
}

func TestParseQtBodySkipsMalformedLines(t *testing.T) {
	body := "v_sh600519=\"too~short\";\ngarbage without equals;\n"
	assert.Empty(t, parseQtBody(body))
}

func TestExchangeSymbol(t *testing.T) {
	assert.Equal(t, "sh600519", exchangeSymbol("600519"))
	assert.Equal(t, "sz000858", exchangeSymbol("000858"))
	assert.Equal(t, "sz300750", exchangeSymbol("300750"))
	assert.Equal(t, "sh600519", exchangeSymbol("sh600519"))
	assert.Equal(t, "bj430047", exchangeSymbol("bj430047"))
}
