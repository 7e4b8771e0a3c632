package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"investiq/models"
)

// StatementKind selects which financial statement to fetch.
type StatementKind string

const (
	StatementIncome   StatementKind = "income"
	StatementBalance  StatementKind = "balance"
	StatementCashflow StatementKind = "cashflow"
)

// quoteSummary modules per statement kind, annual and quarterly. Yahoo
// nests the statement list under a key matching the module name.
var statementModules = map[StatementKind][2]string{
	StatementIncome:   {"incomeStatementHistory", "incomeStatementHistoryQuarterly"},
	StatementBalance:  {"balanceSheetHistory", "balanceSheetHistoryQuarterly"},
	StatementCashflow: {"cashflowStatementHistory", "cashflowStatementHistoryQuarterly"},
}

// listKeys maps a module name to the JSON key holding its statement list.
var listKeys = map[string]string{
	"incomeStatementHistory":            "incomeStatementHistory",
	"incomeStatementHistoryQuarterly":   "incomeStatementHistory",
	"balanceSheetHistory":               "balanceSheetStatements",
	"balanceSheetHistoryQuarterly":      "balanceSheetStatements",
	"cashflowStatementHistory":          "cashflowStatements",
	"cashflowStatementHistoryQuarterly": "cashflowStatements",
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// rawValue is Yahoo's {"raw": n, "fmt": "..."} number wrapper.
type rawValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

// Statement fetches one financial statement for a ticker. Periods are
// ordered most recent first, matching Yahoo's response order.
func (c *Client) Statement(ctx context.Context, ticker string, kind StatementKind, quarterly bool) (*models.FinancialStatement, error) {
	ticker = strings.ToUpper(ticker)

	modules, ok := statementModules[kind]
	if !ok {
		return nil, fmt.Errorf("unknown statement kind %q", kind)
	}
	module := modules[0]
	if quarterly {
		module = modules[1]
	}

	params := url.Values{"modules": {module}}
	var resp quoteSummaryResponse
	if err := c.get(ctx, c.quoteBaseURL, "/v10/finance/quoteSummary/"+url.PathEscape(ticker), params, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo error for %s: %s", ticker, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, &models.TickerNotFoundError{Ticker: ticker}
	}

	var wrapper map[string]json.RawMessage
	if raw, ok := resp.QuoteSummary.Result[0][module]; ok {
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode %s module: %w", module, err)
		}
	}

	var items []map[string]json.RawMessage
	if raw, ok := wrapper[listKeys[module]]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("failed to decode %s statements: %w", module, err)
		}
	}
	if len(items) == 0 {
		return nil, &models.TickerNotFoundError{Ticker: ticker}
	}

	statement := &models.FinancialStatement{
		Ticker:    ticker,
		Periods:   make([]string, 0, len(items)),
		Data:      map[string][]*float64{},
		Quarterly: quarterly,
	}

	for i, item := range items {
		period := fmt.Sprintf("period_%d", i)
		if raw, ok := item["endDate"]; ok {
			var end rawValue
			if json.Unmarshal(raw, &end) == nil && end.Fmt != "" {
				period = end.Fmt
			}
		}
		statement.Periods = append(statement.Periods, period)

		for key, raw := range item {
			if key == "endDate" || key == "maxAge" {
				continue
			}
			var v rawValue
			if json.Unmarshal(raw, &v) != nil {
				continue
			}
			values, ok := statement.Data[key]
			if !ok {
				values = make([]*float64, len(items))
				statement.Data[key] = values
			}
			values[i] = v.Raw
		}
	}

	return statement, nil
}
