package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"investiq/database"
	"investiq/models"
	"investiq/yahoo"
)

// attachmentName sets the download filename on the response.
func attachmentName(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
}

func fmtPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// handleExportSummary dumps the quote and key ratios for one ticker as
// a two-column CSV.
func (s *Server) handleExportSummary(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	ctx := r.Context()

	quote, err := s.market.StockQuote(ctx, ticker)
	if err != nil {
		marketError(w, err)
		return
	}
	ratios, _ := s.market.Ratios(ctx, ticker)

	attachmentName(w, fmt.Sprintf("%s_summary_%s.csv", ticker, time.Now().Format("2006-01-02")))
	w.Header().Set("Content-Type", "text/csv")

	cw := csv.NewWriter(w)
	cw.Write([]string{"field", "value"})
	cw.Write([]string{"ticker", quote.Ticker})
	cw.Write([]string{"name", quote.Name})
	cw.Write([]string{"price", strconv.FormatFloat(quote.Price, 'f', 2, 64)})
	cw.Write([]string{"change_percent", strconv.FormatFloat(quote.ChangePercent, 'f', 2, 64)})
	cw.Write([]string{"week_52_high", strconv.FormatFloat(quote.Week52High, 'f', 2, 64)})
	cw.Write([]string{"week_52_low", strconv.FormatFloat(quote.Week52Low, 'f', 2, 64)})
	cw.Write([]string{"market_cap", fmtPtr(quote.MarketCap)})
	cw.Write([]string{"pe_ratio", fmtPtr(quote.PERatio)})
	cw.Write([]string{"eps", fmtPtr(quote.EPS)})
	if ratios != nil {
		cw.Write([]string{"profit_margin", fmtPtr(ratios.Profitability.ProfitMargin)})
		cw.Write([]string{"return_on_equity", fmtPtr(ratios.Profitability.ReturnOnEquity)})
		cw.Write([]string{"debt_to_equity", fmtPtr(ratios.Liquidity.DebtToEquity)})
		cw.Write([]string{"dividend_yield", fmtPtr(ratios.Dividends.DividendYield)})
	}
	cw.Flush()
}

// handleExportHistory dumps OHLCV history for one ticker as CSV.
func (s *Server) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1y"
	}

	history, err := s.market.History(r.Context(), ticker, period, "1d")
	if err != nil {
		marketError(w, err)
		return
	}

	attachmentName(w, fmt.Sprintf("%s_history_%s.csv", ticker, period))
	w.Header().Set("Content-Type", "text/csv")

	cw := csv.NewWriter(w)
	cw.Write([]string{"date", "open", "high", "low", "close", "volume"})
	for i := range history.Dates {
		cw.Write([]string{
			history.Dates[i],
			strconv.FormatFloat(history.Open[i], 'f', 2, 64),
			strconv.FormatFloat(history.High[i], 'f', 2, 64),
			strconv.FormatFloat(history.Low[i], 'f', 2, 64),
			strconv.FormatFloat(history.Close[i], 'f', 2, 64),
			strconv.FormatInt(history.Volume[i], 10),
		})
	}
	cw.Flush()
}

// handleExportFinancials bundles ratios, earnings, and the annual
// income statement into one JSON download.
func (s *Server) handleExportFinancials(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	ctx := r.Context()

	ratios, err := s.market.Ratios(ctx, ticker)
	if err != nil {
		marketError(w, err)
		return
	}

	bundle := map[string]interface{}{
		"ticker":      ticker,
		"exported_at": time.Now().UTC(),
		"ratios":      ratios,
	}
	if earnings, err := s.market.Earnings(ctx, ticker); err == nil {
		bundle["earnings"] = earnings
	}
	if income, err := s.fundamentals.Statement(ctx, ticker, yahoo.StatementIncome, false); err == nil {
		bundle["income_statement"] = income
	}

	attachmentName(w, fmt.Sprintf("%s_financials_%s.json", ticker, time.Now().Format("2006-01-02")))
	writeJSON(w, http.StatusOK, bundle)
}

// exportRow is one watchlist entry joined with its live quote for export.
type exportRow struct {
	database.WatchlistItem
	Price         *float64 `json:"price,omitempty"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
}

func (s *Server) handleExportWatchlist(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		respondWithError(w, http.StatusBadRequest, "format must be csv or json", nil)
		return
	}

	items, err := s.watchlist.List("")
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list watchlist", err)
		return
	}

	// Join each entry with its quote, in parallel. Quotes are best
	// effort; a missing one leaves the price columns empty.
	rows := make([]exportRow, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		rows[i].WatchlistItem = item
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			var quote models.StockQuote
			if err := s.cache.Get(r.Context(), ticker, "quote", &quote); err == nil {
				rows[i].Price = &quote.Price
				rows[i].ChangePercent = &quote.ChangePercent
				return
			}
			if fresh, err := s.market.StockQuote(r.Context(), ticker); err == nil {
				rows[i].Price = &fresh.Price
				rows[i].ChangePercent = &fresh.ChangePercent
				s.cache.Put(r.Context(), ticker, "quote", fresh, s.cfg.CacheTTL.Quote)
			}
		}(i, item.Ticker)
	}
	wg.Wait()

	attachmentName(w, fmt.Sprintf("watchlist_%s.%s", time.Now().Format("2006-01-02"), format))

	if format == "json" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"exported_at": time.Now().UTC(),
			"items":       rows,
		})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	cw := csv.NewWriter(w)
	cw.Write([]string{"ticker", "name", "category", "notes", "price", "change_percent", "added_at"})
	for _, row := range rows {
		price, changePct := "", ""
		if row.Price != nil {
			price = strconv.FormatFloat(*row.Price, 'f', 2, 64)
		}
		if row.ChangePercent != nil {
			changePct = strconv.FormatFloat(*row.ChangePercent, 'f', 2, 64)
		}
		cw.Write([]string{
			row.Ticker,
			row.Name,
			row.Category,
			row.Notes,
			price,
			changePct,
			row.AddedAt.Format(time.RFC3339),
		})
	}
	cw.Flush()
}
