package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchFiltersToEquitiesAndETFs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/finance/search" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"quotes": [
			{"symbol": "AAPL", "longname": "Apple Inc.", "exchDisp": "NASDAQ", "quoteType": "EQUITY"},
			{"symbol": "AAPL240621C00100000", "shortname": "AAPL Call", "quoteType": "OPTION"},
			{"symbol": "QQQ", "shortname": "Invesco QQQ", "exchDisp": "NASDAQ", "quoteType": "ETF"},
			{"symbol": "BTC-USD", "shortname": "Bitcoin USD", "quoteType": "CRYPTOCURRENCY"}
		]}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURLs(server.URL, server.URL)
	results := client.Search(context.Background(), "apple", 10)

	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Ticker != "AAPL" || results[0].Name != "Apple Inc." {
		t.Errorf("first result = %+v", results[0])
	}
	if results[1].Type != "ETF" {
		t.Errorf("second result type = %q, want ETF", results[1].Type)
	}
}

func TestSearchUpstreamFailureIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithBaseURLs(server.URL, server.URL)
	results := client.Search(context.Background(), "apple", 10)
	if results == nil || len(results) != 0 {
		t.Fatalf("results = %v, want empty non-nil slice", results)
	}
}

func TestStatementMapsPeriodsAndMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("modules") != "incomeStatementHistory" {
			t.Errorf("modules = %q", r.URL.Query().Get("modules"))
		}
		w.Write([]byte(`{"quoteSummary": {"result": [{
			"incomeStatementHistory": {"incomeStatementHistory": [
				{"endDate": {"raw": 1703980800, "fmt": "2023-12-31"}, "maxAge": 1,
				 "totalRevenue": {"raw": 383285000000, "fmt": "383.29B"},
				 "netIncome": {"raw": 96995000000, "fmt": "97B"}},
				{"endDate": {"raw": 1672444800, "fmt": "2022-12-31"}, "maxAge": 1,
				 "totalRevenue": {"raw": 394328000000, "fmt": "394.33B"}}
			]}
		}], "error": null}}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURLs(server.URL, server.URL)
	statement, err := client.Statement(context.Background(), "aapl", StatementIncome, false)
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}

	if statement.Ticker != "AAPL" {
		t.Errorf("ticker = %q", statement.Ticker)
	}
	if len(statement.Periods) != 2 || statement.Periods[0] != "2023-12-31" {
		t.Errorf("periods = %v", statement.Periods)
	}
	revenue := statement.Data["totalRevenue"]
	if len(revenue) != 2 || revenue[0] == nil || *revenue[0] != 383285000000 {
		t.Errorf("totalRevenue = %v", revenue)
	}

	// netIncome is absent for 2022; the slot stays nil.
	netIncome := statement.Data["netIncome"]
	if len(netIncome) != 2 || netIncome[1] != nil {
		t.Errorf("netIncome = %v", netIncome)
	}
	if _, ok := statement.Data["maxAge"]; ok {
		t.Error("maxAge should not be carried as a metric")
	}
}

func TestStatementUnknownTicker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary": {"result": [], "error": null}}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURLs(server.URL, server.URL)
	if _, err := client.Statement(context.Background(), "NOTREAL", StatementBalance, true); err == nil {
		t.Fatal("expected error for unknown ticker")
	}
}
