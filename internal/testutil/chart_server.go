package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ChartServer is a fake Yahoo Finance chart endpoint for fetcher and
// orchestrator tests. Responses are registered per query symbol; unknown
// symbols get the provider's "Not Found" error payload.
type ChartServer struct {
	*httptest.Server
	responses map[string]chartResponse
}

type chartResponse struct {
	status int
	body   string
}

// NewChartServer starts a fake chart server. It is shut down with the
// test.
func NewChartServer(t *testing.T) *ChartServer {
	t.Helper()

	cs := &ChartServer{responses: make(map[string]chartResponse)}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		resp, ok := cs.responses[symbol]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
			return
		}
		w.WriteHeader(resp.status)
		fmt.Fprint(w, resp.body)
	}))
	t.Cleanup(cs.Server.Close)
	return cs
}

// Respond registers a 200 response body for a query symbol.
func (cs *ChartServer) Respond(symbol, body string) {
	cs.responses[symbol] = chartResponse{status: http.StatusOK, body: body}
}

// RespondStatus registers an arbitrary status and body for a query symbol.
func (cs *ChartServer) RespondStatus(symbol string, status int, body string) {
	cs.responses[symbol] = chartResponse{status: status, body: body}
}

// ChartBody assembles a minimal valid chart payload. Timestamps, closes,
// and the remaining arrays must be equal length; events may be empty
// strings.
//
// Example:
//
//	body := testutil.ChartBody("AAPL", []int64{1704153600}, "[185.5]",
//	    `"dividends":{"1704153600":{"amount":0.24,"date":1704153600}}`)
func ChartBody(symbol string, timestamps []int64, closes string, events ...string) string {
	ts := make([]string, len(timestamps))
	for i, t := range timestamps {
		ts[i] = fmt.Sprintf("%d", t)
	}
	eventsJSON := ""
	if len(events) > 0 && strings.Join(events, ",") != "" {
		eventsJSON = fmt.Sprintf(`"events":{%s},`, strings.Join(events, ","))
	}
	return fmt.Sprintf(`{"chart":{"result":[{
		"meta":{"currency":"USD","symbol":"%s","exchangeName":"NMS"},
		"timestamp":[%s],
		%s
		"indicators":{"quote":[{"close":%s}],"adjclose":[{"adjclose":%s}]}
	}],"error":null}}`, symbol, strings.Join(ts, ","), eventsJSON, closes, closes)
}
