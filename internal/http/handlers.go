package http

import (
	"context"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/period"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

type transactionsResponse struct {
	Count        int                `json:"count"`
	Transactions []core.Transaction `json:"transactions"`
}

type balanceResponse struct {
	Asset     core.Asset `json:"asset"`
	Balance   jsonFloat  `json:"balance"`
	Formatted string     `json:"formatted"`
}

type spentResponse struct {
	Category  core.Category `json:"category"`
	Window    period.Window `json:"window"`
	Spent     jsonFloat     `json:"spent"`
	Remaining jsonFloat     `json:"remaining"`
	Formatted string        `json:"formatted"`
}

type periodResponse struct {
	Period period.Period `json:"period"`
	Window period.Window `json:"window"`
	Values []string      `json:"values"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q, err := ParseTransactionQuery(r.URL.Query())
	if err != nil {
		FromError(r, err).Write(w)
		return
	}

	txs, err := s.reports.Transactions(r.Context(), q)
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	NewJSONResponse().Body(transactionsResponse{Count: len(txs), Transactions: txs}).Write(w)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	b, err := s.reports.Balance(r.Context(), r.PathValue("id"))
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(balanceResponse{
		Asset:     b.Asset,
		Balance:   jsonFloat(b.Balance),
		Formatted: b.Formatted,
	}).Write(w)
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePeriod(r.URL.Query())
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	d, err := s.reports.Details(r.Context(), r.PathValue("id"), p)
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(d).Write(w)
}

func (s *Server) handleSpent(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePeriod(r.URL.Query())
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	c, err := s.reports.Spent(r.Context(), r.PathValue("id"), p)
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(spentResponse{
		Category:  c.Category,
		Window:    c.Window,
		Spent:     jsonFloat(c.Spent),
		Remaining: jsonFloat(c.Remaining),
		Formatted: c.Formatted,
	}).Write(w)
}

func (s *Server) handleCategoryHistory(w http.ResponseWriter, r *http.Request) {
	s.writeHistory(w, r, s.reports.CategoryHistory)
}

func (s *Server) handleAssetHistory(w http.ResponseWriter, r *http.Request) {
	s.writeHistory(w, r, s.reports.AssetHistory)
}

type historyFunc func(ctx context.Context, p period.Period, base string) (report.Series, bool, error)

// writeHistory answers null when the period holds no transactions.
func (s *Server) writeHistory(w http.ResponseWriter, r *http.Request, history historyFunc) {
	q := r.URL.Query()
	p, err := ParsePeriod(q)
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	base, err := ParseBase(q)
	if err != nil {
		FromError(r, err).Write(w)
		return
	}

	series, ok, err := history(r.Context(), p, base)
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	if !ok {
		NewJSONResponse().Body(nil).Write(w)
		return
	}
	NewJSONResponse().Body(series).Write(w)
}

func (s *Server) handlePeriod(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePeriod(r.URL.Query())
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	win := s.reports.Resolve(p)
	NewJSONResponse().Body(periodResponse{Period: p, Window: win, Values: win.Values()}).Write(w)
}

var _ Reports = (*services.ReportService)(nil)
