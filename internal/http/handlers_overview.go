package http

import (
	"log/slog"
	"net/http"

	"kharcha/internal/core"
	applog "kharcha/internal/log"
)

type overviewData struct {
	Flash    *Flash
	Username string
	Summary  core.OverviewSummary
	Rows     []breakdownRow
}

// breakdownRow is one category line of the breakdown chart. Width scales the
// bar against the largest category; Percentage is preformatted to two
// decimals.
type breakdownRow struct {
	Category   core.Category
	Amount     core.Money
	Percentage string
	Width      int
}

// handleOverview renders the analytics page: category breakdown with
// percentages, totals, average and the most recent expenses.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	owner := userID(ctx)

	expenses, err := s.store.ListExpenses(ctx, owner)
	if err != nil {
		slog.ErrorContext(ctx, "List expenses failed", applog.FieldError, err, applog.FieldUserID, owner)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	var username string
	if user, err := s.store.GetUser(ctx, owner); err == nil {
		username = user.Username
	}

	summary := core.SummarizeOverview(expenses)

	// Scale bars so the biggest category fills its row.
	var maxCents int64
	for _, share := range summary.Breakdown {
		if share.Amount.Cents > maxCents {
			maxCents = share.Amount.Cents
		}
	}
	rows := make([]breakdownRow, 0, len(summary.Breakdown))
	for _, share := range summary.Breakdown {
		width := 0
		if maxCents > 0 && share.Amount.Cents > 0 {
			width = int((share.Amount.Cents*100 + maxCents/2) / maxCents)
			if width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		rows = append(rows, breakdownRow{
			Category:   share.Category,
			Amount:     share.Amount,
			Percentage: share.Percentage.StringFixed(2),
			Width:      width,
		})
	}

	s.render(w, r, "overview.html", overviewData{
		Flash:    popFlash(w, r),
		Username: username,
		Summary:  summary,
		Rows:     rows,
	})
}
