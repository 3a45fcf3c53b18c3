package payment

import (
	"strings"

	"github.com/kiwisport/clubboard/core/member"
)

type (
	// MonthRow is a member joined with their zero-or-one payment for
	// the selected month. View-only; never persisted.
	MonthRow struct {
		MemberID    int     `json:"member_id"`
		MemberName  string  `json:"member_name"`
		SportType   string  `json:"sport_type"`
		Status      string  `json:"status"`
		Payment     *Record `json:"payment"` // nil when unpaid with no record
		AvatarColor string  `json:"avatar_color"`
		SportColor  string  `json:"sport_color"`
	}

	// Stats are derived from the filtered row set only.
	Stats struct {
		TotalRevenue float64 `json:"total_revenue"`
		PaidCount    int     `json:"paid_count"`
		UnpaidCount  int     `json:"unpaid_count"`
	}

	MonthSheet struct {
		Month string     `json:"month"` // YYYY-MM
		Rows  []MonthRow `json:"rows"`
		Stats Stats      `json:"stats"`
	}
)

// filterMonth keeps records whose month date falls in the YYYY-MM
// month, by string prefix. Not a range query; mirrors the upstream's
// first-of-month month values.
func filterMonth(records []Record, month string) []Record {
	res := make([]Record, 0, len(records))
	for _, rec := range records {
		if strings.HasPrefix(rec.Month, month) {
			res = append(res, rec)
		}
	}
	return res
}

func indexByMember(records []Record) map[int]Record {
	idx := make(map[int]Record, len(records))
	for _, rec := range records {
		if _, ok := idx[rec.Member]; !ok {
			idx[rec.Member] = rec
		}
	}
	return idx
}

// BuildMonthSheet filters members (search, then sport), joins each with
// their payment for the month, and computes revenue stats from the
// filtered rows. Deterministic and side-effect-free.
func BuildMonthSheet(members []member.Member, payments []Record, month string, qf member.QueryFilter) MonthSheet {
	idx := indexByMember(filterMonth(payments, month))

	filtered := member.Filter(members, qf)
	rows := make([]MonthRow, 0, len(filtered))
	for _, m := range filtered {
		row := MonthRow{
			MemberID:    m.ID,
			MemberName:  m.Name,
			SportType:   m.Sport(),
			Status:      StatusUnpaid,
			AvatarColor: member.AvatarColor(m.Name),
			SportColor:  member.SportColor(m.Sport()),
		}
		if rec, ok := idx[m.ID]; ok {
			rec := rec
			row.Payment = &rec
			row.Status = rec.Status
		}
		rows = append(rows, row)
	}

	var stats Stats
	for _, row := range rows {
		if row.Payment != nil {
			stats.TotalRevenue += row.Payment.Amount
		}
		switch row.Status {
		case StatusPaid:
			stats.PaidCount++
		case StatusUnpaid:
			stats.UnpaidCount++
		}
	}

	return MonthSheet{Month: month, Rows: rows, Stats: stats}
}
