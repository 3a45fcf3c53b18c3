package attendance

import (
	"github.com/volatiletech/null/v8"

	"github.com/kiwisport/clubboard/core/member"
)

type (
	// DayRow is a member joined with their zero-or-one attendance
	// record for the selected date. View-only; never persisted.
	DayRow struct {
		MemberID     int      `json:"member_id"`
		MemberName   string   `json:"member_name"`
		SportType    string   `json:"sport_type"`
		Status       string   `json:"status"`
		AttendanceID null.Int `json:"attendance_id"`
		AvatarColor  string   `json:"avatar_color"`
		SportColor   string   `json:"sport_color"`
	}

	// Stats are computed from the post-filter row set, so a sport
	// filter changes the displayed totals along with the visible rows.
	Stats struct {
		Total   int `json:"total"`
		Present int `json:"present"`
		Absent  int `json:"absent"`
		Pending int `json:"pending"`
	}

	DaySheet struct {
		Date     string   `json:"date"`
		Sport    string   `json:"sport"`
		ReadOnly bool     `json:"read_only"`
		Rows     []DayRow `json:"rows"`
		Stats    Stats    `json:"stats"`
	}
)

// indexByMember maps member ID to that member's record for the day.
// The first record wins; the upstream keeps (member, date) unique but
// the merge does not depend on it.
func indexByMember(records []Record) map[int]Record {
	idx := make(map[int]Record, len(records))
	for _, rec := range records {
		if _, ok := idx[rec.Member]; !ok {
			idx[rec.Member] = rec
		}
	}
	return idx
}

// BuildDaySheet merges every member with the date's records, then
// applies the sport filter, then computes stats from the filtered set.
// Deterministic and side-effect-free.
func BuildDaySheet(members []member.Member, records []Record, date, sport string) DaySheet {
	idx := indexByMember(records)

	merged := make([]DayRow, 0, len(members))
	for _, m := range members {
		row := DayRow{
			MemberID:    m.ID,
			MemberName:  m.Name,
			SportType:   m.Sport(),
			Status:      StatusNotMarked,
			AvatarColor: member.AvatarColor(m.Name),
			SportColor:  member.SportColor(m.Sport()),
		}
		if rec, ok := idx[m.ID]; ok {
			row.Status = rec.Status
			row.AttendanceID = rec.ID
		}
		merged = append(merged, row)
	}

	rows := merged
	if sport != "" && sport != member.FilterAll {
		rows = make([]DayRow, 0, len(merged))
		for _, row := range merged {
			if row.SportType == sport {
				rows = append(rows, row)
			}
		}
	}

	var stats Stats
	stats.Total = len(rows)
	for _, row := range rows {
		switch row.Status {
		case StatusPresent:
			stats.Present++
		case StatusAbsent:
			stats.Absent++
		default:
			stats.Pending++
		}
	}

	return DaySheet{Date: date, Sport: sport, Rows: rows, Stats: stats}
}
