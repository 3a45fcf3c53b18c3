// Package overview computes the dashboard landing-page aggregates from
// the member roster and today's attendance.
package overview

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/kiwisport/clubboard/core/attendance"
	"github.com/kiwisport/clubboard/core/member"
)

var nowFunc = time.Now // mockable

type (
	SportCount struct {
		Sport string `json:"sport"`
		Count int    `json:"count"`
	}

	MonthCount struct {
		Month string `json:"month"` // YYYY-MM
		Count int    `json:"count"`
	}

	DayCounts struct {
		Present   int `json:"present"`
		Absent    int `json:"absent"`
		NotMarked int `json:"not_marked"`
	}

	Overview struct {
		Date            string       `json:"date"`
		TotalMembers    int          `json:"total_members"`
		ActiveMembers   int          `json:"active_members"`
		InactiveMembers int          `json:"inactive_members"`
		Sports          []SportCount `json:"sports"`
		Growth          []MonthCount `json:"growth"`
		Attendance      DayCounts    `json:"attendance"`
	}

	Service struct {
		dir member.Directory
		att attendance.API
	}
)

func NewService(dir member.Directory, att attendance.API) *Service {
	return &Service{dir: dir, att: att}
}

// Snapshot fetches fresh collections and builds the overview for today.
func (svc *Service) Snapshot(ctx context.Context) (Overview, error) {
	date := nowFunc().UTC().Format("2006-01-02")

	members, err := svc.dir.ListMembers(ctx)
	if err != nil {
		return Overview{}, errors.Wrap(err, "listing members")
	}
	records, err := svc.att.ListAttendance(ctx, date)
	if err != nil {
		return Overview{}, errors.Wrap(err, "listing attendance")
	}
	return Build(members, records, date), nil
}

// Build is the pure aggregation behind Snapshot.
func Build(members []member.Member, records []attendance.Record, date string) Overview {
	ov := Overview{Date: date, TotalMembers: len(members)}

	sports := make(map[string]int)
	growth := make(map[string]int)
	for _, m := range members {
		if m.IsActive() {
			ov.ActiveMembers++
		}
		sport := m.Sport()
		if sport == "" {
			sport = "Unknown"
		}
		sports[sport]++

		if reg := m.RegistrationDate.String; len(reg) >= 7 {
			growth[reg[:7]]++
		}
	}
	ov.InactiveMembers = ov.TotalMembers - ov.ActiveMembers

	for sport, count := range sports {
		ov.Sports = append(ov.Sports, SportCount{Sport: sport, Count: count})
	}
	sort.Slice(ov.Sports, func(i, j int) bool { return ov.Sports[i].Sport < ov.Sports[j].Sport })

	for month, count := range growth {
		ov.Growth = append(ov.Growth, MonthCount{Month: month, Count: count})
	}
	sort.Slice(ov.Growth, func(i, j int) bool { return ov.Growth[i].Month < ov.Growth[j].Month })

	for _, rec := range records {
		switch rec.Status {
		case attendance.StatusPresent:
			ov.Attendance.Present++
		case attendance.StatusAbsent:
			ov.Attendance.Absent++
		}
	}
	ov.Attendance.NotMarked = ov.TotalMembers - ov.Attendance.Present - ov.Attendance.Absent

	return ov
}
