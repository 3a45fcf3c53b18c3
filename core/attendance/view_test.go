package attendance

import (
	"testing"

	"github.com/volatiletech/null/v8"

	"github.com/kiwisport/clubboard/core/member"
)

func testMembers() []member.Member {
	return []member.Member{
		{ID: 1, Name: "Karim", SportType: null.StringFrom(member.SportKarate)},
		{ID: 2, Name: "Aziz", SportType: null.StringFrom(member.SportGym)},
		{ID: 3, Name: "Samir", SportType: null.StringFrom(member.SportKarate)},
		{ID: 4, Name: "Fatima"},
	}
}

func TestBuildDaySheetMerge(t *testing.T) {
	members := testMembers()
	records := []Record{
		{ID: null.IntFrom(12), Member: 1, Date: "2026-02-03", Status: StatusPresent},
		{ID: null.IntFrom(13), Member: 2, Date: "2026-02-03", Status: StatusAbsent},
	}

	sheet := BuildDaySheet(members, records, "2026-02-03", "")

	if len(sheet.Rows) != 4 {
		t.Fatalf("BuildDaySheet() returned %d rows, want 4", len(sheet.Rows))
	}

	karim := sheet.Rows[0]
	if karim.MemberName != "Karim" || karim.Status != StatusPresent {
		t.Errorf("row 0 = %s/%s, want Karim/Present", karim.MemberName, karim.Status)
	}
	if !karim.AttendanceID.Valid || karim.AttendanceID.Int != 12 {
		t.Errorf("row 0 AttendanceID = %v, want 12", karim.AttendanceID)
	}
	if karim.AvatarColor != member.AvatarColor("Karim") {
		t.Errorf("row 0 AvatarColor = %s", karim.AvatarColor)
	}
	if karim.SportColor != "orange" {
		t.Errorf("row 0 SportColor = %s, want orange", karim.SportColor)
	}

	// members without a record get a synthetic NOT MARKED row
	samir := sheet.Rows[2]
	if samir.Status != StatusNotMarked {
		t.Errorf("row 2 Status = %s, want %s", samir.Status, StatusNotMarked)
	}
	if samir.AttendanceID.Valid {
		t.Error("row 2 should have no attendance id")
	}

	wantStats := Stats{Total: 4, Present: 1, Absent: 1, Pending: 2}
	if sheet.Stats != wantStats {
		t.Errorf("Stats = %+v, want %+v", sheet.Stats, wantStats)
	}
}

func TestBuildDaySheetSportFilter(t *testing.T) {
	members := testMembers()
	records := []Record{
		{ID: null.IntFrom(12), Member: 1, Date: "2026-02-03", Status: StatusPresent},
		{ID: null.IntFrom(13), Member: 2, Date: "2026-02-03", Status: StatusAbsent},
	}

	sheet := BuildDaySheet(members, records, "2026-02-03", member.SportKarate)

	if len(sheet.Rows) != 2 {
		t.Fatalf("BuildDaySheet() returned %d rows, want 2", len(sheet.Rows))
	}
	for _, row := range sheet.Rows {
		if row.SportType != member.SportKarate {
			t.Errorf("row %d sport = %s", row.MemberID, row.SportType)
		}
	}

	// stats come from the filtered set: Aziz's Absent mark is excluded
	wantStats := Stats{Total: 2, Present: 1, Absent: 0, Pending: 1}
	if sheet.Stats != wantStats {
		t.Errorf("Stats = %+v, want %+v", sheet.Stats, wantStats)
	}
}

func TestBuildDaySheetAllSentinel(t *testing.T) {
	sheet := BuildDaySheet(testMembers(), nil, "2026-02-03", member.FilterAll)
	if len(sheet.Rows) != 4 {
		t.Errorf("BuildDaySheet() with All returned %d rows, want 4", len(sheet.Rows))
	}
	if sheet.Stats.Pending != 4 {
		t.Errorf("Stats.Pending = %d, want 4", sheet.Stats.Pending)
	}
}

func TestBuildDaySheetEmpty(t *testing.T) {
	sheet := BuildDaySheet(nil, nil, "2026-02-03", "")
	if len(sheet.Rows) != 0 {
		t.Errorf("BuildDaySheet() returned %d rows, want 0", len(sheet.Rows))
	}
	if sheet.Stats != (Stats{}) {
		t.Errorf("Stats = %+v, want zero", sheet.Stats)
	}
}

func TestIndexByMemberFirstWins(t *testing.T) {
	records := []Record{
		{ID: null.IntFrom(1), Member: 9, Status: StatusPresent},
		{ID: null.IntFrom(2), Member: 9, Status: StatusAbsent},
	}
	idx := indexByMember(records)
	if rec := idx[9]; rec.ID.Int != 1 {
		t.Errorf("indexByMember() kept record %d, want 1", rec.ID.Int)
	}
}
