package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/volatiletech/null/v8"

	"github.com/kiwisport/clubboard/core/attendance"
	"github.com/kiwisport/clubboard/core/operator"
	"github.com/kiwisport/clubboard/core/overview"
	"github.com/kiwisport/clubboard/services/club"
	testutil "github.com/kiwisport/clubboard/tests"
)

func TestOverview(t *testing.T) {
	records := []attendance.Record{
		{ID: null.IntFrom(12), Member: 1, Date: todayStr(), Status: attendance.StatusPresent},
		{ID: null.IntFrom(13), Member: 3, Date: todayStr(), Status: attendance.StatusAbsent},
	}
	app := setup(t, testRosterMembers(), records, nil)
	op := testutil.CreateOperator(t, app.opRepo, "Staff Bot", "staff", "staff@test.cd", "LocalOne", []string{operator.RoleStaff}, true)
	token := getToken(t, op)

	req, rec := newAuthRequest(http.MethodGet, "/v1/overview", "")
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusUnauthorized)
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/overview", token)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var ov overview.Overview
	if err := json.Unmarshal(rec.Body.Bytes(), &ov); err != nil {
		t.Fatalf("failed to unmarshal Overview: %v", err)
	}
	if ov.Date != todayStr() {
		t.Errorf("failed! date = %q; want %q", ov.Date, todayStr())
	}
	if ov.TotalMembers != 3 || ov.ActiveMembers != 2 || ov.InactiveMembers != 1 {
		t.Errorf("failed! overview = %+v", ov)
	}
	wantSports := []overview.SportCount{{Sport: "Football", Count: 1}, {Sport: "Gym", Count: 1}, {Sport: "Karate", Count: 1}}
	testutil.AssertJSONEqual(t, marchallObj(t, ov.Sports), marchallObj(t, wantSports))
	want := overview.DayCounts{Present: 1, Absent: 1, NotMarked: 1}
	if ov.Attendance != want {
		t.Errorf("failed! attendance = %+v; want %+v", ov.Attendance, want)
	}
}

func TestOverviewUpstreamFailure(t *testing.T) {
	app := setup(t, testRosterMembers(), nil, nil)
	op := testutil.CreateOperator(t, app.opRepo, "Staff Bot", "staff", "staff@test.cd", "LocalOne", []string{operator.RoleStaff}, true)
	app.dir.Err = &club.APIError{StatusCode: http.StatusServiceUnavailable, Body: "down"}

	req, rec := newAuthRequest(http.MethodGet, "/v1/overview", getToken(t, op))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusBadGateway, rec.Body.String())
	}
	testutil.AssertJSONEqual(t, rec.Body.Bytes(), marchallObj(t, httpErr{Error: "upstream club API error"}))
}
