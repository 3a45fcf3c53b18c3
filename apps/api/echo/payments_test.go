package echoapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/kiwisport/clubboard/core/operator"
	"github.com/kiwisport/clubboard/core/payment"
	testutil "github.com/kiwisport/clubboard/tests"
)

func currentMonthStr() string { return time.Now().UTC().Format("2006-01") }

func setupPayments(t *testing.T) (*testApp, string, string) {
	t.Helper()
	records := []payment.Record{
		{
			ID:     null.IntFrom(7),
			Member: 1,
			Month:  currentMonthStr() + "-01",
			Status: payment.StatusPaid,
			Amount: 200,
		},
		{
			ID:     null.IntFrom(8),
			Member: 2,
			Month:  "2020-01-01", // old month; excluded from the current sheet
			Status: payment.StatusPaid,
			Amount: 150,
		},
	}
	app := setup(t, testRosterMembers(), nil, records)
	staff := testutil.CreateOperator(t, app.opRepo, "Staff Bot", "staff", "staff@test.cd", "LocalOne", []string{operator.RoleStaff}, true)
	admin := testutil.CreateOperator(t, app.opRepo, "Admin Bot", "admin", "admin@test.cd", "LocalOne", operator.AllRoles, true)
	return app, getToken(t, staff), getToken(t, admin)
}

func getMonthSheet(t *testing.T, app *testApp, token, path string) payment.MonthSheet {
	t.Helper()
	req, rec := newAuthRequest(http.MethodGet, path, token)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s failed! code = %v; body %s", path, rec.Code, rec.Body.String())
	}
	var sheet payment.MonthSheet
	if err := json.Unmarshal(rec.Body.Bytes(), &sheet); err != nil {
		t.Fatalf("failed to unmarshal MonthSheet: %v", err)
	}
	return sheet
}

func TestPaymentSheet(t *testing.T) {
	app, token, _ := setupPayments(t)

	sheet := getMonthSheet(t, app, token, "/v1/payments")
	if sheet.Month != currentMonthStr() {
		t.Errorf("failed! month = %q; want %q", sheet.Month, currentMonthStr())
	}
	if len(sheet.Rows) != 3 {
		t.Fatalf("failed! got %d rows; want 3", len(sheet.Rows))
	}
	if row := sheet.Rows[0]; row.Status != payment.StatusPaid || row.Payment == nil || row.Payment.Amount != 200 {
		t.Errorf("failed! row = %+v", row)
	}
	// member 2's old payment does not count for the current month
	if row := sheet.Rows[1]; row.Status != payment.StatusUnpaid || row.Payment != nil {
		t.Errorf("failed! row = %+v", row)
	}
	want := payment.Stats{TotalRevenue: 200, PaidCount: 1, UnpaidCount: 2}
	if sheet.Stats != want {
		t.Errorf("failed! stats = %+v; want %+v", sheet.Stats, want)
	}

	// month selection
	sheet = getMonthSheet(t, app, token, "/v1/payments?month=2020-01")
	if row := sheet.Rows[1]; row.Status != payment.StatusPaid || row.Payment == nil || row.Payment.Amount != 150 {
		t.Errorf("failed! row = %+v", row)
	}

	// sport filter narrows the rows and the revenue with them
	sheet = getMonthSheet(t, app, token, "/v1/payments?month="+currentMonthStr()+"&sport=Gym")
	if len(sheet.Rows) != 1 || sheet.Rows[0].MemberName != "Aziz" {
		t.Errorf("failed! rows = %+v", sheet.Rows)
	}
	want = payment.Stats{UnpaidCount: 1}
	if sheet.Stats != want {
		t.Errorf("failed! stats = %+v; want %+v", sheet.Stats, want)
	}

	// malformed month is rejected
	req, rec := newAuthRequest(http.MethodGet, "/v1/payments?month=012020", token)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
	}
}

func TestPaymentSave(t *testing.T) {
	app, token, _ := setupPayments(t)
	getMonthSheet(t, app, token, "/v1/payments") // prime the ledger

	// new payment for the month creates an upstream record
	req, rec := newAuthRequest(http.MethodPost, "/v1/payments", token,
		[]byte(`{"member_id": 2, "status": "Paid", "amount": 180, "assurance": true}`))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var saved payment.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("failed to unmarshal Record: %v", err)
	}
	if !saved.ID.Valid || saved.Month != currentMonthStr()+"-01" || saved.Amount != 180 {
		t.Errorf("failed! record = %+v", saved)
	}
	if calls := app.payAPI.Calls; calls[len(calls)-1] != "CreatePayment" {
		t.Errorf("failed! calls = %v", calls)
	}

	// a known payment id selects update over create
	req, rec = newAuthRequest(http.MethodPost, "/v1/payments", token,
		[]byte(`{"payment_id": 7, "member_id": 1, "status": "Paid", "amount": 250, "passport": true}`))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	if calls := app.payAPI.Calls; calls[len(calls)-1] != "UpdatePayment 7" {
		t.Errorf("failed! calls = %v", calls)
	}

	sheet := getMonthSheet(t, app, token, "/v1/payments")
	want := payment.Stats{TotalRevenue: 430, PaidCount: 2, UnpaidCount: 1}
	if sheet.Stats != want {
		t.Errorf("failed! stats = %+v; want %+v", sheet.Stats, want)
	}
}

func TestPaymentSaveValidation(t *testing.T) {
	app, token, _ := setupPayments(t)
	getMonthSheet(t, app, token, "/v1/payments") // prime the ledger

	tests := []httpTest{
		{
			name:     "missing member",
			body:     []byte(`{"status": "Paid", "amount": 100}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "bad status",
			body:     []byte(`{"member_id": 1, "status": "Pending", "amount": 100}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "negative amount",
			body:     []byte(`{"member_id": 1, "status": "Paid", "amount": -5}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "passport fee for karate member",
			body:     []byte(`{"member_id": 1, "status": "Paid", "amount": 100, "passport": true}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "passport fee for gym member",
			body:     []byte(`{"member_id": 2, "status": "Paid", "amount": 100, "passport": true}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"passport": "passport fee only applies to Karate members"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/payments", token, tt.body)
			app.server.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				testutil.AssertJSONEqual(t, rec.Body.Bytes(), tt.wantData)
			}
		})
	}
}

func TestPaymentRemind(t *testing.T) {
	app, staffToken, adminToken := setupPayments(t)
	getMonthSheet(t, app, adminToken, "/v1/payments") // prime the ledger

	// reminders are admin-only
	req, rec := newAuthRequest(http.MethodPost, "/v1/payments/remind", staffToken)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusForbidden, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/payments/remind", adminToken)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	if n := len(app.mailSvc.Sent); n != 1 {
		t.Fatalf("failed! sent %d emails; want 1", n)
	}
	msg := app.mailSvc.Sent[0]
	if msg.To[0].Address != app.conf.AdminEmail {
		t.Errorf("failed! reminder sent to %q; want %q", msg.To[0].Address, app.conf.AdminEmail)
	}
	if !strings.Contains(msg.BodyStr, "Aziz") || !strings.Contains(msg.BodyStr, "Karima") {
		t.Errorf("failed! reminder body %q", msg.BodyStr)
	}

	// once everyone has paid, no email goes out
	for _, id := range []int{2, 3} {
		body := marchallObj(t, payment.SavePayment{MemberID: id, Status: payment.StatusPaid, Amount: 100})
		req, rec = newAuthRequest(http.MethodPost, "/v1/payments", adminToken, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	}
	req, rec = newAuthRequest(http.MethodPost, "/v1/payments/remind", adminToken)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	if n := len(app.mailSvc.Sent); n != 1 {
		t.Errorf("failed! sent %d emails; want 1", n)
	}
	var resp SuccessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal SuccessResponse: %v", err)
	}
	if !strings.HasPrefix(resp.Success, "All members have paid") {
		t.Errorf("failed! success = %q", resp.Success)
	}
}
