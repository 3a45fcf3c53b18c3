package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/kiwisport/clubboard/core"
	"github.com/kiwisport/clubboard/core/attendance"
	"github.com/kiwisport/clubboard/core/member"
	"github.com/kiwisport/clubboard/core/operator"
	"github.com/kiwisport/clubboard/core/overview"
	"github.com/kiwisport/clubboard/core/payment"
	emailsvc "github.com/kiwisport/clubboard/services/email"
	logsvc "github.com/kiwisport/clubboard/services/logger"
	inmemdb "github.com/kiwisport/clubboard/storage/database/inmem"
)

type testApp struct {
	server  Server
	conf    *core.Config
	opSvc   *operator.Service
	opRepo  operator.Repository
	mailSvc *emailsvc.MockService
	dir     *member.DirectoryMock
	attAPI  *attendance.APIMock
	payAPI  *payment.APIMock
}

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

func newTestConfig() *core.Config {
	conf := &core.Config{
		Env:              "TEST",
		AppName:          "Clubboard",
		TestMode:         true,
		SecretKey:        "secret",
		AdminEmail:       "admin@test.cd",
		DefaultFromEmail: "noreply@test.cd",
		FrontendBaseURL:  "http://localhost:3000",
	}
	conf.Server.JWTExpirationDelta = 7 * 24 * time.Hour
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour
	conf.Server.PasswordResetTimeoutDelta = 3 * 24 * time.Hour
	return conf
}

func setup(t *testing.T, members []member.Member, attRecords []attendance.Record, payRecords []payment.Record) *testApp {
	t.Helper()

	conf := newTestConfig()

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	opRepo := inmemdb.NewOperatorRepository()
	mailSvc := emailsvc.NewMockService()
	opSvc := operator.NewService(opRepo, mailSvc, conf)

	dir := member.NewDirectoryMock(members...)
	attAPI := attendance.NewAPIMock(attRecords...)
	payAPI := payment.NewAPIMock(payRecords...)

	app := &testApp{
		conf:    conf,
		opSvc:   opSvc,
		opRepo:  opRepo,
		mailSvc: mailSvc,
		dir:     dir,
		attAPI:  attAPI,
		payAPI:  payAPI,
	}
	app.server = NewServer(
		"", /* addr */
		&Deps{
			Conf:        conf,
			Logger:      logsvc.NewStdLogger(nil),
			Validate:    validate,
			Translator:  translator,
			OperatorSvc: opSvc,
			MailSvc:     mailSvc,
			Roster:      member.NewRoster(dir),
			Board:       attendance.NewBoard(attAPI, dir),
			Ledger:      payment.NewLedger(payAPI, dir),
			Overview:    overview.NewService(dir, attAPI),
		},
	)
	return app
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, op operator.Operator) string {
	t.Helper()
	claims := GetOperatorClaims(op)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
