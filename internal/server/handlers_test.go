package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	authdomain "github.com/boxtrack/boxtrack/internal/auth/domain"
	"github.com/boxtrack/boxtrack/internal/auth/session"
	boxdomain "github.com/boxtrack/boxtrack/internal/boxtype/domain"
	"github.com/boxtrack/boxtrack/internal/config"
	dashboarddomain "github.com/boxtrack/boxtrack/internal/dashboard/domain"
	insightsdomain "github.com/boxtrack/boxtrack/internal/insights/domain"
	"github.com/boxtrack/boxtrack/internal/providers/report"
	usagedomain "github.com/boxtrack/boxtrack/internal/usage/domain"
)

const testUserID = snowflake.ID(42)

type fakeAuthService struct {
	registerCalls int
	loginCalls    int
	logoutCalls   int

	registerErr error
	loginErr    error
	authErr     error
}

func (f *fakeAuthService) Register(ctx context.Context, req authdomain.RegisterRequest) (*authdomain.User, error) {
	f.registerCalls++
	_ = ctx
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &authdomain.User{
		ID:          testUserID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	f.loginCalls++
	_ = ctx
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &authdomain.LoginResult{
		User: &authdomain.UserView{
			ID:    testUserID.String(),
			Email: req.Email,
		},
		RawToken:  "session-token",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, rawToken string) error {
	f.logoutCalls++
	_ = ctx
	_ = rawToken
	return nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawToken string) (*authdomain.Session, error) {
	_ = ctx
	_ = rawToken
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &authdomain.Session{
		ID:     snowflake.ID(1),
		UserID: testUserID,
	}, nil
}

func (f *fakeAuthService) GetUser(ctx context.Context, userID string) (*authdomain.User, error) {
	_ = ctx
	return &authdomain.User{
		ID:    testUserID,
		Email: "alice@example.com",
	}, nil
}

type fakeBoxService struct {
	createErr error
	getErr    error
	deleteErr error

	box *boxdomain.Response
}

func newFakeBoxService() *fakeBoxService {
	cost := decimal.RequireFromString("2.50")
	return &fakeBoxService{
		box: &boxdomain.Response{
			ID:           "101",
			Name:         "Small Box",
			Quantity:     50,
			Cost:         cost,
			MinThreshold: 10,
		},
	}
}

func (f *fakeBoxService) Create(ctx context.Context, userID snowflake.ID, req boxdomain.CreateRequest) (*boxdomain.Response, error) {
	_ = ctx
	_ = userID
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.box, nil
}

func (f *fakeBoxService) List(ctx context.Context, userID snowflake.ID) ([]boxdomain.Response, error) {
	_ = ctx
	_ = userID
	return []boxdomain.Response{*f.box}, nil
}

func (f *fakeBoxService) GetByID(ctx context.Context, userID snowflake.ID, id string) (*boxdomain.Response, error) {
	_ = ctx
	_ = userID
	_ = id
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.box, nil
}

func (f *fakeBoxService) Update(ctx context.Context, userID snowflake.ID, req boxdomain.UpdateRequest) (*boxdomain.Response, error) {
	_ = ctx
	_ = userID
	_ = req
	return f.box, nil
}

func (f *fakeBoxService) Delete(ctx context.Context, userID snowflake.ID, id string) error {
	_ = ctx
	_ = userID
	_ = id
	return f.deleteErr
}

func (f *fakeBoxService) Restock(ctx context.Context, userID snowflake.ID, id string, quantity int64) (*boxdomain.Response, error) {
	_ = ctx
	_ = userID
	_ = id
	f.box.Quantity += quantity
	return f.box, nil
}

type fakeUsageService struct {
	result *usagedomain.RecordResult
	list   *usagedomain.ListResponse
}

func (f *fakeUsageService) Record(ctx context.Context, userID snowflake.ID, req usagedomain.RecordRequest) (*usagedomain.RecordResult, error) {
	_ = ctx
	_ = userID
	if len(req.Items) == 0 {
		return nil, usagedomain.ErrEmptyBatch
	}
	return f.result, nil
}

func (f *fakeUsageService) List(ctx context.Context, userID snowflake.ID, req usagedomain.ListRequest) (*usagedomain.ListResponse, error) {
	_ = ctx
	_ = userID
	_ = req
	return f.list, nil
}

type fakeInsightsService struct {
	trend       *insightsdomain.TrendResponse
	predictions *insightsdomain.PredictionsResponse
}

func (f *fakeInsightsService) Trend(ctx context.Context, userID snowflake.ID, days int) (*insightsdomain.TrendResponse, error) {
	_ = ctx
	_ = userID
	_ = days
	return f.trend, nil
}

func (f *fakeInsightsService) Predictions(ctx context.Context, userID snowflake.ID) (*insightsdomain.PredictionsResponse, error) {
	_ = ctx
	_ = userID
	if f.predictions != nil {
		return f.predictions, nil
	}
	return &insightsdomain.PredictionsResponse{LookbackDays: 14, Predictions: []insightsdomain.Prediction{}}, nil
}

type fakeDashboardService struct{}

func (f *fakeDashboardService) Stats(ctx context.Context, userID snowflake.ID) (*dashboarddomain.Stats, error) {
	_ = ctx
	_ = userID
	return &dashboarddomain.Stats{
		TotalBoxTypes:  1,
		TotalInventory: 50,
		TotalValue:     decimal.RequireFromString("125.00"),
		LowStockBoxes:  []dashboarddomain.LowStockBox{},
	}, nil
}

type fakeReportProvider struct {
	lastFormat string
}

func (f *fakeReportProvider) GenerateCSV(ctx context.Context, rep report.InventoryReport) (io.Reader, error) {
	f.lastFormat = "csv"
	_ = ctx
	_ = rep
	return strings.NewReader("name,quantity\n"), nil
}

func (f *fakeReportProvider) GeneratePDF(ctx context.Context, rep report.InventoryReport) (io.Reader, error) {
	f.lastFormat = "pdf"
	_ = ctx
	_ = rep
	return bytes.NewReader([]byte("%PDF-1.7")), nil
}

func newTestServer(authSvc *fakeAuthService, boxSvc *fakeBoxService, usageSvc *fakeUsageService) (*Server, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	if authSvc == nil {
		authSvc = &fakeAuthService{}
	}
	if boxSvc == nil {
		boxSvc = newFakeBoxService()
	}
	if usageSvc == nil {
		usageSvc = &fakeUsageService{}
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:       router,
		cfg:          config.Config{},
		sessions:     session.NewManager(config.Config{}),
		authsvc:      authSvc,
		boxSvc:       boxSvc,
		usageSvc:     usageSvc,
		insightsSvc:  &fakeInsightsService{},
		dashboardSvc: &fakeDashboardService{},
		reports:      &fakeReportProvider{},
	}
	srv.registerAuthRoutes()
	srv.registerAPIRoutes()

	return srv, router
}

func doJSON(router *gin.Engine, method, path, body string, authorized bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		req.Header.Set("Authorization", "Bearer session-token")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRegisterHandlerCreatesUser(t *testing.T) {
	authSvc := &fakeAuthService{}
	_, router := newTestServer(authSvc, nil, nil)

	resp := doJSON(router, http.MethodPost, "/auth/register", `{"email":"alice@example.com","password":"correct horse","display_name":"Alice"}`, false)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if authSvc.registerCalls != 1 {
		t.Fatalf("expected 1 register call, got %d", authSvc.registerCalls)
	}
}

func TestRegisterHandlerDuplicateEmailConflict(t *testing.T) {
	authSvc := &fakeAuthService{registerErr: authdomain.ErrUserExists}
	_, router := newTestServer(authSvc, nil, nil)

	resp := doJSON(router, http.MethodPost, "/auth/register", `{"email":"alice@example.com","password":"correct horse"}`, false)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	_, router := newTestServer(nil, nil, nil)

	resp := doJSON(router, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"correct horse"}`, false)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body loginResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Token != "session-token" {
		t.Fatalf("expected token in response, got %q", body.Token)
	}

	foundCookie := false
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == session.DefaultCookieName && cookie.Value == "session-token" {
			foundCookie = true
		}
	}
	if !foundCookie {
		t.Fatal("expected session cookie to be set")
	}
}

func TestLoginInvalidCredentialsUnauthorized(t *testing.T) {
	authSvc := &fakeAuthService{loginErr: authdomain.ErrInvalidCredentials}
	_, router := newTestServer(authSvc, nil, nil)

	resp := doJSON(router, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"wrong"}`, false)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	_, router := newTestServer(nil, nil, nil)

	resp := doJSON(router, http.MethodGet, "/api/boxes", "", false)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestAuthRequiredRejectsExpiredSession(t *testing.T) {
	authSvc := &fakeAuthService{authErr: authdomain.ErrSessionExpired}
	_, router := newTestServer(authSvc, nil, nil)

	resp := doJSON(router, http.MethodGet, "/api/boxes", "", true)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestCreateBoxTypeValidationError(t *testing.T) {
	boxSvc := newFakeBoxService()
	boxSvc.createErr = boxdomain.ErrInvalidName
	_, router := newTestServer(nil, boxSvc, nil)

	resp := doJSON(router, http.MethodPost, "/api/boxes", `{"name":""}`, true)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "invalid_name") {
		t.Fatalf("expected invalid_name code in body, got %s", resp.Body.String())
	}
}

func TestGetBoxTypeNotFound(t *testing.T) {
	boxSvc := newFakeBoxService()
	boxSvc.getErr = boxdomain.ErrNotFound
	_, router := newTestServer(nil, boxSvc, nil)

	resp := doJSON(router, http.MethodGet, "/api/boxes/999", "", true)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestDeleteBoxTypeNoContent(t *testing.T) {
	_, router := newTestServer(nil, nil, nil)

	resp := doJSON(router, http.MethodDelete, "/api/boxes/101", "", true)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}
}

func TestRestockBoxType(t *testing.T) {
	boxSvc := newFakeBoxService()
	_, router := newTestServer(nil, boxSvc, nil)

	resp := doJSON(router, http.MethodPost, "/api/boxes/101/restock", `{"quantity":25}`, true)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if boxSvc.box.Quantity != 75 {
		t.Fatalf("expected quantity 75 after restock, got %d", boxSvc.box.Quantity)
	}
}

func TestRecordUsageSingleItemCreated(t *testing.T) {
	usageSvc := &fakeUsageService{
		result: &usagedomain.RecordResult{
			Items: []usagedomain.RecordItemResult{
				{Index: 0, Success: true, Event: &usagedomain.Response{ID: "5", BoxTypeID: "101", QuantityUsed: 3}},
			},
			Succeeded: 1,
		},
	}
	_, router := newTestServer(nil, nil, usageSvc)

	resp := doJSON(router, http.MethodPost, "/api/usage", `{"box_type_id":"101","quantity_used":3}`, true)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var event usagedomain.Response
	if err := json.Unmarshal(resp.Body.Bytes(), &event); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if event.BoxTypeID != "101" || event.QuantityUsed != 3 {
		t.Fatalf("unexpected event in response: %+v", event)
	}
}

func TestRecordUsageSingleItemInsufficientStock(t *testing.T) {
	usageSvc := &fakeUsageService{
		result: &usagedomain.RecordResult{
			Items: []usagedomain.RecordItemResult{
				{Index: 0, Success: false, Error: usagedomain.ErrInsufficientStock.Error()},
			},
			Failed: 1,
		},
	}
	_, router := newTestServer(nil, nil, usageSvc)

	resp := doJSON(router, http.MethodPost, "/api/usage", `{"box_type_id":"101","quantity_used":9999}`, true)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "insufficient_stock") {
		t.Fatalf("expected insufficient_stock in body, got %s", resp.Body.String())
	}
}

func TestRecordUsageBatchReturnsPerItemResults(t *testing.T) {
	usageSvc := &fakeUsageService{
		result: &usagedomain.RecordResult{
			Items: []usagedomain.RecordItemResult{
				{Index: 0, Success: true, Event: &usagedomain.Response{ID: "5"}},
				{Index: 1, Success: false, Error: usagedomain.ErrInsufficientStock.Error()},
			},
			Succeeded: 1,
			Failed:    1,
		},
	}
	_, router := newTestServer(nil, nil, usageSvc)

	body := `[{"box_type_id":"101","quantity_used":3},{"box_type_id":"101","quantity_used":9999}]`
	resp := doJSON(router, http.MethodPost, "/api/usage", body, true)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for batch, got %d: %s", resp.Code, resp.Body.String())
	}

	var result usagedomain.RecordResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Succeeded != 1 || result.Failed != 1 {
		t.Fatalf("expected 1 succeeded and 1 failed, got %+v", result)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 item results, got %d", len(result.Items))
	}
}

func TestRecordUsageMalformedBody(t *testing.T) {
	_, router := newTestServer(nil, nil, nil)

	resp := doJSON(router, http.MethodPost, "/api/usage", `not json`, true)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestListUsageReturnsEvents(t *testing.T) {
	usageSvc := &fakeUsageService{
		list: &usagedomain.ListResponse{
			Events: []usagedomain.Response{{ID: "5", BoxTypeID: "101", QuantityUsed: 3}},
		},
	}
	_, router := newTestServer(nil, nil, usageSvc)

	resp := doJSON(router, http.MethodGet, "/api/usage?days=7&page_size=10", "", true)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"box_type_id":"101"`) {
		t.Fatalf("expected event in body, got %s", resp.Body.String())
	}
}

func TestUsageTrendsRejectsBadDays(t *testing.T) {
	_, router := newTestServer(nil, nil, nil)

	resp := doJSON(router, http.MethodGet, "/api/usage/trends?days=abc", "", true)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestGetStats(t *testing.T) {
	_, router := newTestServer(nil, nil, nil)

	resp := doJSON(router, http.MethodGet, "/api/stats", "", true)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"total_inventory":50`) {
		t.Fatalf("expected stats in body, got %s", resp.Body.String())
	}
}

func TestExportInventoryCSV(t *testing.T) {
	_, router := newTestServer(nil, nil, nil)

	resp := doJSON(router, http.MethodGet, "/api/export", "", true)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected text/csv content type, got %q", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Fatalf("expected attachment disposition, got %q", cd)
	}
}

func TestExportInventoryRejectsUnknownFormat(t *testing.T) {
	_, router := newTestServer(nil, nil, nil)

	resp := doJSON(router, http.MethodGet, "/api/export?format=xlsx", "", true)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestExportInventoryPDF(t *testing.T) {
	srv, router := newTestServer(nil, nil, nil)

	resp := doJSON(router, http.MethodGet, "/api/export?format=pdf", "", true)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf content type, got %q", ct)
	}
	provider := srv.reports.(*fakeReportProvider)
	if provider.lastFormat != "pdf" {
		t.Fatalf("expected pdf generation, got %q", provider.lastFormat)
	}
}

func TestUsageRateLimitDisabledPassesThrough(t *testing.T) {
	usageSvc := &fakeUsageService{
		result: &usagedomain.RecordResult{
			Items:     []usagedomain.RecordItemResult{{Index: 0, Success: true, Event: &usagedomain.Response{ID: "5"}}},
			Succeeded: 1,
		},
	}
	_, router := newTestServer(nil, nil, usageSvc)

	resp := doJSON(router, http.MethodPost, "/api/usage", `{"box_type_id":"101","quantity_used":1}`, true)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201 with limiter disabled, got %d", resp.Code)
	}
}
