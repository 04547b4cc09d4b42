package admin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docsort/docsort-api/internal/domain/account"
	"github.com/docsort/docsort-api/internal/domain/admin"
	"github.com/docsort/docsort-api/internal/domain/usage"
	"github.com/docsort/docsort-api/internal/pkg/password"
)

/* =========================
   Fakes
   ========================= */

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]*account.CreditAccount
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: make(map[string]*account.CreditAccount)}
}

func (f *fakeAccounts) Create(ctx context.Context, code string, credits int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[code]; ok {
		return account.ErrAlreadyExists
	}
	now := time.Now()
	f.accounts[code] = &account.CreditAccount{Code: code, Credits: credits, CreatedAt: now, UpdatedAt: now}
	return nil
}

func (f *fakeAccounts) Grant(ctx context.Context, code string, amount int) error {
	if amount <= 0 {
		return account.ErrInvalidAmount
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[code]
	if !ok {
		return account.ErrNotFound
	}
	acc.Credits += amount
	return nil
}

func (f *fakeAccounts) GetByCode(ctx context.Context, code string) (*account.CreditAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[code]
	if !ok {
		return nil, account.ErrNotFound
	}
	copied := *acc
	return &copied, nil
}

func (f *fakeAccounts) List(ctx context.Context, limit, offset int) ([]account.CreditAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]account.CreditAccount, 0, len(f.accounts))
	for _, acc := range f.accounts {
		out = append(out, *acc)
	}
	return out, nil
}

type fakeUsage struct {
	entries []usage.Entry
}

func (f *fakeUsage) List(ctx context.Context, limit, offset int) ([]usage.Entry, error) {
	return f.entries, nil
}

/* =========================
   Helpers
   ========================= */

const adminPassword = "correct horse battery staple"

func newTestHandler(t *testing.T) (http.Handler, *admin.JWTService, *fakeAccounts) {
	t.Helper()

	hash, err := password.Hash(adminPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	jwtSvc := admin.NewJWTService("test-secret", time.Hour)
	accounts := newFakeAccounts()
	h := admin.NewHandler(jwtSvc, accounts, &fakeUsage{}, hash)
	return h.Routes(), jwtSvc, accounts
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Buffer
	if body != "" {
		rdr = bytes.NewBufferString(body)
	} else {
		rdr = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/login", "", `{"password": "`+adminPassword+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("login body: %v", err)
	}
	if body.Token == "" {
		t.Fatal("empty token")
	}
	return body.Token
}

/* =========================
   Tests
   ========================= */

func TestLoginWrongPassword(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/login", "", `{"password": "nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid credentials") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestLoginIssuesValidToken(t *testing.T) {
	h, jwtSvc, _ := newTestHandler(t)

	token := login(t, h)
	claims, err := jwtSvc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !claims.Admin {
		t.Error("expected admin claim")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/accounts", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/accounts", "garbage.token.here", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want 401", rec.Code)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	h, _, _ := newTestHandler(t)

	expired := admin.NewJWTService("test-secret", -time.Minute)
	token, err := expired.GenerateToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	rec := do(t, h, http.MethodGet, "/accounts", token, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateAccountSanitizesCode(t *testing.T) {
	h, _, accounts := newTestHandler(t)
	token := login(t, h)

	rec := do(t, h, http.MethodPost, "/accounts", token, `{"code": "ABC-123!", "credits": 10}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	if _, err := accounts.GetByCode(context.Background(), "ABC123"); err != nil {
		t.Errorf("account not stored under sanitized code: %v", err)
	}

	var acc account.CreditAccount
	if err := json.Unmarshal(rec.Body.Bytes(), &acc); err != nil {
		t.Fatalf("body: %v", err)
	}
	if acc.Code != "ABC123" || acc.Credits != 10 {
		t.Errorf("got %+v", acc)
	}
}

func TestCreateAccountDuplicate(t *testing.T) {
	h, _, _ := newTestHandler(t)
	token := login(t, h)

	body := `{"code": "DUP123", "credits": 1}`
	if rec := do(t, h, http.MethodPost, "/accounts", token, body); rec.Code != http.StatusCreated {
		t.Fatalf("first create: status = %d", rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/accounts", token, body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second create: status = %d, want 409", rec.Code)
	}
}

func TestCreateAccountRejectsUnusableCode(t *testing.T) {
	h, _, _ := newTestHandler(t)
	token := login(t, h)

	rec := do(t, h, http.MethodPost, "/accounts", token, `{"code": "!!!", "credits": 1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGrantCredits(t *testing.T) {
	h, _, _ := newTestHandler(t)
	token := login(t, h)

	if rec := do(t, h, http.MethodPost, "/accounts", token, `{"code": "GRANT1", "credits": 2}`); rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rec.Code)
	}

	rec := do(t, h, http.MethodPost, "/accounts/GRANT1/grant", token, `{"amount": 5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("grant: status = %d (%s)", rec.Code, rec.Body.String())
	}

	var acc account.CreditAccount
	if err := json.Unmarshal(rec.Body.Bytes(), &acc); err != nil {
		t.Fatalf("body: %v", err)
	}
	if acc.Credits != 7 {
		t.Errorf("credits = %d, want 7", acc.Credits)
	}

	rec = do(t, h, http.MethodPost, "/accounts/NOSUCH/grant", token, `{"amount": 5}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("grant unknown: status = %d, want 404", rec.Code)
	}
}

func TestGetAndListAccounts(t *testing.T) {
	h, _, _ := newTestHandler(t)
	token := login(t, h)

	if rec := do(t, h, http.MethodPost, "/accounts", token, `{"code": "LIST01", "credits": 3}`); rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/accounts/LIST01", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/accounts/NOSUCH", token, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get unknown: status = %d, want 404", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/accounts", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var accounts []account.CreditAccount
	if err := json.Unmarshal(rec.Body.Bytes(), &accounts); err != nil {
		t.Fatalf("list body: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("len = %d, want 1", len(accounts))
	}
}

func TestListUsage(t *testing.T) {
	hash, err := password.Hash(adminPassword)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	jwtSvc := admin.NewJWTService("test-secret", time.Hour)
	logs := &fakeUsage{entries: []usage.Entry{
		{AuthCode: "ABC123", Category: "Invoice", CreditsLeft: 4, Success: true},
	}}
	h := admin.NewHandler(jwtSvc, newFakeAccounts(), logs, hash).Routes()

	token := login(t, h)
	rec := do(t, h, http.MethodGet, "/usage", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entries []usage.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("body: %v", err)
	}
	if len(entries) != 1 || entries[0].Category != "Invoice" {
		t.Errorf("got %+v", entries)
	}
}
