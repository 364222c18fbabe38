package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alessandrolsdev/controle-financeiro-api/internal/auth"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/log"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/service"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/storage"
)

const testOriginPattern = `^https?://(localhost(:\d+)?|.*\.vercel\.app)$`

func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := log.New(log.Config{Level: slog.LevelError})
	tokens := auth.NewTokenService("test-secret", 30*time.Minute)
	users := service.NewUserService(repo, auth.NewPasswordHasher(), tokens, logger)

	s, err := NewServer(":0", Deps{
		Users:                users,
		Categories:           service.NewCategoryService(repo, logger),
		Transactions:         service.NewTransactionService(repo, service.NewSyncRecompute(repo), 100, logger),
		Reports:              service.NewReportService(repo, logger),
		Tokens:               tokens,
		AllowedOriginPattern: testOriginPattern,
		Logger:               logger,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func registerAndLogin(t *testing.T, s *Server, username, password string) string {
	t.Helper()

	rec := doJSON(t, s, http.MethodPost, "/usuarios/", "", map[string]string{
		"nome_usuario": username,
		"senha":        password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: want 201, got %d: %s", rec.Code, rec.Body.String())
	}

	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	loginRec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(loginRec, req)
	if loginRec.Code != http.StatusOK {
		t.Fatalf("login: want 200, got %d: %s", loginRec.Code, loginRec.Body.String())
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decodeBody(t, loginRec, &tok)
	if tok.TokenType != "bearer" || tok.AccessToken == "" {
		t.Fatalf("unexpected token response: %+v", tok)
	}
	return tok.AccessToken
}

func createCategory(t *testing.T, s *Server, token, name, typ, color string) int64 {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/categorias/", token, map[string]string{
		"nome": name, "tipo": typ, "cor": color,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: want 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var c struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rec, &c)
	return c.ID
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	token := registerAndLogin(t, s, "alessandro", "s3nha-forte")

	rec := doJSON(t, s, http.MethodGet, "/usuarios/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: want 200, got %d", rec.Code)
	}
	var me struct {
		ID       int64  `json:"id"`
		Username string `json:"nome_usuario"`
	}
	decodeBody(t, rec, &me)
	if me.Username != "alessandro" || me.ID == 0 {
		t.Fatalf("unexpected profile: %+v", me)
	}

	// Duplicate registration is a descriptive 400.
	rec = doJSON(t, s, http.MethodPost, "/usuarios/", "", map[string]string{
		"nome_usuario": "alessandro", "senha": "outra"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: want 400, got %d", rec.Code)
	}

	// Wrong password is a 401 with the challenge header.
	form := url.Values{"username": {"alessandro"}, "password": {"errada"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	badRec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(badRec, req)
	if badRec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: want 401, got %d", badRec.Code)
	}
	if badRec.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Error("missing WWW-Authenticate header")
	}

	// No token, garbage token: same 401.
	for _, token := range []string{"", "garbage"} {
		rec := doJSON(t, s, http.MethodGet, "/usuarios/me", token, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("token %q: want 401, got %d", token, rec.Code)
		}
	}
}

func TestProfileUpdateAndChangePassword(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "alessandro", "antiga")

	rec := doJSON(t, s, http.MethodPut, "/usuarios/me", token, map[string]string{
		"nome_completo":   "Alessandro Silva",
		"email":           "a@example.com",
		"data_nascimento": "1990-04-23",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("profile update: want 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var profile struct {
		FullName  string `json:"nome_completo"`
		Email     string `json:"email"`
		BirthDate string `json:"data_nascimento"`
	}
	decodeBody(t, rec, &profile)
	if profile.FullName != "Alessandro Silva" || profile.BirthDate != "1990-04-23" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	rec = doJSON(t, s, http.MethodPut, "/usuarios/me", token, map[string]string{
		"email": "não-é-email"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad email: want 422, got %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/usuarios/mudar-senha", token, map[string]string{
		"senha_antiga": "errada", "senha_nova": "nova-senha"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong old password: want 400, got %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/usuarios/mudar-senha", token, map[string]string{
		"senha_antiga": "antiga", "senha_nova": "nova-senha"})
	if rec.Code != http.StatusOK {
		t.Fatalf("change password: want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// New password logs in, old one does not.
	registerAndLoginCheck := func(password string, wantCode int) {
		form := url.Values{"username": {"alessandro"}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		if rec.Code != wantCode {
			t.Fatalf("login with %q: want %d, got %d", password, wantCode, rec.Code)
		}
	}
	registerAndLoginCheck("nova-senha", http.StatusOK)
	registerAndLoginCheck("antiga", http.StatusUnauthorized)
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "alessandro", "s3nha")
	salaryID := createCategory(t, s, token, "Salário", "Receita", "#00FF00")
	rentID := createCategory(t, s, token, "Aluguel", "Gasto", "#FF0000")

	period := "data_inicio=2024-01-01&data_fim=2024-01-31"

	rec := doJSON(t, s, http.MethodPost, "/transacoes/?"+period, token, map[string]any{
		"descricao":    "Salário Janeiro",
		"valor":        "1000.00",
		"data":         "2024-01-15T09:00:00Z",
		"categoria_id": salaryID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create income: want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodPost, "/transacoes/?"+period, token, map[string]any{
		"descricao":    "Aluguel Janeiro",
		"valor":        "500.00",
		"data":         "2024-01-15T10:00:00Z",
		"categoria_id": rentID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create expense: want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// The mutation response is the recomputed dashboard.
	var dash struct {
		TotalIncome  string `json:"total_receitas"`
		TotalExpense string `json:"total_gastos"`
		Net          string `json:"lucro_liquido"`
		Expenses     []struct {
			Name  string `json:"nome_categoria"`
			Color string `json:"cor"`
			Total string `json:"valor_total"`
			Count int64  `json:"total_compras"`
		} `json:"gastos_por_categoria"`
	}
	decodeBody(t, rec, &dash)
	if dash.TotalIncome != "1000.00" || dash.TotalExpense != "500.00" || dash.Net != "500.00" {
		t.Fatalf("dashboard totals wrong: %+v", dash)
	}
	if len(dash.Expenses) != 1 || dash.Expenses[0].Name != "Aluguel" || dash.Expenses[0].Count != 1 {
		t.Fatalf("expense breakdown wrong: %+v", dash.Expenses)
	}

	// List newest first with the joined category.
	rec = doJSON(t, s, http.MethodGet, "/transacoes/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: want 200, got %d", rec.Code)
	}
	var list []struct {
		ID       int64  `json:"id"`
		Desc     string `json:"descricao"`
		Valor    string `json:"valor"`
		Category *struct {
			Name string `json:"nome"`
		} `json:"categoria"`
	}
	decodeBody(t, rec, &list)
	if len(list) != 2 {
		t.Fatalf("want 2 transactions, got %d", len(list))
	}
	if list[0].Desc != "Aluguel Janeiro" || list[0].Category == nil || list[0].Category.Name != "Aluguel" {
		t.Fatalf("list wrong: %+v", list[0])
	}

	// Edit the expense, dashboard follows.
	rentTxID := list[0].ID
	rec = doJSON(t, s, http.MethodPut, fmt.Sprintf("/transacoes/%d?%s", rentTxID, period), token, map[string]any{
		"descricao":    "Aluguel Janeiro",
		"valor":        "650.00",
		"data":         "2024-01-15T10:00:00Z",
		"categoria_id": rentID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: want 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &dash)
	if dash.TotalExpense != "650.00" || dash.Net != "350.00" {
		t.Fatalf("dashboard after update wrong: %+v", dash)
	}

	// Delete it, dashboard follows again.
	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/transacoes/%d?%s", rentTxID, period), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: want 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &dash)
	if dash.TotalExpense != "0.00" || dash.TotalIncome != "1000.00" {
		t.Fatalf("dashboard after delete wrong: %+v", dash)
	}

	// Deleting again is a 404.
	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/transacoes/%d?%s", rentTxID, period), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("double delete: want 404, got %d", rec.Code)
	}
}

func TestTransactionOwnershipCollapses(t *testing.T) {
	s := newTestServer(t)
	ownerToken := registerAndLogin(t, s, "alessandro", "s3nha")
	otherToken := registerAndLogin(t, s, "bruna", "s3nha")
	catID := createCategory(t, s, ownerToken, "Mercado", "Gasto", "#FF0000")

	period := "data_inicio=2024-01-01&data_fim=2024-01-31"
	rec := doJSON(t, s, http.MethodPost, "/transacoes/?"+period, ownerToken, map[string]any{
		"descricao":    "compra",
		"valor":        "50.00",
		"data":         "2024-01-10T10:00:00Z",
		"categoria_id": catID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create: want 200, got %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/transacoes/", ownerToken, nil)
	var owned []struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rec, &owned)
	txID := owned[0].ID

	// The other user sees nothing and edits nothing: always 404, never 403.
	rec = doJSON(t, s, http.MethodGet, "/transacoes/", otherToken, nil)
	var foreign []struct{}
	decodeBody(t, rec, &foreign)
	if len(foreign) != 0 {
		t.Fatalf("other user must see no transactions, got %d", len(foreign))
	}
	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/transacoes/%d?%s", txID, period), otherToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign delete: want 404, got %d", rec.Code)
	}
}

func TestCategoryConflicts(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "alessandro", "s3nha")
	catID := createCategory(t, s, token, "Mercado", "Gasto", "#FF0000")

	rec := doJSON(t, s, http.MethodPost, "/categorias/", token, map[string]string{
		"nome": "Mercado", "tipo": "Receita"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate category: want 400, got %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/categorias/", token, map[string]string{
		"nome": "Inválida", "tipo": "Outro"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid type: want 422, got %d", rec.Code)
	}

	// An in-use category cannot be deleted.
	period := "data_inicio=2024-01-01&data_fim=2024-01-31"
	rec = doJSON(t, s, http.MethodPost, "/transacoes/?"+period, token, map[string]any{
		"descricao":    "compra",
		"valor":        "10.00",
		"data":         "2024-01-10T10:00:00Z",
		"categoria_id": catID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create transaction: want 200, got %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/categorias/%d", catID), token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("delete in-use: want 400, got %d: %s", rec.Code, rec.Body.String())
	}

	// A free category deletes with 204.
	freeID := createCategory(t, s, token, "Livre", "Gasto", "#AAAAAA")
	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/categorias/%d", freeID), token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete free: want 204, got %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/categorias/%d", freeID), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete missing: want 404, got %d", rec.Code)
	}
}

func TestTrendEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "alessandro", "s3nha")
	catID := createCategory(t, s, token, "Mercado", "Gasto", "#FF0000")

	period := "data_inicio=2024-01-10&data_fim=2024-01-10"
	rec := doJSON(t, s, http.MethodPost, "/transacoes/?data_inicio=2024-01-01&data_fim=2024-01-31", token, map[string]any{
		"descricao":    "compra",
		"valor":        "25.00",
		"data":         "2024-01-10T09:30:00Z",
		"categoria_id": catID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create: want 200, got %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/relatorios/tendencia?"+period+"&filtro=daily", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("trend: want 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var series struct {
		Expense []struct {
			Key   string `json:"data"`
			Value string `json:"valor"`
		} `json:"despesas"`
	}
	decodeBody(t, rec, &series)
	if len(series.Expense) != 1 || series.Expense[0].Key != "2024-01-10 09:00:00" {
		t.Fatalf("hour bucket wrong: %+v", series.Expense)
	}
	if series.Expense[0].Value != "25.00" {
		t.Fatalf("bucket value wrong: %+v", series.Expense[0])
	}

	// Missing period params are rejected before hitting the store.
	rec = doJSON(t, s, http.MethodGet, "/relatorios/tendencia", token, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing period: want 422, got %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/transacoes/", nil)
	req.Header.Set("Origin", "https://meu-app.vercel.app")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight: want 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://meu-app.vercel.app" {
		t.Fatalf("allow-origin wrong: %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://malicioso.example.com")
	rec = httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("disallowed origin must not be echoed")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec = httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatal("localhost origin must be allowed")
	}
}
