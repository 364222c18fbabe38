package http

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/alessandrolsdev/controle-financeiro-api/internal/auth"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/log"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/service"
)

// Deps bundles everything the HTTP layer needs.
type Deps struct {
	Users                *service.UserService
	Categories           *service.CategoryService
	Transactions         *service.TransactionService
	Reports              *service.ReportService
	Tokens               *auth.TokenService
	AllowedOriginPattern string
	Logger               *log.Logger
}

type Server struct {
	http.Server

	users        *service.UserService
	categories   *service.CategoryService
	transactions *service.TransactionService
	reports      *service.ReportService
	tokens       *auth.TokenService
	validate     *validator.Validate
	originRe     *regexp.Regexp
	logger       *log.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) (*Server, error) {
	originRe, err := regexp.Compile(deps.AllowedOriginPattern)
	if err != nil {
		return nil, fmt.Errorf("compile origin pattern: %w", err)
	}

	mux := http.NewServeMux()
	s := &Server{
		users:        deps.Users,
		categories:   deps.Categories,
		transactions: deps.Transactions,
		reports:      deps.Reports,
		tokens:       deps.Tokens,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		originRe:     originRe,
		logger:       deps.Logger.WithComponent(log.ComponentHTTP),
	}
	s.Addr = addr
	s.Handler = s.withCommon(mux)

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("POST /token", s.handleToken)
	mux.HandleFunc("POST /usuarios/", s.handleRegister)
	mux.HandleFunc("GET /usuarios/me", s.requireAuth(s.handleMe))
	mux.HandleFunc("PUT /usuarios/me", s.requireAuth(s.handleUpdateProfile))
	mux.HandleFunc("POST /usuarios/mudar-senha", s.requireAuth(s.handleChangePassword))

	mux.HandleFunc("GET /dashboard/", s.requireAuth(s.handleDashboard))
	mux.HandleFunc("GET /relatorios/tendencia", s.requireAuth(s.handleTrend))

	mux.HandleFunc("GET /transacoes/", s.requireAuth(s.handleListTransactions))
	mux.HandleFunc("GET /transacoes/periodo/", s.requireAuth(s.handleListTransactionsByPeriod))
	mux.HandleFunc("POST /transacoes/", s.requireAuth(s.handleCreateTransaction))
	mux.HandleFunc("PUT /transacoes/{id}", s.requireAuth(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transacoes/{id}", s.requireAuth(s.handleDeleteTransaction))

	mux.HandleFunc("GET /categorias/", s.requireAuth(s.handleListCategories))
	mux.HandleFunc("POST /categorias/", s.requireAuth(s.handleCreateCategory))
	mux.HandleFunc("PUT /categorias/{id}", s.requireAuth(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /categorias/{id}", s.requireAuth(s.handleDeleteCategory))

	return s, nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Bem-vindo à API de Controle Financeiro!"})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
