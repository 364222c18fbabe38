package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/alessandrolsdev/controle-financeiro-api/internal/auth"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/core"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/log"
)

const dateLayout = "2006-01-02"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, detail)
}

// validationErrs are domain checks that mean the payload was well-formed
// JSON but semantically wrong, the FastAPI-era frontend expects 422 here.
var validationErrs = []error{
	core.ErrInvalidAmount,
	core.ErrEmptyDescription,
	core.ErrEmptyName,
	core.ErrInvalidType,
	core.ErrInvalidColor,
	core.ErrZeroDate,
	core.ErrMissingCategory,
	core.ErrEmptyUsername,
	core.ErrEmptyPassword,
}

// writeDomainError maps service errors onto the status codes the frontend
// was built against. Conflicts are 400 with a descriptive message, not 409.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthorized):
		writeUnauthorized(w, "Não foi possível validar as credenciais")
	case errors.Is(err, core.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Não encontrado")
	case errors.Is(err, core.ErrDuplicate):
		writeDetail(w, http.StatusBadRequest, "Esse nome já está em uso.")
	case errors.Is(err, core.ErrCategoryInUse):
		writeDetail(w, http.StatusBadRequest,
			"Não é possível excluir: Esta categoria já está sendo usada por transações.")
	case errors.Is(err, core.ErrInvalidReference):
		writeDetail(w, http.StatusBadRequest, "Categoria inexistente.")
	default:
		for _, ve := range validationErrs {
			if errors.Is(err, ve) {
				writeDetail(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
		}
		s.logger.ErrorContext(r.Context(), "Unhandled error",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		writeDetail(w, http.StatusInternalServerError, "Erro interno do servidor")
	}
}

// decodeValid decodes a JSON body into dst and runs struct validation.
// It writes the error response itself and reports whether to proceed.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Corpo da requisição inválido")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeDetail(w, http.StatusUnprocessableEntity,
				"Campo inválido: "+verrs[0].Field())
			return false
		}
		writeDetail(w, http.StatusUnprocessableEntity, "Dados inválidos")
		return false
	}
	return true
}

// parsePeriod reads the mandatory data_inicio and data_fim query params.
func parsePeriod(w http.ResponseWriter, r *http.Request) (core.Period, bool) {
	q := r.URL.Query()
	start, err := time.Parse(dateLayout, q.Get("data_inicio"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Parâmetro data_inicio inválido (AAAA-MM-DD)")
		return core.Period{}, false
	}
	end, err := time.Parse(dateLayout, q.Get("data_fim"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Parâmetro data_fim inválido (AAAA-MM-DD)")
		return core.Period{}, false
	}
	return core.NewPeriod(start, end), true
}

// pathID reads the {id} path segment as a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "ID inválido")
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
