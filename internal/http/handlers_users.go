package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/alessandrolsdev/controle-financeiro-api/internal/core"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/storage"
)

// handleToken is the login endpoint. It speaks the OAuth2 password flow
// dialect the frontend already uses: form-encoded username and password,
// JSON bearer token back.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Corpo da requisição inválido")
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "username e password são obrigatórios")
		return
	}

	token, err := s.users.Authenticate(r.Context(), username, password)
	if err != nil {
		writeUnauthorized(w, "Nome de usuário ou senha incorretos")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserResponse(currentUser(r)))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	upd := storage.UserUpdate{
		Username:  req.Username,
		FullName:  req.FullName,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
	}
	if req.BirthDate != nil {
		// Format already checked by validation.
		birth, err := time.Parse(dateLayout, *req.BirthDate)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "Parâmetro data_nascimento inválido (AAAA-MM-DD)")
			return
		}
		upd.BirthDate = &birth
	}

	user, err := s.users.UpdateProfile(r.Context(), currentUser(r).ID, upd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	err := s.users.ChangePassword(r.Context(), currentUser(r), req.OldPassword, req.NewPassword)
	if errors.Is(err, core.ErrInvalidCredentials) {
		// 400, not 401: the caller is already authenticated, they just
		// typed the old password wrong.
		writeDetail(w, http.StatusBadRequest, "A senha antiga está incorreta.")
		return
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Senha atualizada com sucesso."})
}
