package http

import (
	"time"

	"github.com/alessandrolsdev/controle-financeiro-api/internal/core"
)

// Field names follow the frontend contract, which speaks Portuguese.

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type registerRequest struct {
	Username string `json:"nome_usuario" validate:"required,max=50"`
	Password string `json:"senha" validate:"required,min=4"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"nome_usuario"`
	FullName  string `json:"nome_completo,omitempty"`
	Email     string `json:"email,omitempty"`
	BirthDate string `json:"data_nascimento,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func toUserResponse(u *core.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
	if !u.BirthDate.IsZero() {
		resp.BirthDate = u.BirthDate.Format("2006-01-02")
	}
	return resp
}

type profileUpdateRequest struct {
	Username  *string `json:"nome_usuario" validate:"omitempty,min=1,max=50"`
	FullName  *string `json:"nome_completo" validate:"omitempty,max=255"`
	Email     *string `json:"email" validate:"omitempty,email"`
	BirthDate *string `json:"data_nascimento" validate:"omitempty,datetime=2006-01-02"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

type changePasswordRequest struct {
	OldPassword string `json:"senha_antiga" validate:"required"`
	NewPassword string `json:"senha_nova" validate:"required,min=4"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type categoryRequest struct {
	Name  string `json:"nome" validate:"required,max=100"`
	Type  string `json:"tipo" validate:"required,oneof=Receita Gasto"`
	Color string `json:"cor" validate:"omitempty,hexcolor"`
}

type categoryUpdateRequest struct {
	Name  *string `json:"nome" validate:"omitempty,min=1,max=100"`
	Type  *string `json:"tipo" validate:"omitempty,oneof=Receita Gasto"`
	Color *string `json:"cor" validate:"omitempty,hexcolor"`
}

type categoryResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"nome"`
	Type  string `json:"tipo"`
	Color string `json:"cor"`
}

func toCategoryResponse(c *core.Category) categoryResponse {
	return categoryResponse{
		ID:    c.ID,
		Name:  c.Name,
		Type:  string(c.Type),
		Color: c.Color,
	}
}

type transactionRequest struct {
	Description string     `json:"descricao" validate:"required,max=255"`
	Amount      core.Money `json:"valor" validate:"-"`
	Date        *time.Time `json:"data"`
	Notes       string     `json:"observacoes" validate:"omitempty,max=500"`
	CategoryID  int64      `json:"categoria_id" validate:"required,gt=0"`
}

// toTransaction builds the domain value. A missing date means "now", the
// modal in the frontend omits it for quick entries.
func (req transactionRequest) toTransaction(userID int64) core.Transaction {
	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}
	return core.Transaction{
		Description: req.Description,
		Amount:      req.Amount,
		Date:        date,
		Notes:       req.Notes,
		CategoryID:  req.CategoryID,
		UserID:      userID,
	}
}

type transactionResponse struct {
	ID          int64             `json:"id"`
	Description string            `json:"descricao"`
	Amount      core.Money        `json:"valor"`
	Date        time.Time         `json:"data"`
	Notes       string            `json:"observacoes,omitempty"`
	CategoryID  int64             `json:"categoria_id"`
	UserID      int64             `json:"usuario_id"`
	Category    *categoryResponse `json:"categoria,omitempty"`
}

func toTransactionResponse(t *core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          t.ID,
		Description: t.Description,
		Amount:      t.Amount,
		Date:        t.Date,
		Notes:       t.Notes,
		CategoryID:  t.CategoryID,
		UserID:      t.UserID,
	}
	if t.Category != nil {
		c := toCategoryResponse(t.Category)
		resp.Category = &c
	}
	return resp
}

func toTransactionResponses(list []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(list))
	for i := range list {
		out[i] = toTransactionResponse(&list[i])
	}
	return out
}
