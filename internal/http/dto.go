package http

import (
	"financas/internal/core"
)

// Request payloads. Dates arrive as strings so both date-only and RFC 3339
// forms are accepted; conversion happens in the handlers.

type gastoRequest struct {
	Descricao    string            `json:"descricao"`
	Valor        float64           `json:"valor"`
	Categoria    string            `json:"categoria"`
	Subcategoria string            `json:"subcategoria"`
	Data         string            `json:"data"`
	Tipo         string            `json:"tipo"`
	Recorrente   bool              `json:"recorrente"`
	Recorrencia  *core.Recorrencia `json:"recorrencia"`
	Tags         []string          `json:"tags"`
	Localizacao  *core.Localizacao `json:"localizacao"`
	Observacoes  string            `json:"observacoes"`
	Status       string            `json:"status"`
}

func (req *gastoRequest) toDomain(userID string) (*core.Gasto, error) {
	data, err := parseDate(req.Data)
	if err != nil {
		return nil, (&core.ValidationError{}).Add("data", "data invalida").OrNil()
	}

	tipo := core.TipoGasto(req.Tipo)
	if req.Tipo == "" {
		tipo = core.GastoVariavel
	}

	return &core.Gasto{
		UserID:       userID,
		Descricao:    sanitizeInput(req.Descricao),
		Valor:        req.Valor,
		Categoria:    core.Categoria(req.Categoria),
		Subcategoria: sanitizeInput(req.Subcategoria),
		Data:         data,
		Tipo:         tipo,
		Recorrente:   req.Recorrente,
		Recorrencia:  req.Recorrencia,
		Tags:         req.Tags,
		Localizacao:  req.Localizacao,
		Observacoes:  sanitizeInput(req.Observacoes),
		Status:       req.Status,
	}, nil
}

type rendimentoRequest struct {
	Fonte       string            `json:"fonte"`
	Valor       float64           `json:"valor"`
	Descricao   string            `json:"descricao"`
	Tipo        string            `json:"tipo"`
	Data        string            `json:"data"`
	Recorrente  bool              `json:"recorrente"`
	Recorrencia *core.Recorrencia `json:"recorrencia"`
	IVA         *float64          `json:"iva"`
	Status      string            `json:"status"`
}

func (req *rendimentoRequest) toDomain(userID string) (*core.Rendimento, error) {
	data, err := parseDate(req.Data)
	if err != nil {
		return nil, (&core.ValidationError{}).Add("data", "data invalida").OrNil()
	}

	iva := core.IVADefault
	if req.IVA != nil {
		iva = *req.IVA
	}

	tipo := core.TipoRendimento(req.Tipo)
	if req.Tipo == "" {
		tipo = core.RendimentoOutros
	}

	return &core.Rendimento{
		UserID:      userID,
		Fonte:       sanitizeInput(req.Fonte),
		Valor:       req.Valor,
		Descricao:   sanitizeInput(req.Descricao),
		Tipo:        tipo,
		Data:        data,
		Recorrente:  req.Recorrente,
		Recorrencia: req.Recorrencia,
		IVA:         iva,
		Status:      req.Status,
	}, nil
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	IDToken string `json:"idToken"`
}

type profileRequest struct {
	Name        string            `json:"name"`
	Avatar      string            `json:"avatar"`
	Preferences *core.Preferences `json:"preferences"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type fixedCostRequest struct {
	MesID     string  `json:"mesId"`
	Ano       int     `json:"ano"`
	Categoria string  `json:"categoria"`
	Valor     float64 `json:"valor"`
}

type daysWorkedRequest struct {
	MesID string `json:"mesId"`
	Ano   int    `json:"ano"`
	Andre int    `json:"andre"`
	Aline int    `json:"aline"`
}

// authResponse pairs the issued token with the account it belongs to.
type authResponse struct {
	Token string     `json:"token"`
	User  *core.User `json:"user"`
}

// listResponse wraps paginated listings.
type listResponse[T any] struct {
	Items      []T `json:"items"`
	Pagination any `json:"pagination"`
}
