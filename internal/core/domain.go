package core

import (
	"strings"
	"time"
)

// Valor bounds and year window enforced on every monetary record.
const (
	MaxValor = 1_000_000.0
	AnoMin   = 2020
	AnoMax   = 2030
)

// Lifecycle replaces the old boolean soft-delete flag with an explicit state
// so archived records can exist alongside deleted ones. Every read path
// filters out LifecycleExcluido.
type Lifecycle string

const (
	LifecycleAtivo     Lifecycle = "ativo"
	LifecycleArquivado Lifecycle = "arquivado"
	LifecycleExcluido  Lifecycle = "excluido"
)

// Categoria is the closed expense category set.
type Categoria string

const (
	CategoriaAlimentacao Categoria = "alimentacao"
	CategoriaTransporte  Categoria = "transporte"
	CategoriaSaude       Categoria = "saude"
	CategoriaEducacao    Categoria = "educacao"
	CategoriaLazer       Categoria = "lazer"
	CategoriaCasa        Categoria = "casa"
	CategoriaVestuario   Categoria = "vestuario"
	CategoriaAssinaturas Categoria = "assinaturas"
	CategoriaOutros      Categoria = "outros"
)

// Categorias lists every valid expense category.
var Categorias = []Categoria{
	CategoriaAlimentacao,
	CategoriaTransporte,
	CategoriaSaude,
	CategoriaEducacao,
	CategoriaLazer,
	CategoriaCasa,
	CategoriaVestuario,
	CategoriaAssinaturas,
	CategoriaOutros,
}

// TipoGasto distinguishes variable from fixed expenses.
type TipoGasto string

const (
	GastoVariavel TipoGasto = "variavel"
	GastoFixo     TipoGasto = "fixo"
)

// TipoRendimento classifies income sources.
type TipoRendimento string

const (
	RendimentoSalario      TipoRendimento = "salario"
	RendimentoFreelance    TipoRendimento = "freelance"
	RendimentoInvestimento TipoRendimento = "investimento"
	RendimentoBonus        TipoRendimento = "bonus"
	RendimentoOutros       TipoRendimento = "outros"
)

// TiposRendimento lists every valid income type.
var TiposRendimento = []TipoRendimento{
	RendimentoSalario,
	RendimentoFreelance,
	RendimentoInvestimento,
	RendimentoBonus,
	RendimentoOutros,
}

// IVADefault is the flat deduction rate applied to gross income when the
// record does not carry its own rate.
const IVADefault = 0.23

type (
	// Recorrencia describes how a recurring record repeats. UltimaExecucao
	// is stamped by the recurring worker after each materialization so a
	// template is processed at most once per period.
	Recorrencia struct {
		Tipo           string    `bson:"tipo" json:"tipo"` // mensal, semanal, anual
		Dia            int       `bson:"dia,omitempty" json:"dia,omitempty"`
		Ativo          bool      `bson:"ativo" json:"ativo"`
		UltimaExecucao time.Time `bson:"ultimaExecucao,omitempty" json:"ultimaExecucao,omitempty"`
	}

	// Localizacao is the optional place an expense happened.
	Localizacao struct {
		Endereco string  `bson:"endereco,omitempty" json:"endereco,omitempty"`
		Cidade   string  `bson:"cidade,omitempty" json:"cidade,omitempty"`
		Pais     string  `bson:"pais,omitempty" json:"pais,omitempty"`
		Lat      float64 `bson:"lat,omitempty" json:"lat,omitempty"`
		Lng      float64 `bson:"lng,omitempty" json:"lng,omitempty"`
	}

	// Anexo is an attachment reference stored with an expense.
	Anexo struct {
		Nome    string `bson:"nome" json:"nome"`
		URL     string `bson:"url" json:"url"`
		Tipo    string `bson:"tipo,omitempty" json:"tipo,omitempty"`
		Tamanho int64  `bson:"tamanho,omitempty" json:"tamanho,omitempty"`
	}

	// Gasto is a single expense record.
	Gasto struct {
		ID           string       `bson:"_id,omitempty" json:"id"`
		UserID       string       `bson:"user" json:"user"`
		Descricao    string       `bson:"descricao" json:"descricao"`
		Valor        float64      `bson:"valor" json:"valor"`
		Categoria    Categoria    `bson:"categoria" json:"categoria"`
		Subcategoria string       `bson:"subcategoria,omitempty" json:"subcategoria,omitempty"`
		Data         time.Time    `bson:"data" json:"data"`
		Mes          string       `bson:"mes" json:"mes"`
		Ano          int          `bson:"ano" json:"ano"`
		Tipo         TipoGasto    `bson:"tipo" json:"tipo"`
		Recorrente   bool         `bson:"recorrente" json:"recorrente"`
		Recorrencia  *Recorrencia `bson:"recorrencia,omitempty" json:"recorrencia,omitempty"`
		Tags         []string     `bson:"tags,omitempty" json:"tags,omitempty"`
		Localizacao  *Localizacao `bson:"localizacao,omitempty" json:"localizacao,omitempty"`
		Anexos       []Anexo      `bson:"anexos,omitempty" json:"anexos,omitempty"`
		Observacoes  string       `bson:"observacoes,omitempty" json:"observacoes,omitempty"`
		Status       string       `bson:"status" json:"status"` // ativo, pendente, cancelado
		Lifecycle    Lifecycle    `bson:"lifecycle" json:"lifecycle"`
		CreatedAt    time.Time    `bson:"createdAt" json:"createdAt"`
		UpdatedAt    time.Time    `bson:"updatedAt" json:"updatedAt"`
	}

	// Rendimento is a single income record. ValorLiquido is derived from
	// Valor and IVA at save time and never recomputed retroactively.
	Rendimento struct {
		ID           string         `bson:"_id,omitempty" json:"id"`
		UserID       string         `bson:"user" json:"user"`
		Fonte        string         `bson:"fonte" json:"fonte"`
		Valor        float64        `bson:"valor" json:"valor"`
		Descricao    string         `bson:"descricao,omitempty" json:"descricao,omitempty"`
		Tipo         TipoRendimento `bson:"tipo" json:"tipo"`
		Data         time.Time      `bson:"data" json:"data"`
		Mes          string         `bson:"mes" json:"mes"`
		Ano          int            `bson:"ano" json:"ano"`
		Recorrente   bool           `bson:"recorrente" json:"recorrente"`
		Recorrencia  *Recorrencia   `bson:"recorrencia,omitempty" json:"recorrencia,omitempty"`
		IVA          float64        `bson:"iva" json:"iva"`
		ValorLiquido float64        `bson:"valorLiquido" json:"valorLiquido"`
		Status       string         `bson:"status" json:"status"` // pendente, confirmado, cancelado
		Lifecycle    Lifecycle      `bson:"lifecycle" json:"lifecycle"`
		CreatedAt    time.Time      `bson:"createdAt" json:"createdAt"`
		UpdatedAt    time.Time      `bson:"updatedAt" json:"updatedAt"`
	}

	// Notifications holds per-channel opt-ins.
	Notifications struct {
		Email        bool `bson:"email" json:"email"`
		Push         bool `bson:"push" json:"push"`
		BudgetAlerts bool `bson:"budgetAlerts" json:"budgetAlerts"`
	}

	// Preferences is the user's display and notification configuration.
	Preferences struct {
		Currency      string        `bson:"currency" json:"currency"`
		Language      string        `bson:"language" json:"language"`
		Theme         string        `bson:"theme" json:"theme"`
		Notifications Notifications `bson:"notifications" json:"notifications"`
	}

	// User is an account. PasswordHash is never serialized to JSON.
	User struct {
		ID           string      `bson:"_id,omitempty" json:"id"`
		Name         string      `bson:"name" json:"name"`
		Email        string      `bson:"email" json:"email"`
		PasswordHash string      `bson:"password,omitempty" json:"-"`
		Provider     string      `bson:"provider" json:"provider"` // local, google, facebook
		ProviderID   string      `bson:"providerId,omitempty" json:"providerId,omitempty"`
		Avatar       string      `bson:"avatar,omitempty" json:"avatar,omitempty"`
		Preferences  Preferences `bson:"preferences" json:"preferences"`
		IsActive     bool        `bson:"isActive" json:"isActive"`
		LastLogin    time.Time   `bson:"lastLogin" json:"lastLogin"`
		CreatedAt    time.Time   `bson:"createdAt" json:"createdAt"`
		UpdatedAt    time.Time   `bson:"updatedAt" json:"updatedAt"`
	}

	// FixedCost is a per-user, per-month fixed cost line, upserted by
	// (user, mesId, ano, categoria).
	FixedCost struct {
		ID        string    `bson:"_id,omitempty" json:"id"`
		UserID    string    `bson:"user" json:"user"`
		MesID     string    `bson:"mesId" json:"mesId"`
		Ano       int       `bson:"ano" json:"ano"`
		Categoria string    `bson:"categoria" json:"categoria"`
		Valor     float64   `bson:"valor" json:"valor"`
		CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
		UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
	}

	// DaysWorked records days worked per person for a month, upserted by
	// (user, mesId, ano).
	DaysWorked struct {
		ID        string    `bson:"_id,omitempty" json:"id"`
		UserID    string    `bson:"user" json:"user"`
		MesID     string    `bson:"mesId" json:"mesId"`
		Ano       int       `bson:"ano" json:"ano"`
		Andre     int       `bson:"andre" json:"andre"`
		Aline     int       `bson:"aline" json:"aline"`
		CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
		UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
	}
)

// DefaultPreferences returns the preferences a new account starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		Currency: "EUR",
		Language: "pt",
		Theme:    "light",
		Notifications: Notifications{
			Email:        true,
			Push:         true,
			BudgetAlerts: true,
		},
	}
}

// DerivePeriod sets Mes and Ano from Data. Called on every save that touches
// the date, mirroring what the old persistence hook did.
func (g *Gasto) DerivePeriod() {
	g.Mes = MesFromTime(g.Data)
	g.Ano = g.Data.Year()
}

// DerivePeriod sets Mes and Ano from Data.
func (r *Rendimento) DerivePeriod() {
	r.Mes = MesFromTime(r.Data)
	r.Ano = r.Data.Year()
}

// ApplyIVA recomputes ValorLiquido from Valor and IVA. Called on every save
// that touches either field.
func (r *Rendimento) ApplyIVA() {
	r.ValorLiquido = r.Valor * (1 - r.IVA)
}

func validCategoria(c Categoria) bool {
	for _, v := range Categorias {
		if v == c {
			return true
		}
	}
	return false
}

func validTipoRendimento(t TipoRendimento) bool {
	for _, v := range TiposRendimento {
		if v == t {
			return true
		}
	}
	return false
}

func validRecorrencia(r *Recorrencia, ve *ValidationError) {
	if r == nil {
		return
	}
	switch r.Tipo {
	case "mensal", "semanal", "anual":
	default:
		ve.Add("recorrencia.tipo", "tipo de recorrencia invalido")
	}
	// Dia 0 means "use the day of the record's own date" when materializing.
	if r.Dia < 0 || r.Dia > 31 {
		ve.Add("recorrencia.dia", "dia deve ser 0 (dia da data do registo) ou estar entre 1 e 31")
	}
}

// Validate checks every field constraint and returns a ValidationError
// naming all violations at once.
func (g *Gasto) Validate() error {
	ve := &ValidationError{}
	if strings.TrimSpace(g.Descricao) == "" {
		ve.Add("descricao", "descricao e obrigatoria")
	} else if len(g.Descricao) > 200 {
		ve.Add("descricao", "descricao nao pode ter mais de 200 caracteres")
	}
	if g.Valor < 0 {
		ve.Add("valor", "valor nao pode ser negativo")
	} else if g.Valor > MaxValor {
		ve.Add("valor", "valor nao pode exceder 1.000.000")
	}
	if !validCategoria(g.Categoria) {
		ve.Add("categoria", "categoria invalida")
	}
	if len(g.Subcategoria) > 50 {
		ve.Add("subcategoria", "subcategoria nao pode ter mais de 50 caracteres")
	}
	if g.Data.IsZero() {
		ve.Add("data", "data e obrigatoria")
	} else if y := g.Data.Year(); y < AnoMin || y > AnoMax {
		ve.Add("ano", "ano deve estar entre %d e %d", AnoMin, AnoMax)
	}
	switch g.Tipo {
	case GastoVariavel, GastoFixo:
	default:
		ve.Add("tipo", "tipo invalido")
	}
	for _, tag := range g.Tags {
		if len(tag) > 20 {
			ve.Add("tags", "tag nao pode ter mais de 20 caracteres")
			break
		}
	}
	if len(g.Observacoes) > 500 {
		ve.Add("observacoes", "observacoes nao podem ter mais de 500 caracteres")
	}
	switch g.Status {
	case "", "ativo", "pendente", "cancelado":
	default:
		ve.Add("status", "status invalido")
	}
	validRecorrencia(g.Recorrencia, ve)
	return ve.OrNil()
}

// Validate checks every field constraint on an income record.
func (r *Rendimento) Validate() error {
	ve := &ValidationError{}
	if strings.TrimSpace(r.Fonte) == "" {
		ve.Add("fonte", "fonte e obrigatoria")
	} else if len(r.Fonte) > 100 {
		ve.Add("fonte", "fonte nao pode ter mais de 100 caracteres")
	}
	if r.Valor < 0 {
		ve.Add("valor", "valor nao pode ser negativo")
	} else if r.Valor > MaxValor {
		ve.Add("valor", "valor nao pode exceder 1.000.000")
	}
	if len(r.Descricao) > 200 {
		ve.Add("descricao", "descricao nao pode ter mais de 200 caracteres")
	}
	if !validTipoRendimento(r.Tipo) {
		ve.Add("tipo", "tipo invalido")
	}
	if r.Data.IsZero() {
		ve.Add("data", "data e obrigatoria")
	} else if y := r.Data.Year(); y < AnoMin || y > AnoMax {
		ve.Add("ano", "ano deve estar entre %d e %d", AnoMin, AnoMax)
	}
	if r.IVA < 0 || r.IVA > 1 {
		ve.Add("iva", "iva deve estar entre 0 e 1")
	}
	switch r.Status {
	case "", "pendente", "confirmado", "cancelado":
	default:
		ve.Add("status", "status invalido")
	}
	validRecorrencia(r.Recorrencia, ve)
	return ve.OrNil()
}

// Validate checks the upsert key and value bounds.
func (f *FixedCost) Validate() error {
	ve := &ValidationError{}
	if !ValidMes(f.MesID) {
		ve.Add("mesId", "mes invalido")
	}
	if f.Ano < AnoMin || f.Ano > AnoMax {
		ve.Add("ano", "ano deve estar entre %d e %d", AnoMin, AnoMax)
	}
	if strings.TrimSpace(f.Categoria) == "" {
		ve.Add("categoria", "categoria e obrigatoria")
	}
	if f.Valor < 0 {
		ve.Add("valor", "valor nao pode ser negativo")
	}
	return ve.OrNil()
}

// Validate checks the upsert key and day bounds.
func (d *DaysWorked) Validate() error {
	ve := &ValidationError{}
	if !ValidMes(d.MesID) {
		ve.Add("mesId", "mes invalido")
	}
	if d.Ano < AnoMin || d.Ano > AnoMax {
		ve.Add("ano", "ano deve estar entre %d e %d", AnoMin, AnoMax)
	}
	if d.Andre < 0 || d.Andre > 31 {
		ve.Add("andre", "dias devem estar entre 0 e 31")
	}
	if d.Aline < 0 || d.Aline > 31 {
		ve.Add("aline", "dias devem estar entre 0 e 31")
	}
	return ve.OrNil()
}
