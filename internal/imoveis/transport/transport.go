// Package transport defines the request/response shapes of the imoveis API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateImovelRequest struct {
	Titulo    string  `json:"titulo" validate:"required,min=2,max=160"`
	Descricao string  `json:"descricao" validate:"omitempty,max=4000"`
	Tipo      string  `json:"tipo" validate:"required,oneof=CASA APARTAMENTO TERRENO COMERCIAL RURAL"`
	Preco     float64 `json:"preco" validate:"required,gt=0"`
	Bairro    string  `json:"bairro" validate:"required,min=2,max=120"`
	Cidade    string  `json:"cidade" validate:"required,min=2,max=120"`
	Quartos   int     `json:"quartos" validate:"omitempty,min=0,max=50"`
	Banheiros int     `json:"banheiros" validate:"omitempty,min=0,max=50"`
	AreaM2    float64 `json:"areaM2" validate:"omitempty,gt=0"`
}

type UpdateImovelRequest struct {
	Titulo    *string  `json:"titulo" validate:"omitempty,min=2,max=160"`
	Descricao *string  `json:"descricao" validate:"omitempty,max=4000"`
	Tipo      *string  `json:"tipo" validate:"omitempty,oneof=CASA APARTAMENTO TERRENO COMERCIAL RURAL"`
	Preco     *float64 `json:"preco" validate:"omitempty,gt=0"`
	Bairro    *string  `json:"bairro" validate:"omitempty,min=2,max=120"`
	Cidade    *string  `json:"cidade" validate:"omitempty,min=2,max=120"`
	Quartos   *int     `json:"quartos" validate:"omitempty,min=0,max=50"`
	Banheiros *int     `json:"banheiros" validate:"omitempty,min=0,max=50"`
	AreaM2    *float64 `json:"areaM2" validate:"omitempty,gt=0"`
	Ativo     *bool    `json:"ativo"`
}

type ListImoveisQuery struct {
	Tipo     string  `form:"tipo" validate:"omitempty,oneof=CASA APARTAMENTO TERRENO COMERCIAL RURAL"`
	Bairro   string  `form:"bairro" validate:"omitempty,max=120"`
	PrecoMin float64 `form:"precoMin" validate:"omitempty,gte=0"`
	PrecoMax float64 `form:"precoMax" validate:"omitempty,gte=0"`
	Page     int     `form:"page" validate:"omitempty,min=1"`
	Limit    int     `form:"limit" validate:"omitempty,min=1,max=100"`
}

type FotoResponse struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}

type ImovelResponse struct {
	ID        uuid.UUID      `json:"id"`
	Titulo    string         `json:"titulo"`
	Descricao string         `json:"descricao,omitempty"`
	Tipo      string         `json:"tipo"`
	Preco     float64        `json:"preco"`
	Bairro    string         `json:"bairro"`
	Cidade    string         `json:"cidade"`
	Quartos   int            `json:"quartos"`
	Banheiros int            `json:"banheiros"`
	AreaM2    float64        `json:"areaM2"`
	Ativo     bool           `json:"ativo"`
	Fotos     []FotoResponse `json:"fotos"`
	CriadoEm  time.Time      `json:"criadoEm"`
}

type ListImoveisResponse struct {
	Items []ImovelResponse `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
