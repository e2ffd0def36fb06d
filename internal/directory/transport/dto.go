// Package transport defines the request/response shapes of the directory API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	User        UserResponse `json:"user"`
}

type CreateUserRequest struct {
	Nome     string   `json:"nome" validate:"required,min=2,max=120"`
	Email    string   `json:"email" validate:"required,email"`
	Telefone string   `json:"telefone" validate:"omitempty,telefone"`
	Whatsapp string   `json:"whatsapp" validate:"omitempty,telefone"`
	Password string   `json:"password" validate:"required,min=8"`
	Roles    []string `json:"roles" validate:"required,min=1,dive,oneof=ADMIN CORRETOR ASSISTENTE CLIENTE MARKETING DESENVOLVEDOR"`
}

type SetAtivoRequest struct {
	Ativo bool `json:"ativo"`
}

type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Nome     string    `json:"nome"`
	Email    string    `json:"email"`
	Telefone *string   `json:"telefone,omitempty"`
	Whatsapp *string   `json:"whatsapp,omitempty"`
	Roles    []string  `json:"roles"`
	Ativo    bool      `json:"ativo"`
	CriadoEm time.Time `json:"criadoEm"`
}
