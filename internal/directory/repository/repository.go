// Package repository persists the user directory (corretores, assistentes,
// administradores) in the usuarios table.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type User struct {
	ID        uuid.UUID
	Nome      string
	Email     string
	Telefone  *string
	Whatsapp  *string
	SenhaHash string
	Roles     []string
	Ativo     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateUserParams struct {
	Nome      string
	Email     string
	Telefone  *string
	Whatsapp  *string
	SenhaHash string
	Roles     []string
}

const userSelectBase = `
	SELECT id, nome, email, telefone, whatsapp, senha_hash, roles, ativo, created_at, updated_at
	FROM usuarios`

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Nome, &user.Email, &user.Telefone, &user.Whatsapp,
		&user.SenhaHash, &user.Roles, &user.Ativo, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

func (r *Repository) Create(ctx context.Context, params CreateUserParams) (User, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO usuarios (nome, email, telefone, whatsapp, senha_hash, roles, ativo)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING id
	`, params.Nome, params.Email, params.Telefone, params.Whatsapp, params.SenhaHash, params.Roles).Scan(&id)
	if err != nil {
		return User{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, userSelectBase+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, userSelectBase+` WHERE lower(email) = lower($1)`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, userSelectBase+` ORDER BY nome ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return users, nil
}

func (r *Repository) SetAtivo(ctx context.Context, id uuid.UUID, ativo bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE usuarios SET ativo = $2, updated_at = now() WHERE id = $1
	`, id, ativo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IsActiveCorretor reports whether id is an active user holding CORRETOR.
// Used by the lead claim to gate eligibility.
func (r *Repository) IsActiveCorretor(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM usuarios
			WHERE id = $1 AND ativo AND 'CORRETOR' = ANY(roles)
		)
	`, id).Scan(&exists)
	return exists, err
}
