// Package repository persists the property catalog.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("imovel not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Imovel struct {
	ID        uuid.UUID
	Titulo    string
	Descricao string
	Tipo      string
	Preco     float64
	Bairro    string
	Cidade    string
	Quartos   int
	Banheiros int
	AreaM2    float64
	Ativo     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Foto struct {
	ID      uuid.UUID
	FileKey string
}

type CreateImovelParams struct {
	Titulo    string
	Descricao string
	Tipo      string
	Preco     float64
	Bairro    string
	Cidade    string
	Quartos   int
	Banheiros int
	AreaM2    float64
}

type UpdateImovelParams struct {
	Titulo    *string
	Descricao *string
	Tipo      *string
	Preco     *float64
	Bairro    *string
	Cidade    *string
	Quartos   *int
	Banheiros *int
	AreaM2    *float64
	Ativo     *bool
}

type ListParams struct {
	Tipo       string
	Bairro     string
	PrecoMin   float64
	PrecoMax   float64
	OnlyActive bool
	Page       int
	Limit      int
}

const imovelSelectBase = `
	SELECT id, titulo, descricao, tipo, preco, bairro, cidade, quartos, banheiros,
		area_m2, ativo, created_at, updated_at
	FROM imoveis`

func scanImovel(row pgx.Row) (Imovel, error) {
	var imovel Imovel
	err := row.Scan(
		&imovel.ID, &imovel.Titulo, &imovel.Descricao, &imovel.Tipo, &imovel.Preco,
		&imovel.Bairro, &imovel.Cidade, &imovel.Quartos, &imovel.Banheiros,
		&imovel.AreaM2, &imovel.Ativo, &imovel.CreatedAt, &imovel.UpdatedAt,
	)
	return imovel, err
}

func (r *Repository) Create(ctx context.Context, params CreateImovelParams) (Imovel, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO imoveis (titulo, descricao, tipo, preco, bairro, cidade, quartos, banheiros, area_m2, ativo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
		RETURNING id
	`, params.Titulo, params.Descricao, params.Tipo, params.Preco, params.Bairro,
		params.Cidade, params.Quartos, params.Banheiros, params.AreaM2).Scan(&id)
	if err != nil {
		return Imovel{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Imovel, error) {
	imovel, err := scanImovel(r.pool.QueryRow(ctx, imovelSelectBase+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Imovel{}, ErrNotFound
	}
	return imovel, err
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateImovelParams) (Imovel, error) {
	set := make([]string, 0, 10)
	args := []interface{}{id}

	appendSet := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Titulo != nil {
		appendSet("titulo", *params.Titulo)
	}
	if params.Descricao != nil {
		appendSet("descricao", *params.Descricao)
	}
	if params.Tipo != nil {
		appendSet("tipo", *params.Tipo)
	}
	if params.Preco != nil {
		appendSet("preco", *params.Preco)
	}
	if params.Bairro != nil {
		appendSet("bairro", *params.Bairro)
	}
	if params.Cidade != nil {
		appendSet("cidade", *params.Cidade)
	}
	if params.Quartos != nil {
		appendSet("quartos", *params.Quartos)
	}
	if params.Banheiros != nil {
		appendSet("banheiros", *params.Banheiros)
	}
	if params.AreaM2 != nil {
		appendSet("area_m2", *params.AreaM2)
	}
	if params.Ativo != nil {
		appendSet("ativo", *params.Ativo)
	}

	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	query := fmt.Sprintf("UPDATE imoveis SET %s, updated_at = now() WHERE id = $1", strings.Join(set, ", "))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return Imovel{}, err
	}
	if tag.RowsAffected() == 0 {
		return Imovel{}, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Imovel, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 20
	}

	where := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)

	appendWhere := func(condition string, value interface{}) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(condition, len(args)))
	}

	if params.OnlyActive {
		where = append(where, "ativo")
	}
	if params.Tipo != "" {
		appendWhere("tipo = $%d", params.Tipo)
	}
	if params.Bairro != "" {
		appendWhere("bairro ILIKE $%d", params.Bairro)
	}
	if params.PrecoMin > 0 {
		appendWhere("preco >= $%d", params.PrecoMin)
	}
	if params.PrecoMax > 0 {
		appendWhere("preco <= $%d", params.PrecoMax)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM imoveis`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, (params.Page-1)*params.Limit)
	query := fmt.Sprintf("%s%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		imovelSelectBase, clause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	imoveis := make([]Imovel, 0)
	for rows.Next() {
		imovel, err := scanImovel(rows)
		if err != nil {
			return nil, 0, err
		}
		imoveis = append(imoveis, imovel)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return imoveis, total, nil
}

func (r *Repository) AddFoto(ctx context.Context, imovelID uuid.UUID, fileKey string) (Foto, error) {
	var foto Foto
	err := r.pool.QueryRow(ctx, `
		INSERT INTO imovel_fotos (imovel_id, file_key)
		VALUES ($1, $2)
		RETURNING id, file_key
	`, imovelID, fileKey).Scan(&foto.ID, &foto.FileKey)
	return foto, err
}

func (r *Repository) ListFotos(ctx context.Context, imovelID uuid.UUID) ([]Foto, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, file_key FROM imovel_fotos WHERE imovel_id = $1 ORDER BY created_at ASC
	`, imovelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fotos := make([]Foto, 0)
	for rows.Next() {
		var foto Foto
		if err := rows.Scan(&foto.ID, &foto.FileKey); err != nil {
			return nil, err
		}
		fotos = append(fotos, foto)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return fotos, nil
}

func (r *Repository) DeleteFoto(ctx context.Context, imovelID, fotoID uuid.UUID) (string, error) {
	var fileKey string
	err := r.pool.QueryRow(ctx, `
		DELETE FROM imovel_fotos WHERE id = $1 AND imovel_id = $2 RETURNING file_key
	`, fotoID, imovelID).Scan(&fileKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return fileKey, err
}
