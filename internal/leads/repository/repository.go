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

	"imovel_portal_backend/internal/leads/domain"
)

var (
	ErrNotFound        = errors.New("lead not found")
	ErrAlreadyAssigned = errors.New("lead already assigned")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lead is the stored lead row plus the expanded broker/property references
// used by API responses and the sink payload.
type Lead struct {
	ID         uuid.UUID
	Nome       string
	Telefone   string
	Email      *string
	Mensagem   string
	ImovelID   *uuid.UUID
	Origem     string
	Status     string
	CorretorID *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time

	CorretorNome     *string
	CorretorWhatsapp *string
	ImovelTitulo     *string
	ImovelTipo       *string
	ImovelPreco      *float64
	ImovelBairro     *string
}

type CreateLeadParams struct {
	Nome     string
	Telefone string
	Email    *string
	Mensagem string
	ImovelID *uuid.UUID
	Origem   string
}

const leadSelectBase = `
	SELECT l.id, l.nome, l.telefone, l.email, l.mensagem, l.imovel_id, l.origem, l.status,
		l.corretor_id, l.created_at, l.updated_at,
		u.nome, u.whatsapp,
		i.titulo, i.tipo, i.preco, i.bairro
	FROM leads l
	LEFT JOIN usuarios u ON u.id = l.corretor_id
	LEFT JOIN imoveis i ON i.id = l.imovel_id`

// claimLeadQuery is the single-assignment primitive. The status predicate in
// the WHERE clause makes the check-then-set one atomic statement: of two
// concurrent claims for the same id, the row matches exactly once.
const claimLeadQuery = `
	UPDATE leads
	SET status = 'ASSIGNED', corretor_id = $2, updated_at = now()
	WHERE id = $1 AND status = 'PENDING'`

// expireStaleQuery moves stale PENDING leads to EXPIRED. The same
// conditional-update shape as the claim keeps the sweep from racing a
// concurrent claim: a lead assigned between selection and update no longer
// matches the predicate.
const expireStaleQuery = `
	UPDATE leads
	SET status = 'EXPIRED', updated_at = now()
	WHERE status = 'PENDING' AND created_at < $1`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.Nome, &lead.Telefone, &lead.Email, &lead.Mensagem,
		&lead.ImovelID, &lead.Origem, &lead.Status, &lead.CorretorID,
		&lead.CreatedAt, &lead.UpdatedAt,
		&lead.CorretorNome, &lead.CorretorWhatsapp,
		&lead.ImovelTitulo, &lead.ImovelTipo, &lead.ImovelPreco, &lead.ImovelBairro,
	)
	return lead, err
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO leads (nome, telefone, email, mensagem, imovel_id, origem, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'PENDING')
		RETURNING id
	`, params.Nome, params.Telefone, params.Email, params.Mensagem, params.ImovelID, params.Origem).Scan(&id)
	if err != nil {
		return Lead{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, leadSelectBase+` WHERE l.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// Claim atomically assigns a PENDING lead to the given broker. Exactly one
// of any set of concurrent claimants observes a non-zero affected-row count;
// the rest get ErrAlreadyAssigned (or ErrNotFound for unknown ids).
func (r *Repository) Claim(ctx context.Context, id uuid.UUID, corretorID uuid.UUID) (Lead, error) {
	tag, err := r.pool.Exec(ctx, claimLeadQuery, id, corretorID)
	if err != nil {
		return Lead{}, err
	}

	if tag.RowsAffected() == 0 {
		// Distinguish a lost race from an unknown id.
		if _, err := r.GetByID(ctx, id); err != nil {
			return Lead{}, err
		}
		return Lead{}, ErrAlreadyAssigned
	}

	return r.GetByID(ctx, id)
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (Lead, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = $2, updated_at = now() WHERE id = $1
	`, id, string(status))
	if err != nil {
		return Lead{}, err
	}
	if tag.RowsAffected() == 0 {
		return Lead{}, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

type ListParams struct {
	Scope  domain.Scope
	Status *domain.Status
	Page   int
	Limit  int
	// OrderAsc inverts the default created_at DESC ordering.
	OrderAsc bool
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	if params.Scope.None {
		return []Lead{}, 0, nil
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 20
	}

	where, args := buildScopeConditions(params.Scope)
	if params.Status != nil {
		args = append(args, string(*params.Status))
		where = append(where, fmt.Sprintf("l.status = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM leads l` + clause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	direction := "DESC"
	if params.OrderAsc {
		direction = "ASC"
	}

	args = append(args, params.Limit, (params.Page-1)*params.Limit)
	query := fmt.Sprintf("%s%s ORDER BY l.created_at %s LIMIT $%d OFFSET $%d",
		leadSelectBase, clause, direction, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

// StatusCounts aggregates lead counts by status within a scope.
type StatusCounts struct {
	Pending   int
	Assigned  int
	Converted int
	Expired   int
}

func (c StatusCounts) Total() int {
	return c.Pending + c.Assigned + c.Converted + c.Expired
}

func (r *Repository) CountByStatus(ctx context.Context, scope domain.Scope) (StatusCounts, error) {
	if scope.None {
		return StatusCounts{}, nil
	}

	where, args := buildScopeConditions(scope)
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := r.pool.Query(ctx, `SELECT l.status, COUNT(*) FROM leads l`+clause+` GROUP BY l.status`, args...)
	if err != nil {
		return StatusCounts{}, err
	}
	defer rows.Close()

	var counts StatusCounts
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return StatusCounts{}, err
		}
		switch domain.Status(status) {
		case domain.StatusPending:
			counts.Pending = count
		case domain.StatusAssigned:
			counts.Assigned = count
		case domain.StatusConverted:
			counts.Converted = count
		case domain.StatusExpired:
			counts.Expired = count
		}
	}
	if rows.Err() != nil {
		return StatusCounts{}, rows.Err()
	}

	return counts, nil
}

// CorretorCount is one row of the per-broker lead breakdown.
type CorretorCount struct {
	CorretorID  uuid.UUID
	Nome        string
	Total       int
	Convertidos int
}

func (r *Repository) CountByCorretor(ctx context.Context) ([]CorretorCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.nome,
			COUNT(l.id),
			COUNT(l.id) FILTER (WHERE l.status = 'CONVERTED')
		FROM usuarios u
		JOIN leads l ON l.corretor_id = u.id
		GROUP BY u.id, u.nome
		ORDER BY COUNT(l.id) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]CorretorCount, 0)
	for rows.Next() {
		var item CorretorCount
		if err := rows.Scan(&item.CorretorID, &item.Nome, &item.Total, &item.Convertidos); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

// ExpireStale transitions PENDING leads created before the cutoff to EXPIRED
// and returns how many rows changed.
func (r *Repository) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, expireStaleQuery, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func buildScopeConditions(scope domain.Scope) ([]string, []interface{}) {
	where := make([]string, 0, 1)
	args := make([]interface{}, 0, 1)

	switch {
	case scope.OwnerID != nil:
		args = append(args, *scope.OwnerID)
		where = append(where, fmt.Sprintf("l.corretor_id = $%d", len(args)))
	case scope.Email != nil:
		args = append(args, *scope.Email)
		where = append(where, fmt.Sprintf("l.email = $%d", len(args)))
	}

	return where, args
}
