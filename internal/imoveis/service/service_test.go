package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"imovel_portal_backend/internal/imoveis/repository"
	"imovel_portal_backend/platform/apperr"
	"imovel_portal_backend/platform/logger"
)

type memCatalog struct {
	imoveis map[uuid.UUID]repository.Imovel
}

func newMemCatalog() *memCatalog {
	return &memCatalog{imoveis: make(map[uuid.UUID]repository.Imovel)}
}

func (m *memCatalog) Create(_ context.Context, params repository.CreateImovelParams) (repository.Imovel, error) {
	imovel := repository.Imovel{
		ID:        uuid.New(),
		Titulo:    params.Titulo,
		Tipo:      params.Tipo,
		Preco:     params.Preco,
		Bairro:    params.Bairro,
		Cidade:    params.Cidade,
		Ativo:     true,
		CreatedAt: time.Now(),
	}
	m.imoveis[imovel.ID] = imovel
	return imovel, nil
}

func (m *memCatalog) GetByID(_ context.Context, id uuid.UUID) (repository.Imovel, error) {
	imovel, ok := m.imoveis[id]
	if !ok {
		return repository.Imovel{}, repository.ErrNotFound
	}
	return imovel, nil
}

func (m *memCatalog) Update(_ context.Context, id uuid.UUID, params repository.UpdateImovelParams) (repository.Imovel, error) {
	imovel, ok := m.imoveis[id]
	if !ok {
		return repository.Imovel{}, repository.ErrNotFound
	}
	if params.Ativo != nil {
		imovel.Ativo = *params.Ativo
	}
	m.imoveis[id] = imovel
	return imovel, nil
}

func (m *memCatalog) List(_ context.Context, params repository.ListParams) ([]repository.Imovel, int, error) {
	matched := make([]repository.Imovel, 0)
	for _, imovel := range m.imoveis {
		if params.OnlyActive && !imovel.Ativo {
			continue
		}
		matched = append(matched, imovel)
	}
	return matched, len(matched), nil
}

func (m *memCatalog) AddFoto(context.Context, uuid.UUID, string) (repository.Foto, error) {
	return repository.Foto{}, nil
}

func (m *memCatalog) ListFotos(context.Context, uuid.UUID) ([]repository.Foto, error) {
	return []repository.Foto{}, nil
}

func (m *memCatalog) DeleteFoto(context.Context, uuid.UUID, uuid.UUID) (string, error) {
	return "", repository.ErrNotFound
}

type catalogConfig struct{}

func (catalogConfig) GetMinIOEndpoint() string          { return "" }
func (catalogConfig) GetMinIOAccessKey() string         { return "" }
func (catalogConfig) GetMinIOSecretKey() string         { return "" }
func (catalogConfig) GetMinIOUseSSL() bool              { return false }
func (catalogConfig) GetMinIOMaxFileSize() int64        { return 0 }
func (catalogConfig) GetMinioBucketImovelFotos() string { return "imovel-fotos" }
func (catalogConfig) IsMinIOEnabled() bool              { return false }
func (catalogConfig) GetSiteBaseURL() string            { return "https://portal.example.com/" }

func newTestService() (*Service, *memCatalog) {
	catalog := newMemCatalog()
	return New(catalog, nil, catalogConfig{}, logger.New("development")), catalog
}

func TestListingURLJoinsSiteBase(t *testing.T) {
	svc, _ := newTestService()
	id := uuid.MustParse("5f0c2f2e-0000-4000-8000-000000000001")

	want := "https://portal.example.com/imoveis/5f0c2f2e-0000-4000-8000-000000000001"
	if got := svc.ListingURL(id); got != want {
		t.Errorf("ListingURL = %s, want %s", got, want)
	}
}

func TestPublicGetHidesInactiveListing(t *testing.T) {
	svc, catalog := newTestService()

	imovel, _ := catalog.Create(context.Background(), repository.CreateImovelParams{
		Titulo: "Casa no Centro", Tipo: "CASA", Preco: 450000, Bairro: "Centro", Cidade: "Goiânia",
	})
	inactive := false
	if _, err := catalog.Update(context.Background(), imovel.ID, repository.UpdateImovelParams{Ativo: &inactive}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := svc.Get(context.Background(), imovel.ID, false); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("public get error = %v, want not found", err)
	}

	// Administrative view still sees it.
	resp, err := svc.Get(context.Background(), imovel.ID, true)
	if err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if resp.Ativo {
		t.Error("listing should be inactive")
	}
}

func TestQRCodeRendersPNG(t *testing.T) {
	svc, catalog := newTestService()

	imovel, _ := catalog.Create(context.Background(), repository.CreateImovelParams{
		Titulo: "Apto", Tipo: "APARTAMENTO", Preco: 300000, Bairro: "Setor Oeste", Cidade: "Goiânia",
	})

	png, err := svc.QRCode(context.Background(), imovel.ID)
	if err != nil {
		t.Fatalf("QRCode: %v", err)
	}

	pngMagic := []byte{0x89, 'P', 'N', 'G'}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("output is not a PNG")
	}
}

func TestQRCodeUnknownListing(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.QRCode(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}
