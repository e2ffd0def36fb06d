// Package service implements the property catalog: the public listing the
// site renders and the administrative CRUD behind it.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/sync/errgroup"

	"imovel_portal_backend/internal/imoveis/repository"
	"imovel_portal_backend/internal/imoveis/transport"
	"imovel_portal_backend/internal/storage"
	"imovel_portal_backend/platform/apperr"
	"imovel_portal_backend/platform/config"
	"imovel_portal_backend/platform/logger"
)

const msgImovelNotFound = "imóvel não encontrado"

// qrSize is the pixel width of the generated QR code PNG.
const qrSize = 512

// presignConcurrency caps parallel presign calls per listing response.
const presignConcurrency = 4

// Catalog is the persistence surface of the property catalog.
type Catalog interface {
	Create(ctx context.Context, params repository.CreateImovelParams) (repository.Imovel, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Imovel, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateImovelParams) (repository.Imovel, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Imovel, int, error)
	AddFoto(ctx context.Context, imovelID uuid.UUID, fileKey string) (repository.Foto, error)
	ListFotos(ctx context.Context, imovelID uuid.UUID) ([]repository.Foto, error)
	DeleteFoto(ctx context.Context, imovelID, fotoID uuid.UUID) (string, error)
}

// Config combines the settings the catalog needs: photo storage and the
// public site base URL for QR codes.
type Config interface {
	config.MinIOConfig
	config.CatalogConfig
}

type Service struct {
	catalog Catalog
	storage storage.StorageService
	bucket  string
	siteURL string
	log     *logger.Logger
}

func New(catalog Catalog, storageSvc storage.StorageService, cfg Config, log *logger.Logger) *Service {
	return &Service{
		catalog: catalog,
		storage: storageSvc,
		bucket:  cfg.GetMinioBucketImovelFotos(),
		siteURL: strings.TrimRight(cfg.GetSiteBaseURL(), "/"),
		log:     log,
	}
}

func (s *Service) Create(ctx context.Context, req transport.CreateImovelRequest) (transport.ImovelResponse, error) {
	imovel, err := s.catalog.Create(ctx, repository.CreateImovelParams{
		Titulo:    strings.TrimSpace(req.Titulo),
		Descricao: strings.TrimSpace(req.Descricao),
		Tipo:      req.Tipo,
		Preco:     req.Preco,
		Bairro:    strings.TrimSpace(req.Bairro),
		Cidade:    strings.TrimSpace(req.Cidade),
		Quartos:   req.Quartos,
		Banheiros: req.Banheiros,
		AreaM2:    req.AreaM2,
	})
	if err != nil {
		return transport.ImovelResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create imovel", err)
	}

	return s.toResponse(ctx, imovel), nil
}

// Get returns one property. Public callers only see active listings;
// administrative callers see everything.
func (s *Service) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (transport.ImovelResponse, error) {
	imovel, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ImovelResponse{}, apperr.NotFound(msgImovelNotFound)
		}
		return transport.ImovelResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load imovel", err)
	}

	if !imovel.Ativo && !includeInactive {
		return transport.ImovelResponse{}, apperr.NotFound(msgImovelNotFound)
	}

	return s.toResponse(ctx, imovel), nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateImovelRequest) (transport.ImovelResponse, error) {
	imovel, err := s.catalog.Update(ctx, id, repository.UpdateImovelParams{
		Titulo:    req.Titulo,
		Descricao: req.Descricao,
		Tipo:      req.Tipo,
		Preco:     req.Preco,
		Bairro:    req.Bairro,
		Cidade:    req.Cidade,
		Quartos:   req.Quartos,
		Banheiros: req.Banheiros,
		AreaM2:    req.AreaM2,
		Ativo:     req.Ativo,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ImovelResponse{}, apperr.NotFound(msgImovelNotFound)
		}
		return transport.ImovelResponse{}, apperr.Wrap(apperr.KindInternal, "failed to update imovel", err)
	}

	return s.toResponse(ctx, imovel), nil
}

func (s *Service) List(ctx context.Context, query transport.ListImoveisQuery, includeInactive bool) (transport.ListImoveisResponse, error) {
	params := repository.ListParams{
		Tipo:       query.Tipo,
		Bairro:     query.Bairro,
		PrecoMin:   query.PrecoMin,
		PrecoMax:   query.PrecoMax,
		OnlyActive: !includeInactive,
		Page:       query.Page,
		Limit:      query.Limit,
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 20
	}

	imoveis, total, err := s.catalog.List(ctx, params)
	if err != nil {
		return transport.ListImoveisResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list imoveis", err)
	}

	items := make([]transport.ImovelResponse, len(imoveis))
	for i, imovel := range imoveis {
		items[i] = s.toResponse(ctx, imovel)
	}

	return transport.ListImoveisResponse{
		Items: items,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}, nil
}

// UploadFoto validates and stores a listing photo, then records its key.
func (s *Service) UploadFoto(ctx context.Context, imovelID uuid.UUID, fileName, contentType string, reader io.Reader, size int64) (transport.FotoResponse, error) {
	if s.storage == nil {
		return transport.FotoResponse{}, apperr.New(apperr.KindInternal, "storage não configurado")
	}

	if _, err := s.catalog.GetByID(ctx, imovelID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.FotoResponse{}, apperr.NotFound(msgImovelNotFound)
		}
		return transport.FotoResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load imovel", err)
	}

	if err := s.storage.ValidateContentType(contentType); err != nil {
		return transport.FotoResponse{}, apperr.Validation(err.Error())
	}
	if err := s.storage.ValidateFileSize(size); err != nil {
		return transport.FotoResponse{}, apperr.Validation(err.Error())
	}

	fileKey, err := s.storage.UploadFile(ctx, s.bucket, imovelID.String(), fileName, contentType, reader, size)
	if err != nil {
		return transport.FotoResponse{}, apperr.Wrap(apperr.KindInternal, "failed to store photo", err)
	}

	foto, err := s.catalog.AddFoto(ctx, imovelID, fileKey)
	if err != nil {
		return transport.FotoResponse{}, apperr.Wrap(apperr.KindInternal, "failed to record photo", err)
	}

	return s.toFotoResponse(ctx, foto), nil
}

func (s *Service) DeleteFoto(ctx context.Context, imovelID, fotoID uuid.UUID) error {
	fileKey, err := s.catalog.DeleteFoto(ctx, imovelID, fotoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("foto não encontrada")
		}
		return apperr.Wrap(apperr.KindInternal, "failed to delete photo", err)
	}

	if s.storage != nil {
		if err := s.storage.DeleteObject(ctx, s.bucket, fileKey); err != nil {
			// Row is gone; the orphaned object is only wasted space.
			s.log.Warn("failed to delete photo object", "fileKey", fileKey, "error", err)
		}
	}
	return nil
}

// ListingURL is the public site page for a property; it is what the printed
// QR code points at.
func (s *Service) ListingURL(id uuid.UUID) string {
	return fmt.Sprintf("%s/imoveis/%s", s.siteURL, id)
}

// QRCode renders the listing URL as a PNG for print material.
func (s *Service) QRCode(ctx context.Context, id uuid.UUID) ([]byte, error) {
	imovel, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgImovelNotFound)
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load imovel", err)
	}

	png, err := qrcode.Encode(s.ListingURL(imovel.ID), qrcode.Medium, qrSize)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to render qr code", err)
	}
	return png, nil
}

func (s *Service) toResponse(ctx context.Context, imovel repository.Imovel) transport.ImovelResponse {
	resp := transport.ImovelResponse{
		ID:        imovel.ID,
		Titulo:    imovel.Titulo,
		Descricao: imovel.Descricao,
		Tipo:      imovel.Tipo,
		Preco:     imovel.Preco,
		Bairro:    imovel.Bairro,
		Cidade:    imovel.Cidade,
		Quartos:   imovel.Quartos,
		Banheiros: imovel.Banheiros,
		AreaM2:    imovel.AreaM2,
		Ativo:     imovel.Ativo,
		Fotos:     []transport.FotoResponse{},
		CriadoEm:  imovel.CreatedAt,
	}

	fotos, err := s.catalog.ListFotos(ctx, imovel.ID)
	if err != nil {
		s.log.Warn("failed to list photos", "imovelId", imovel.ID, "error", err)
		return resp
	}

	// Presigning hits MinIO once per photo, so hydrate the URLs in parallel.
	resp.Fotos = make([]transport.FotoResponse, len(fotos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(presignConcurrency)
	for i, foto := range fotos {
		g.Go(func() error {
			resp.Fotos[i] = s.toFotoResponse(gctx, foto)
			return nil
		})
	}
	_ = g.Wait()

	return resp
}

func (s *Service) toFotoResponse(ctx context.Context, foto repository.Foto) transport.FotoResponse {
	resp := transport.FotoResponse{ID: foto.ID}
	if s.storage == nil {
		return resp
	}

	presigned, err := s.storage.GenerateDownloadURL(ctx, s.bucket, foto.FileKey)
	if err != nil {
		s.log.Warn("failed to presign photo", "fileKey", foto.FileKey, "error", err)
		return resp
	}
	resp.URL = presigned.URL
	return resp
}
