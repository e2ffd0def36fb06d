package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"imovel_portal_backend/internal/imoveis/service"
	"imovel_portal_backend/internal/imoveis/transport"
	"imovel_portal_backend/platform/httpkit"
	"imovel_portal_backend/platform/validator"
)

const (
	msgInvalidRequest   = "requisição inválida"
	msgValidationFailed = "falha de validação"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterPublicRoutes mounts the endpoints the site consumes anonymously.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListPublic)
	rg.GET("/:id", h.GetPublic)
	rg.GET("/:id/qrcode", h.QRCode)
}

// RegisterAdminRoutes mounts the catalog administration endpoints.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListAdmin)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetAdmin)
	rg.PATCH("/:id", h.Update)
	rg.POST("/:id/fotos", h.UploadFoto)
	rg.DELETE("/:id/fotos/:fotoId", h.DeleteFoto)
}

func (h *Handler) ListPublic(c *gin.Context) {
	h.list(c, false)
}

func (h *Handler) ListAdmin(c *gin.Context) {
	h.list(c, true)
}

func (h *Handler) list(c *gin.Context, includeInactive bool) {
	var query transport.ListImoveisQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.List(c.Request.Context(), query, includeInactive)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) GetPublic(c *gin.Context) {
	h.get(c, false)
}

func (h *Handler) GetAdmin(c *gin.Context) {
	h.get(c, true)
}

func (h *Handler) get(c *gin.Context, includeInactive bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	imovel, err := h.svc.Get(c.Request.Context(), id, includeInactive)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, imovel)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateImovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	imovel, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, imovel)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateImovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	imovel, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, imovel)
}

func (h *Handler) UploadFoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	file, err := c.FormFile("foto")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "arquivo 'foto' é obrigatório", nil)
		return
	}

	src, err := file.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	defer func() {
		_ = src.Close()
	}()

	foto, err := h.svc.UploadFoto(c.Request.Context(), id, file.Filename, file.Header.Get("Content-Type"), src, file.Size)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, foto)
}

func (h *Handler) DeleteFoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	fotoID, err := uuid.Parse(c.Param("fotoId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.DeleteFoto(c.Request.Context(), id, fotoID); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) QRCode(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	png, err := h.svc.QRCode(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
