package webhook

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"imovel_portal_backend/internal/leads/transport"
	"imovel_portal_backend/platform/httpkit"
	"imovel_portal_backend/platform/validator"
)

// LeadClaimer is the slice of the lead service the webhook needs: the
// keyword-gated claim from an automation callback.
type LeadClaimer interface {
	ClaimViaWebhook(ctx context.Context, req transport.WebhookClaimRequest) (transport.WebhookClaimResponse, error)
}

type Handler struct {
	svc LeadClaimer
	val *validator.Validator
}

func NewHandler(svc LeadClaimer, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// HandleCorretorReply processes the automation callback carrying a broker's
// reply to a new-lead notification. Replies containing the claim keyword
// attempt the assignment; anything else is just acknowledged.
func (h *Handler) HandleCorretorReply(c *gin.Context) {
	var req transport.WebhookClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "payload inválido", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "falha de validação", err.Error())
		return
	}

	resp, err := h.svc.ClaimViaWebhook(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}
