// Package sink posts new-lead notifications to the automation server, which
// fans them out to the broker WhatsApp group.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"imovel_portal_backend/platform/config"
	"imovel_portal_backend/platform/logger"
)

// Payload is the notification body the automation flow expects.
type Payload struct {
	LeadID       uuid.UUID `json:"leadId"`
	Nome         string    `json:"nome"`
	Telefone     string    `json:"telefone"`
	Mensagem     string    `json:"mensagem"`
	ImovelTitulo *string   `json:"imovelTitulo,omitempty"`
}

type Client struct {
	url  string
	http *http.Client
	log  *logger.Logger
}

// NewClient builds the sink client. Returns nil when no sink URL is
// configured; a nil client silently drops notifications.
func NewClient(cfg config.SinkConfig, log *logger.Logger) *Client {
	if !cfg.IsSinkEnabled() {
		return nil
	}

	return &Client{
		url:  strings.TrimRight(cfg.GetSinkURL(), "/"),
		http: &http.Client{Timeout: cfg.GetSinkTimeout()},
		log:  log,
	}
}

// NotifyNewLead posts the payload to the automation server. The bounded
// client timeout keeps a slow sink from holding goroutines hostage.
func (c *Client) NotifyNewLead(ctx context.Context, payload Payload) error {
	if c == nil {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sink payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sink request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sink returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Info("lead notification delivered to sink", "leadId", payload.LeadID)
	return nil
}
