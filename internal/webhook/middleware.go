package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"imovel_portal_backend/platform/config"
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the raw request
// body, keyed with the shared secret configured on both sides.
const SignatureHeader = "X-Webhook-Signature"

// maxBodySize caps webhook payloads; callback bodies are small JSON objects.
const maxBodySize = 64 << 10

// SignatureMiddleware verifies the request body signature before the handler
// runs. When no shared secret is configured the check is skipped, which keeps
// local development working without the automation server.
func SignatureMiddleware(cfg config.WebhookConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := cfg.GetWebhookSharedSecret()
		if secret == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}
		// The handler binds JSON from the body too, so restore it.
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if !VerifySignature(body, c.GetHeader(SignatureHeader), secret) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}

		c.Next()
	}
}

// Sign computes the hex HMAC-SHA256 of body with the shared secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares the presented signature against the expected one
// in constant time.
func VerifySignature(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}

	expected, err := hex.DecodeString(Sign(body, secret))
	if err != nil {
		return false
	}
	presented, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	return hmac.Equal(expected, presented)
}
