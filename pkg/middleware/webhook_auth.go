package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"topup/pkg/utils"
)

const (
	WebhookKeyHeader       = "x-webhook-key"
	MallIDHeader           = "x-mall-id"
	WebhookSignatureHeader = "x-webhook-signature"

	maxWebhookBody = 1 << 20
)

type WebhookCredentials struct {
	Key    string
	MallID string
	// SigningSecret, when set, additionally requires a hex HMAC-SHA256 of the raw body.
	SigningSecret string
}

// WebhookAuth gates the payment callback. A rejected call gets 401 and never reaches the handler.
// The body is buffered and restored so the handler reads it unchanged. An authenticated
// caller whose body cannot be read is acknowledged as malformed.
func WebhookAuth(creds WebhookCredentials, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !equal(c.GetHeader(WebhookKeyHeader), creds.Key) || !equal(c.GetHeader(MallIDHeader), creds.MallID) {
			reject(c, log, "bad webhook credentials")
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
		if err != nil {
			log.Warn("unreadable webhook body",
				zap.String("trace_id", c.GetString(TraceIDKey)),
				zap.Int64("content_length", c.Request.ContentLength),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusOK, gin.H{"status": "ignored", "reason": "malformed"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if creds.SigningSecret != "" && !validSignature(body, c.GetHeader(WebhookSignatureHeader), creds.SigningSecret) {
			reject(c, log, "bad webhook signature")
			return
		}

		c.Next()
	}
}

func equal(got, want string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func validSignature(body []byte, signature, secret string) bool {
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, Sign(body, secret))
}

// Sign returns the HMAC-SHA256 of body, the value expected hex-encoded in x-webhook-signature.
func Sign(body []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}

// reject records ErrAuthentication on the context so RequestLogger reports it.
func reject(c *gin.Context, log *zap.Logger, msg string) {
	err := fmt.Errorf("%w: %s", utils.ErrAuthentication, msg)
	log.Warn("webhook rejected",
		zap.String("trace_id", c.GetString(TraceIDKey)),
		zap.String("client_ip", c.ClientIP()),
		zap.Error(err),
	)
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail"})
}
