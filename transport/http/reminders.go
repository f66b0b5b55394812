package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const signatureHeader = "Upstash-Signature"

// SendReminders runs one reminder batch and answers with its status line.
func (h *Handler) SendReminders(c *gin.Context) {
	if h.verifier != nil {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid body")
			return
		}
		if err := h.verifier.Verify(c.GetHeader(signatureHeader), body, h.destination()); err != nil {
			log.Warn().Err(err).Str("component", "reminder").Msg("rejected unsigned reminder trigger")
			c.String(http.StatusUnauthorized, "Invalid signature")
			return
		}
	}

	res, err := h.reminders.Run(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("component", "reminder").Msg("reminder batch failed")
		c.String(http.StatusInternalServerError, "Error")
		return
	}
	c.String(http.StatusOK, res.StatusLine())
}

// destination is the URL QStash signed for, or empty to skip the subject check.
func (h *Handler) destination() string {
	if strings.TrimSpace(h.publicURL) == "" {
		return ""
	}
	return ReminderURL(h.publicURL)
}

// ReminderURL joins the public base URL with the reminder route.
func ReminderURL(publicURL string) string {
	return strings.TrimRight(strings.TrimSpace(publicURL), "/") + "/tasks/reminders"
}
