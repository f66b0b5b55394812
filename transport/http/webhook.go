package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
	"github.com/tanpawarit/luna-hotel-concierge/agent/agents/orchestrator"
	"github.com/tanpawarit/luna-hotel-concierge/hotel"
	twiliox "github.com/tanpawarit/luna-hotel-concierge/pkg/twilio"
)

const (
	missingFieldsText = "Missing From or Body"
	rateLimitedText   = "Too many messages, please slow down."
)

// inboundPayload carries the Twilio webhook fields used by the concierge.
type inboundPayload struct {
	From       string `json:"From" form:"From"`
	Body       string `json:"Body" form:"Body"`
	MessageSid string `json:"MessageSid" form:"MessageSid"`
}

func (p inboundPayload) complete() bool {
	return strings.TrimSpace(p.From) != "" && strings.TrimSpace(p.Body) != ""
}

func decodeInbound(c *gin.Context) (inboundPayload, error) {
	var p inboundPayload
	var err error
	if c.ContentType() == binding.MIMEJSON {
		err = c.ShouldBindJSON(&p)
	} else {
		err = c.ShouldBindWith(&p, binding.Form)
	}
	if errors.Is(err, io.EOF) {
		return p, nil
	}
	return p, err
}

// HandleWhatsApp answers a Twilio inbound message with a TwiML envelope.
func (h *Handler) HandleWhatsApp(allow func(sender string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := decodeInbound(c)
		if err != nil {
			log.Warn().Err(err).Str("component", "webhook").Msg("decode inbound payload failed")
			c.String(http.StatusBadRequest, missingFieldsText)
			return
		}
		if !p.complete() {
			c.String(http.StatusBadRequest, missingFieldsText)
			return
		}

		if allow != nil {
			key, err := hotel.NormalizePhone(p.From)
			if err != nil {
				key = strings.TrimSpace(p.From)
			}
			if !allow(key) {
				c.String(http.StatusTooManyRequests, rateLimitedText)
				return
			}
		}

		reply, err := h.conversation.HandleInbound(c.Request.Context(), orchestrator.Inbound{
			From:       p.From,
			Body:       p.Body,
			DeliveryID: p.MessageSid,
		})
		if err != nil {
			if errors.Is(err, contractx.ErrValidation) {
				c.String(http.StatusBadRequest, missingFieldsText)
				return
			}
			log.Error().Err(err).Str("component", "webhook").Msg("handle inbound failed")
			c.String(http.StatusInternalServerError, "Error")
			return
		}

		c.Data(http.StatusOK, twiliox.ContentTypeXML, []byte(twiliox.MessageResponse(reply.Text)))
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
