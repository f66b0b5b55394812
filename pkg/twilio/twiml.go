package twilio

import "strings"

const ContentTypeXML = "text/xml; charset=utf-8"

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// MessageResponse wraps reply in the TwiML envelope Twilio expects from a webhook.
// An empty reply yields an envelope that sends nothing.
func MessageResponse(reply string) string {
	if reply == "" {
		return "<Response/>"
	}
	return "<Response><Message>" + xmlEscaper.Replace(reply) + "</Message></Response>"
}
