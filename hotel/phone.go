package hotel

import (
	"fmt"
	"strings"
)

// channelPrefixes are transport-specific scheme prefixes seen on inbound addresses.
var channelPrefixes = []string{"whatsapp:", "sms:", "tel:"}

// NormalizePhone maps a raw channel address such as " whatsapp:+1 (555) 123-4567 "
// to the canonical key "+15551234567".
func NormalizePhone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	for _, prefix := range channelPrefixes {
		if strings.HasPrefix(lower, prefix) {
			s = s[len(prefix):]
			break
		}
	}

	var b strings.Builder
	for i, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
		}
	}

	out := b.String()
	if strings.TrimPrefix(out, "+") == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}
	return out, nil
}
