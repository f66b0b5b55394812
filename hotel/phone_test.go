package hotel

import (
	"errors"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want string
	}{
		{raw: "+15551234567", want: "+15551234567"},
		{raw: "whatsapp:+15551234567", want: "+15551234567"},
		{raw: "  WhatsApp:+1 (555) 123-4567 ", want: "+15551234567"},
		{raw: "sms:5551234567", want: "5551234567"},
		{raw: "+34 600.123.456", want: "+34600123456"},
	}

	for _, tc := range cases {
		got, err := NormalizePhone(tc.raw)
		if err != nil {
			t.Fatalf("NormalizePhone(%q) error = %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizePhoneRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "whatsapp:", "+", "abc", "+1555+123", "whatsapp:+1555x"} {
		if _, err := NormalizePhone(raw); !errors.Is(err, ErrInvalidPhone) {
			t.Fatalf("NormalizePhone(%q) error = %v, want ErrInvalidPhone", raw, err)
		}
	}
}
