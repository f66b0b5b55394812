package qstash

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestEnsureSchedule(t *testing.T) {
	t.Parallel()

	var gotPath, gotCron, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCron = r.Header.Get("Upstash-Cron")
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"scheduleId":"scd_123"}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{URL: server.URL, Token: "tok"}, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	id, err := client.EnsureSchedule(context.Background(), "https://hotel.example.com/tasks/reminders", "")
	if err != nil {
		t.Fatalf("EnsureSchedule() error = %v", err)
	}
	if id != "scd_123" {
		t.Fatalf("EnsureSchedule() = %q, want scd_123", id)
	}
	if gotPath != "/v2/schedules/https://hotel.example.com/tasks/reminders" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotCron != DefaultCron || gotAuth != "Bearer tok" {
		t.Fatalf("unexpected headers cron=%q auth=%q", gotCron, gotAuth)
	}
}

func TestEnsureScheduleErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid token"}`)
	}))
	t.Cleanup(server.Close)

	client := MustNew(Config{URL: server.URL, Token: "tok"}, WithHTTPClient(server.Client()))
	if _, err := client.EnsureSchedule(context.Background(), "https://hotel.example.com/tasks/reminders", "0 8 * * *"); err == nil {
		t.Fatal("EnsureSchedule() error = nil, want status error")
	}
	if _, err := client.EnsureSchedule(context.Background(), "not a url", ""); err == nil {
		t.Fatal("EnsureSchedule() error = nil, want destination error")
	}
	if _, err := NewClient(Config{URL: server.URL}); err == nil {
		t.Fatal("NewClient() error = nil, want missing token error")
	}
}

func sign(t *testing.T, key string, claims signatureClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return token
}

func validClaims(body []byte, destination string) signatureClaims {
	now := time.Now()
	return signatureClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "Upstash",
			Subject:   destination,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
		},
		Body: BodyHash(body) + "=",
	}
}

func TestVerifierAcceptsCurrentAndNextKey(t *testing.T) {
	t.Parallel()

	const dest = "https://hotel.example.com/tasks/reminders"
	body := []byte(`{"run":"daily"}`)
	v, err := NewVerifier("current", "next")
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	for _, key := range []string{"current", "next"} {
		if err := v.Verify(sign(t, key, validClaims(body, dest)), body, dest); err != nil {
			t.Fatalf("Verify() with %s key error = %v", key, err)
		}
	}
}

func TestVerifierRejects(t *testing.T) {
	t.Parallel()

	const dest = "https://hotel.example.com/tasks/reminders"
	body := []byte("ping")
	v, err := NewVerifier("current", "")
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	expired := validClaims(body, dest)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	wrongIssuer := validClaims(body, dest)
	wrongIssuer.Issuer = "someone"

	tests := []struct {
		name      string
		signature string
		body      []byte
	}{
		{name: "wrong key", signature: sign(t, "other", validClaims(body, dest)), body: body},
		{name: "tampered body", signature: sign(t, "current", validClaims(body, dest)), body: []byte("pong")},
		{name: "expired", signature: sign(t, "current", expired), body: body},
		{name: "issuer", signature: sign(t, "current", wrongIssuer), body: body},
		{name: "other destination", signature: sign(t, "current", validClaims(body, "https://evil.example.com")), body: body},
	}
	for _, tc := range tests {
		if err := v.Verify(tc.signature, tc.body, dest); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("%s: Verify() error = %v, want ErrInvalidSignature", tc.name, err)
		}
	}

	if err := v.Verify("  ", body, dest); !errors.Is(err, ErrMissingSignature) {
		t.Fatalf("Verify() error = %v, want ErrMissingSignature", err)
	}
	if _, err := NewVerifier(" ", ""); err == nil {
		t.Fatal("NewVerifier() error = nil, want missing keys error")
	}
}
