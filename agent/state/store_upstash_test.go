package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// fakeUpstash answers SET NX and DEL against an in-memory key set.
func fakeUpstash(t *testing.T) (*httptest.Server, *[][]any) {
	t.Helper()

	var (
		mu       sync.Mutex
		keys     = map[string]bool{}
		commands [][]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"unauthorized"}`)
			return
		}
		var cmd []any
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		commands = append(commands, cmd)
		key, _ := cmd[1].(string)
		switch cmd[0] {
		case "SET":
			if keys[key] {
				fmt.Fprint(w, `{"result":null}`)
				return
			}
			keys[key] = true
			fmt.Fprint(w, `{"result":"OK"}`)
		case "DEL":
			delete(keys, key)
			fmt.Fprint(w, `{"result":1}`)
		default:
			fmt.Fprint(w, `{"error":"ERR unknown command"}`)
		}
	}))
	t.Cleanup(server.Close)
	return server, &commands
}

func TestUpstashDeliveryStoreRedisKey(t *testing.T) {
	t.Parallel()

	store := &UpstashDeliveryStore{}
	got, err := store.redisKey(" SM123 ")
	if err != nil {
		t.Fatalf("redisKey() error = %v", err)
	}
	if got != "luna:delivery:SM123" {
		t.Fatalf("redisKey() = %q, want %q", got, "luna:delivery:SM123")
	}

	_, err = store.redisKey("   ")
	if !errors.Is(err, ErrInvalidDeliveryID) {
		t.Fatalf("redisKey() error = %v, want ErrInvalidDeliveryID", err)
	}
}

func TestUpstashDeliveryStoreClaimOnce(t *testing.T) {
	t.Parallel()

	server, commands := fakeUpstash(t)
	store, err := NewUpstashDeliveryStore(
		UpstashRedisConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
		WithTTL(90*time.Minute),
	)
	if err != nil {
		t.Fatalf("NewUpstashDeliveryStore() error = %v", err)
	}

	first, err := store.Claim(context.Background(), "SM1")
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	second, err := store.Claim(context.Background(), "SM1")
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if !first || second {
		t.Fatalf("Claim() = %v, %v; want true, false", first, second)
	}

	cmd := (*commands)[0]
	want := []any{"SET", "luna:delivery:SM1", "1", "NX", "EX", float64(5400)}
	if fmt.Sprint(cmd) != fmt.Sprint(want) {
		t.Fatalf("command = %v, want %v", cmd, want)
	}

	if err := store.Release(context.Background(), "SM1"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	again, err := store.Claim(context.Background(), "SM1")
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if !again {
		t.Fatal("Claim() after Release() = false, want true")
	}
}

func TestUpstashDeliveryStoreErrors(t *testing.T) {
	t.Parallel()

	server, _ := fakeUpstash(t)
	store, err := NewUpstashDeliveryStore(
		UpstashRedisConfig{URL: server.URL, Token: "wrong"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashDeliveryStore() error = %v", err)
	}
	if _, err := store.Claim(context.Background(), "SM2"); err == nil {
		t.Fatal("Claim() error = nil, want status error")
	}
	if _, err := store.Claim(context.Background(), ""); !errors.Is(err, ErrInvalidDeliveryID) {
		t.Fatalf("Claim() error = %v, want ErrInvalidDeliveryID", err)
	}
}

func TestNewUpstashDeliveryStoreValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewUpstashDeliveryStore(UpstashRedisConfig{Token: "token"}); err == nil {
		t.Fatal("expected error for missing url")
	}
	if _, err := NewUpstashDeliveryStore(UpstashRedisConfig{URL: "https://example.upstash.io"}); err == nil {
		t.Fatal("expected error for missing token")
	}
	if _, err := NewUpstashDeliveryStore(UpstashRedisConfig{URL: "https://example.upstash.io", Token: "t"}, WithTTL(-time.Second)); err == nil {
		t.Fatal("expected error for negative ttl")
	}
	if (UpstashRedisConfig{URL: " ", Token: "t"}).Enabled() {
		t.Fatal("Enabled() = true for blank url")
	}
}

func TestTTLSeconds(t *testing.T) {
	t.Parallel()

	cases := map[time.Duration]int64{
		0:                       1,
		500 * time.Millisecond:  1,
		time.Second:             1,
		1500 * time.Millisecond: 2,
		time.Hour:               3600,
	}
	for in, want := range cases {
		if got := ttlSeconds(in); got != want {
			t.Fatalf("ttlSeconds(%v) = %d, want %d", in, got, want)
		}
	}
}
