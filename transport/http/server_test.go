package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/tanpawarit/luna-hotel-concierge/agent/agents/orchestrator"
	"github.com/tanpawarit/luna-hotel-concierge/reminder"
)

type fakeConversation struct {
	mu    sync.Mutex
	calls []orchestrator.Inbound
	reply orchestrator.Reply
	err   error
}

func (f *fakeConversation) HandleInbound(ctx context.Context, in orchestrator.Inbound) (orchestrator.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, in)
	return f.reply, f.err
}

type fakeReminders struct {
	result reminder.Result
	err    error
	runs   int
}

func (f *fakeReminders) Run(ctx context.Context) (reminder.Result, error) {
	f.runs++
	return f.result, f.err
}

type fakeVerifier struct {
	gotSignature   string
	gotBody        string
	gotDestination string
	err            error
}

func (f *fakeVerifier) Verify(signature string, body []byte, destination string) error {
	f.gotSignature = signature
	f.gotBody = string(body)
	f.gotDestination = destination
	return f.err
}

func testConfig() Config {
	return Config{MaxBodyBytes: 1 << 20, RateLimit: 1, RateBurst: 5}
}

func newTestRouter(conv *fakeConversation, rem *fakeReminders, cfg Config, opts ...Option) http.Handler {
	return NewRouter(NewHandler(conv, rem, "https://hotel.example.com/", opts...), NewMiddleware(), cfg)
}

func postForm(router http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookFormReturnsTwiML(t *testing.T) {
	req := require.New(t)
	conv := &fakeConversation{reply: orchestrator.Reply{Text: "Suite <Mar> & Sol available"}}
	router := newTestRouter(conv, &fakeReminders{}, testConfig())

	w := postForm(router, url.Values{
		"From":       {"whatsapp:+15551234567"},
		"Body":       {"Do you have a suite available Jan 22-25?"},
		"MessageSid": {"SM1"},
	})

	req.Equal(http.StatusOK, w.Code)
	req.True(strings.HasPrefix(w.Header().Get("Content-Type"), "text/xml"))
	req.Equal("<Response><Message>Suite &lt;Mar&gt; &amp; Sol available</Message></Response>", w.Body.String())
	req.Len(conv.calls, 1)
	req.Equal(orchestrator.Inbound{
		From:       "whatsapp:+15551234567",
		Body:       "Do you have a suite available Jan 22-25?",
		DeliveryID: "SM1",
	}, conv.calls[0])
}

func TestWebhookJSON(t *testing.T) {
	req := require.New(t)
	conv := &fakeConversation{reply: orchestrator.Reply{Text: "Hola"}}
	router := newTestRouter(conv, &fakeReminders{}, testConfig())

	r := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader(`{"From":"+15551234567","Body":"hola"}`))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	req.Equal(http.StatusOK, w.Code)
	req.Equal("<Response><Message>Hola</Message></Response>", w.Body.String())
	req.Equal("hola", conv.calls[0].Body)
}

func TestWebhookRejectsMissingFields(t *testing.T) {
	req := require.New(t)
	conv := &fakeConversation{}
	router := newTestRouter(conv, &fakeReminders{}, testConfig())

	for _, values := range []url.Values{
		{"Body": {"hi"}},
		{"From": {"+15551234567"}},
		{"From": {"+15551234567"}, "Body": {"   "}},
		{},
	} {
		w := postForm(router, values)
		req.Equal(http.StatusBadRequest, w.Code)
		req.Equal("Missing From or Body", w.Body.String())
	}

	r := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader(""))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	req.Equal(http.StatusBadRequest, w.Code)

	req.Empty(conv.calls)
}

func TestWebhookValidationErrorFromPipeline(t *testing.T) {
	req := require.New(t)
	conv := &fakeConversation{err: orchestrator.ErrMissingSender}
	router := newTestRouter(conv, &fakeReminders{}, testConfig())

	w := postForm(router, url.Values{"From": {"x"}, "Body": {"hi"}})
	req.Equal(http.StatusBadRequest, w.Code)

	conv.err = errors.New("unexpected")
	w = postForm(router, url.Values{"From": {"+15551234567"}, "Body": {"hi"}})
	req.Equal(http.StatusInternalServerError, w.Code)
}

func TestWebhookDuplicateGetsEmptyEnvelope(t *testing.T) {
	req := require.New(t)
	conv := &fakeConversation{reply: orchestrator.Reply{Duplicate: true}}
	router := newTestRouter(conv, &fakeReminders{}, testConfig())

	w := postForm(router, url.Values{"From": {"+15551234567"}, "Body": {"hi"}, "MessageSid": {"SM1"}})
	req.Equal(http.StatusOK, w.Code)
	req.Equal("<Response/>", w.Body.String())
}

func TestWebhookRateLimitPerSender(t *testing.T) {
	req := require.New(t)
	conv := &fakeConversation{reply: orchestrator.Reply{Text: "ok"}}
	cfg := testConfig()
	cfg.RateLimit = 0.001
	cfg.RateBurst = 2
	router := newTestRouter(conv, &fakeReminders{}, cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, postForm(router, url.Values{"From": {"whatsapp:+15550000001"}, "Body": {"hi"}}).Code)
	}
	req.Equal([]int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// same number written differently shares the bucket
	req.Equal(http.StatusTooManyRequests, postForm(router, url.Values{"From": {"+1 555 000 0001"}, "Body": {"hi"}}).Code)
	// other senders are unaffected
	req.Equal(http.StatusOK, postForm(router, url.Values{"From": {"+15550000002"}, "Body": {"hi"}}).Code)
	req.Len(conv.calls, 3)
}

func TestAllowSenderEvictsIdleEntries(t *testing.T) {
	req := require.New(t)
	m := NewMiddleware()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	allow := m.AllowSender(rate.Limit(1), 1)

	for i := 0; i < maxTrackedSenders; i++ {
		req.True(allow(fmt.Sprintf("sender-%d", i)))
	}
	now = now.Add(senderIdleAfter + time.Minute)
	req.True(allow("fresh"))
	req.Len(m.limiters, 1)
}

func TestSendReminders(t *testing.T) {
	req := require.New(t)
	rem := &fakeReminders{result: reminder.Result{Due: 2, Sent: 2}}
	router := newTestRouter(&fakeConversation{}, rem, testConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tasks/reminders", nil))
	req.Equal(http.StatusOK, w.Code)
	req.Equal("Sent 2 reminders", w.Body.String())

	rem.result = reminder.Result{}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/reminders", nil))
	req.Equal("No reminders to send", w.Body.String())

	rem.err = errors.New("db down")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tasks/reminders", nil))
	req.Equal(http.StatusInternalServerError, w.Code)
	req.Equal(3, rem.runs)
}

func TestSendRemindersVerifiesSignature(t *testing.T) {
	req := require.New(t)
	rem := &fakeReminders{result: reminder.Result{Due: 1, Sent: 1}}
	verifier := &fakeVerifier{}
	router := newTestRouter(&fakeConversation{}, rem, testConfig(), WithSignatureVerifier(verifier))

	r := httptest.NewRequest(http.MethodPost, "/tasks/reminders", strings.NewReader(`{"cron":"daily"}`))
	r.Header.Set("Upstash-Signature", "sig")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	req.Equal(http.StatusOK, w.Code)
	req.Equal("sig", verifier.gotSignature)
	req.Equal(`{"cron":"daily"}`, verifier.gotBody)
	req.Equal("https://hotel.example.com/tasks/reminders", verifier.gotDestination)

	verifier.err = errors.New("bad signature")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tasks/reminders", nil))
	req.Equal(http.StatusUnauthorized, w.Code)
	req.Equal(1, rem.runs)
}

func TestHealth(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(&fakeConversation{}, &fakeReminders{}, testConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`{"status":"ok"}`, w.Body.String())
}
