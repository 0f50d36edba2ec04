package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajmusgrove/bookstore/internal/core/domain"
	"github.com/ajmusgrove/bookstore/internal/core/service"
	"github.com/ajmusgrove/bookstore/internal/port"
)

// Fake catalog over a slice, with the same zero/one/many semantics as the
// real adapter.
type fakeCatalog struct {
	books []domain.Book
}

func (f *fakeCatalog) FindBook(ctx context.Context, isbn string) (*domain.Book, error) {
	var matches []domain.Book
	for _, b := range f.books {
		if b.ISBN == isbn {
			matches = append(matches, b)
		}
	}
	switch len(matches) {
	case 0:
		return nil, port.ErrBookNotFound
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s matched %d rows", port.ErrDuplicateISBN, isbn, len(matches))
	}
}

func (f *fakeCatalog) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return f.books, nil
}

// Fake provider that assigns sequential session ids and lets tests flip a
// session to complete.
type fakeProvider struct {
	mu       sync.Mutex
	nextID   int
	sessions map[string]*domain.SessionStatus
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: make(map[string]*domain.SessionStatus)}
}

func (f *fakeProvider) CreateSession(ctx context.Context, item domain.LineItem, meta domain.SessionMetadata, returnURL string) (*domain.SessionHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := fmt.Sprintf("cs_test_%03d", f.nextID)
	f.sessions[id] = &domain.SessionStatus{
		SessionID: id,
		State:     domain.SessionStateOpen,
		Metadata:  meta,
	}

	return &domain.SessionHandle{SessionID: id, ClientSecret: id + "_secret"}, nil
}

func (f *fakeProvider) RetrieveSession(ctx context.Context, sessionID string) (*domain.SessionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, port.ErrNoSuchSession
	}
	snapshot := *s
	return &snapshot, nil
}

func (f *fakeProvider) complete(sessionID, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sessions[sessionID].State = domain.SessionStateComplete
	f.sessions[sessionID].CustomerEmail = email
}

// In-memory fulfillment store and a notifier that captures records.
type memStore struct {
	mu     sync.Mutex
	marked map[string]bool
}

func (m *memStore) MarkFulfilled(ctx context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.marked[sessionID] {
		return false, nil
	}
	m.marked[sessionID] = true
	return true, nil
}

type captureNotifier struct {
	mu      sync.Mutex
	records []domain.FulfillmentRecord
}

func (c *captureNotifier) Notify(ctx context.Context, rec domain.FulfillmentRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = append(c.records, rec)
	return nil
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

type fixture struct {
	handler  *HTTPHandler
	provider *fakeProvider
	notifier *captureNotifier
}

func newFixture(t *testing.T, books ...domain.Book) *fixture {
	t.Helper()

	staticDir := t.TempDir()
	shell := "<html><body><table>\n{{TABLE}}\n</table></body></html>\n"
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte(shell), 0o644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := newFakeProvider()
	notifier := &captureNotifier{}

	checkout := service.NewCheckoutService(&fakeCatalog{books: books}, provider, "usd", "https://books.example.com", logger)
	fulfillment := service.NewFulfillmentService(&memStore{marked: make(map[string]bool)}, notifier, logger)

	return &fixture{
		handler:  NewHTTPHandler(checkout, fulfillment, staticDir, logger),
		provider: provider,
		notifier: notifier,
	}
}

func orwell() domain.Book {
	return domain.Book{ISBN: "ISBN-0001", Title: "Nineteen Eighty-Four", Author: "George Orwell", PriceCents: 1999}
}

func TestFrontPage(t *testing.T) {
	fx := newFixture(t,
		orwell(),
		domain.Book{ISBN: "ISBN-0002", Title: "The Elements of Style", Author: "Strunk & White", PriceCents: 1100},
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	fx.handler.Storefront().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")

	body := rr.Body.String()
	assert.Contains(t, body, "Nineteen Eighty-Four")
	assert.Contains(t, body, "19.99")
	assert.Contains(t, body, "11.0", "the minor-unit truncation must survive rendering")
	assert.Contains(t, body, "checkout.html?isbn=ISBN-0001")
	assert.Contains(t, body, "Strunk &amp; White", "ampersands are escaped")
	assert.NotContains(t, body, "{{TABLE}}")
}

func TestFrontPage_StaticFallback(t *testing.T) {
	fx := newFixture(t, orwell())

	// The storefront handler serves everything else from the static dir.
	staticDir := fx.handler.staticDir
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "style.css"), []byte("body{}"), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/style.css", nil)
	rr := httptest.NewRecorder()
	fx.handler.Storefront().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "body{}", rr.Body.String())
}

func postCheckout(t *testing.T, fx *fixture, isbn string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader("isbn="+isbn))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	fx.handler.CreateCheckoutSession(rr, req)
	return rr
}

func TestCreateCheckoutSession_Success(t *testing.T) {
	fx := newFixture(t, orwell())

	rr := postCheckout(t, fx, "ISBN-0001")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp CreateSessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "cs_test_001_secret", resp.ClientSecret)
}

func TestCreateCheckoutSession_UnknownISBN(t *testing.T) {
	fx := newFixture(t, orwell())

	rr := postCheckout(t, fx, "UNKNOWN-ID")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, fx.provider.sessions, "no session may be created for an unknown isbn")
}

func TestCreateCheckoutSession_MissingISBN(t *testing.T) {
	fx := newFixture(t, orwell())

	rr := postCheckout(t, fx, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateCheckoutSession_MethodNotAllowed(t *testing.T) {
	fx := newFixture(t, orwell())

	req := httptest.NewRequest(http.MethodGet, "/create-checkout-session", nil)
	rr := httptest.NewRecorder()
	fx.handler.CreateCheckoutSession(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func getStatus(t *testing.T, fx *fixture, sessionID string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/session-status?session_id="+sessionID, nil)
	rr := httptest.NewRecorder()
	fx.handler.SessionStatus(rr, req)
	return rr
}

func TestSessionStatus_Lifecycle(t *testing.T) {
	fx := newFixture(t, orwell())

	rr := postCheckout(t, fx, "ISBN-0001")
	require.Equal(t, http.StatusOK, rr.Code)
	sessionID := "cs_test_001"

	// Still paying: status reported, nothing fulfilled.
	rr = getStatus(t, fx, sessionID)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp SessionStatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "open", resp.Status)
	assert.Equal(t, 0, fx.notifier.count())

	// Payment lands.
	fx.provider.complete(sessionID, "buyer@example.com")

	rr = getStatus(t, fx, sessionID)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "complete", resp.Status)
	assert.Equal(t, "buyer@example.com", resp.CustomerEmail)
	require.Equal(t, 1, fx.notifier.count())
	assert.Equal(t, "ISBN-0001", fx.notifier.records[0].ISBN)
	assert.Equal(t, "buyer@example.com", fx.notifier.records[0].CustomerEmail)

	// The customer refreshes the thank-you page: same answer, no second
	// fulfillment.
	rr = getStatus(t, fx, sessionID)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, fx.notifier.count())
}

func TestSessionStatus_UnknownSession(t *testing.T) {
	fx := newFixture(t, orwell())

	rr := getStatus(t, fx, "cs_missing")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, 0, fx.notifier.count())
}

func TestSessionStatus_MissingParam(t *testing.T) {
	fx := newFixture(t, orwell())

	req := httptest.NewRequest(http.MethodGet, "/session-status", nil)
	rr := httptest.NewRecorder()
	fx.handler.SessionStatus(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHealthCheck(t *testing.T) {
	fx := newFixture(t, orwell())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	fx.handler.HealthCheck(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
