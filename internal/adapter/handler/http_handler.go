package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ajmusgrove/bookstore/internal/core/domain"
	"github.com/ajmusgrove/bookstore/internal/core/service"
)

// tablePlaceholder is where the front page shell expects the listing rows.
const tablePlaceholder = "{{TABLE}}"

type HTTPHandler struct {
	checkout    *service.CheckoutService
	fulfillment *service.FulfillmentService
	staticDir   string
	logger      *slog.Logger
}

type CreateSessionResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type SessionStatusResponse struct {
	Status        string `json:"status"`
	CustomerEmail string `json:"customer_email"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(checkout *service.CheckoutService, fulfillment *service.FulfillmentService, staticDir string, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{
		checkout:    checkout,
		fulfillment: fulfillment,
		staticDir:   staticDir,
		logger:      logger,
	}
}

// Storefront serves the rendered front page at / and /index.html and falls
// back to static files for everything else under the root.
func (h *HTTPHandler) Storefront() http.Handler {
	fs := http.FileServer(http.Dir(h.staticDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || r.URL.Path == "/index.html" {
			h.frontPage(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

func (h *HTTPHandler) frontPage(w http.ResponseWriter, r *http.Request) {
	books, err := h.checkout.ListBooks(r.Context())
	if err != nil {
		h.logger.Error("list books", "error", err)
		http.Error(w, "catalog unavailable", http.StatusInternalServerError)
		return
	}

	page, err := os.ReadFile(filepath.Join(h.staticDir, "index.html"))
	if err != nil {
		h.logger.Error("read front page shell", "error", err)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(prepareHTML(string(page), bookTable(books)))
}

func (h *HTTPHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	isbn := r.FormValue("isbn")
	if isbn == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing isbn"})
		return
	}

	handle, err := h.checkout.CreateSession(r.Context(), isbn)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "unknown isbn"})
			return
		}
		h.logger.Error("create checkout session", "isbn", isbn, "error", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "checkout unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, CreateSessionResponse{ClientSecret: handle.ClientSecret})
}

func (h *HTTPHandler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing session_id"})
		return
	}

	status, err := h.checkout.GetStatus(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "unknown session"})
			return
		}
		h.logger.Error("session status", "session_id", sessionID, "error", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "status unavailable"})
		return
	}

	// The status page doubles as the fulfillment trigger. A dispatch
	// failure must not hide the payment status from the customer.
	if _, err := h.fulfillment.MaybeFulfill(r.Context(), status); err != nil {
		h.logger.Error("fulfillment dispatch", "session_id", sessionID, "error", err)
	}

	writeJSON(w, http.StatusOK, SessionStatusResponse{
		Status:        status.State.String(),
		CustomerEmail: status.CustomerEmail,
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func bookTable(books []domain.Book) string {
	var sb strings.Builder
	for _, b := range books {
		fmt.Fprintf(&sb, `
      <tr>
        <td>%s</td>
        <td>%s</td>
        <td>%s</td>
        <td>
            <a href="checkout.html?isbn=%s">Buy</a>
        </td>
      </tr>
`, b.Title, b.Author, b.DisplayPrice(), b.ISBN)
	}
	return sb.String()
}

// prepareHTML substitutes the listing into the page shell. Only ampersands
// are escaped; titles and authors are trusted catalog content.
func prepareHTML(page, table string) []byte {
	table = strings.ReplaceAll(table, "&", "&amp;")
	return []byte(strings.Replace(page, tablePlaceholder, table, 1))
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
