package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"EduPaySettlement/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkWSOrigin,
}

// checkWSOrigin enforces origin policy for upgrades; CORS preflight does not
// apply to WebSocket handshakes. Browser connections must come from the
// platform's own host. Non-browser clients send no Origin and pass.
func checkWSOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

type wsMessage struct {
	Type    string                `json:"type"`
	Attempt *models.AttemptRecord `json:"attempt,omitempty"`
	Result  *models.PaymentResult `json:"result,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// SubmitPaymentWS streams the cascade to the UI: the client sends one submit
// request, the server pushes each attempt as it completes and the final
// result last. The cascade runs synchronously in this handler, so writes
// never interleave.
func (h *Handler) SubmitPaymentWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var req submitPaymentRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(wsMessage{Type: "error", Error: "invalid submit request"})
		return
	}

	progress := func(rec models.AttemptRecord) {
		if err := conn.WriteJSON(wsMessage{Type: "attempt", Attempt: &rec}); err != nil {
			h.Logger.Debug("ws progress write failed", zap.Error(err))
		}
	}

	result, err := h.Payments.SubmitPayment(r.Context(), req.toService(), progress)
	if err != nil && result == nil {
		_ = conn.WriteJSON(wsMessage{Type: "error", Error: err.Error()})
		return
	}
	_ = conn.WriteJSON(wsMessage{Type: "result", Result: result})
}
