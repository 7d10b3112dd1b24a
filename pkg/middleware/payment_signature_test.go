package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

func TestPaymentSignature(t *testing.T) {
	const secret = "whsec_test"
	body := `{"payment_id":"p1","user_id":"u1","booking_ids":["b1"]}`

	reached := false
	h := PaymentSignature(secret, testLogger(), func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		reached = true
		w.WriteHeader(http.StatusAccepted)
	})

	tests := []struct {
		name      string
		signature string
		want      int
	}{
		{"valid with prefix", "sha256=" + Sign([]byte(body), secret), http.StatusAccepted},
		{"valid bare", Sign([]byte(body), secret), http.StatusAccepted},
		{"missing", "", http.StatusUnauthorized},
		{"tampered", "sha256=" + Sign([]byte(body+" "), secret), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(body))
			if tt.signature != "" {
				req.Header.Set(PaymentSignatureHeader, tt.signature)
			}
			rec := httptest.NewRecorder()
			h(rec, req, nil)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
			if reached != (tt.want == http.StatusAccepted) {
				t.Errorf("handler reached = %v", reached)
			}
		})
	}
}
