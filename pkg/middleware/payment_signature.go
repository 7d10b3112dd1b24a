package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"crafthub/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const PaymentSignatureHeader = "X-Payment-Signature"

// PaymentSignature guards the payment webhook: the body must carry an
// HMAC-SHA256 of itself keyed with the shared webhook secret.
func PaymentSignature(secret string, log *logger.Logger, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		signature := extractSignature(r)

		if signature == "" {
			logAndReject(w, log, r, "Missing "+PaymentSignatureHeader+" header")
			return
		}

		body, err := readAndRestoreBody(r)
		if err != nil {
			logAndReject(w, log, r, "Failed to read request body")
			return
		}

		if !VerifySignature(body, signature, secret) {
			logAndReject(w, log, r, "Invalid webhook signature")
			return
		}

		next(w, r, ps)
	}
}

func extractSignature(r *http.Request) string {
	header := r.Header.Get(PaymentSignatureHeader)
	if header == "" {
		return ""
	}

	signature, found := strings.CutPrefix(header, "sha256=")
	if found {
		return signature
	}

	return header
}

func readAndRestoreBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	return body, nil
}

func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifySignature(body []byte, receivedSignature string, secret string) bool {
	return hmac.Equal([]byte(Sign(body, secret)), []byte(receivedSignature))
}

func logAndReject(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Payment webhook verification failed",
		"request_id", requestIDFrom(r),
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized","code":"UNAUTHORIZED"}`))
}
