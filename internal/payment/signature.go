package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

const (
	SignatureHeader         = "Stripe-Signature"
	DefaultWebhookTolerance = 5 * time.Minute
)

func computeSignature(secret string, ts int64, payload []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

// SignPayload builds a signature header value for payload at ts, in the
// provider's "t=<unix>,v1=<hex>" format.
func SignPayload(secret string, ts time.Time, payload []byte) string {
	unix := ts.Unix()
	return "t=" + strconv.FormatInt(unix, 10) + ",v1=" + hex.EncodeToString(computeSignature(secret, unix, payload))
}

// verifySignature accepts the header when any v1 entry matches and the
// timestamp is within tolerance of now.
func verifySignature(header string, payload []byte, secret string, now time.Time, tolerance time.Duration) error {
	if secret == "" {
		return ErrNoWebhookSecret
	}

	var (
		ts     int64
		hasTS  bool
		hashes [][]byte
	)
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			ts, hasTS = parsed, true
		case "v1":
			sig, err := hex.DecodeString(value)
			if err != nil {
				continue
			}
			hashes = append(hashes, sig)
		}
	}

	if !hasTS || len(hashes) == 0 {
		return ErrInvalidSignature
	}

	expected := computeSignature(secret, ts, payload)
	matched := false
	for _, sig := range hashes {
		if hmac.Equal(expected, sig) {
			matched = true
			break
		}
	}
	if !matched {
		return ErrInvalidSignature
	}

	if tolerance > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > tolerance || age < -tolerance {
			return ErrSignatureExpired
		}
	}
	return nil
}
