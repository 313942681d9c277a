package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	orderTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderTokenLength   = 9
)

// GenerateOrderNumber returns ORD-<epoch-ms>-<9 upper-case alphanumerics>.
func GenerateOrderNumber() string {
	return generateOrderNumber(time.Now())
}

func generateOrderNumber(now time.Time) string {
	token := make([]byte, orderTokenLength)
	max := big.NewInt(int64(len(orderTokenAlphabet)))

	for i := range token {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// fallback: time-based entropy
			n = big.NewInt((now.UnixNano() + int64(i)*7919) % int64(len(orderTokenAlphabet)))
		}
		token[i] = orderTokenAlphabet[n.Int64()]
	}

	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), token)
}
