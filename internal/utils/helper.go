package utils

import (
	"strconv"
)

// ToUint parses a positive decimal id.
func ToUint(id string) (uint, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	return uint(n), err
}
