package utils

import (
	"fmt"

	"github.com/twmb/murmur3"
)

// Hash returns a short, stable correlation id for data.
// It lets operators match a forwarded group with upstream logs without logging the groupKey itself.
func Hash(data string) string {
	return fmt.Sprintf("%016x", murmur3.Sum64([]byte(data)))
}
