package common

import (
	"fmt"
	"strings"
	"time"
)

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// JoinNonEmpty joins the non-blank values with sep.
func JoinNonEmpty(sep string, values ...*string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		if s := strings.TrimSpace(*v); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}
