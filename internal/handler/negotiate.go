package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// wantsCSV reports whether the request prefers text/csv for a list
// response. JSON wins whenever it is acceptable, including wildcard or
// absent Accept headers.
func wantsCSV(c *gin.Context) bool {
	accept := strings.Join(c.Request.Header.Values("Accept"), ",")
	return strings.Contains(accept, "text/csv") && !strings.Contains(accept, "application/json")
}

func csvTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// csvNullableTimestamp renders a nil timestamp as an empty cell.
func csvNullableTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return csvTimestamp(*t)
}
