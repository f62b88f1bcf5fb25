package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/firasabed78/culinary--academy/pkg/metrics"
)

// Metrics HTTP 请求指标中间件
// 以路由模板（而非原始路径）为 label，避免高基数
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
