package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OperatorHeader carries the identity resolved by the authentication proxy.
const OperatorHeader = "X-Operator"

const operatorKey = "operator"

// RequireOperator aborts with 401 when the request names no operator.
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		op := strings.TrimSpace(c.GetHeader(OperatorHeader))
		if op == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + OperatorHeader + " header"})
			return
		}
		c.Set(operatorKey, op)
		c.Next()
	}
}

// Operator returns the operator stored by RequireOperator.
func Operator(c *gin.Context) string {
	return c.GetString(operatorKey)
}
