package router

import (
	"fmt"
	"strings"

	handlershared "github.com/orderflow-next/internal/http/handlers/shared"
	"github.com/orderflow-next/internal/http/response"
	"github.com/orderflow-next/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
// BlockSeconds > 0 时超限后封禁该 key 一段时间。
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	BlockSeconds  int
	Message       string
}

// 返回 {count, ttl}；count 为 -1 表示处于封禁期
var rateLimitScript = redis.NewScript(`
local blocked = redis.call("TTL", KEYS[2])
if blocked > 0 then
	return {-1, blocked}
end
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local block = tonumber(ARGV[3])
if current > tonumber(ARGV[2]) and block > 0 then
	redis.call("SET", KEYS[2], 1, "EX", block)
	return {current, block}
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware Redis 频率限制中间件
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key, key + ":block"}, rule.WindowSeconds, rule.MaxRequests, rule.BlockSeconds).Result()
		if err != nil {
			logger.Warnw("rate_limit_script_failed", "key", key, "error", err)
			response.Error(c, response.CodeInternal, "rate_limit_unavailable")
			c.Abort()
			return
		}

		allowed, retryAfter, ok := evaluateRateLimit(result, rule)
		if !ok {
			logger.Warnw("rate_limit_script_unexpected_result", "key", key, "result", result)
			response.Error(c, response.CodeInternal, "rate_limit_unavailable")
			c.Abort()
			return
		}
		if !allowed {
			msg := strings.TrimSpace(rule.Message)
			if msg == "" {
				msg = "rate_limited"
			}
			response.ErrorWithData(c, response.CodeTooManyRequests, msg, gin.H{"retry_after_seconds": retryAfter})
			c.Abort()
			return
		}

		c.Next()
	}
}

// evaluateRateLimit 解析脚本返回的 {count, ttl}
// count 为 -1（封禁期）或超过上限时拒绝，retryAfter 至少为 1 秒。
func evaluateRateLimit(result interface{}, rule RateLimitRule) (allowed bool, retryAfter int, ok bool) {
	values, isSlice := result.([]interface{})
	if !isSlice || len(values) < 2 {
		return false, 0, false
	}
	count, isInt := toInt64(values[0])
	if !isInt {
		return false, 0, false
	}
	if count >= 0 && count <= int64(rule.MaxRequests) {
		return true, 0, true
	}
	ttl, _ := toInt64(values[1])
	retryAfter = int(ttl)
	if retryAfter < 1 {
		retryAfter = rule.WindowSeconds
	}
	if retryAfter < 1 {
		retryAfter = 1
	}
	return false, retryAfter, true
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByActor 使用门店 + 操作者作为限流 key，未鉴权时回退到 IP
func KeyByActor(c *gin.Context) string {
	actorID, ok := c.Get(handlershared.ContextActorID)
	if !ok {
		return c.ClientIP()
	}
	storeID, _ := c.Get(handlershared.ContextStoreID)
	return fmt.Sprintf("%v|%v", storeID, actorID)
}

// go-redis 将 Lua 整数返回为 int64
func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
