package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"eventhub/utils"
)

type QuotaRule struct {
	Limit  int
	Window time.Duration
	KeyFn  func(*gin.Context) string
}

// Quota counts requests per key in a fixed Redis window. If Redis is down
// the request is let through.
func Quota(rdb *redis.Client, rule QuotaRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rule.KeyFn(c)
		if key == "" || rule.Limit <= 0 {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		n, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if n == 1 {
			_ = rdb.Expire(ctx, key, rule.Window).Err()
		}
		if int(n) > rule.Limit {
			utils.Abort(c, http.StatusTooManyRequests, utils.Notification{
				Kind: utils.KindNetwork, Title: "Slow down", Message: "Usage quota exceeded. Please try again later.",
			})
			return
		}
		c.Header("X-Quota-Used", fmt.Sprintf("%d/%d", n, rule.Limit))
		c.Next()
	}
}

// DailyUserQuota keys the quota on the authenticated user.
func DailyUserQuota(rdb *redis.Client, limit int) gin.HandlerFunc {
	return Quota(rdb, QuotaRule{
		Limit:  limit,
		Window: 24 * time.Hour,
		KeyFn: func(c *gin.Context) string {
			uid := UserID(c)
			if uid == "" {
				return ""
			}
			return "quota:user:" + uid + ":day"
		},
	})
}
