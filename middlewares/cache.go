package middlewares

import (
	"bytes"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"eventhub/utils"
)

type cachedBody struct {
	Status int
	Header map[string][]string
	Body   []byte
}

// hash the query so list keys stay short
func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// CacheKeyFrom maps a public catalog GET to its Redis key. Item keys keep
// the raw id so a write can purge exactly one of them. Anything else is
// not cached.
func CacheKeyFrom(c *gin.Context) string {
	if c.Request.Method != "GET" {
		return ""
	}
	path := c.FullPath()
	switch {
	case path == "/events/:id":
		return utils.EventsItemPrefix + c.Param("id")
	case path == "/events":
		return utils.EventsListPrefix + sha1Hex(c.Request.URL.RawQuery)
	}
	return ""
}

// ResponseCache serves 2xx catalog responses from Redis for ttl. A Redis
// outage degrades to uncached responses.
func ResponseCache(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := CacheKeyFrom(c)
		if key == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		if b, err := rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
			var hit cachedBody
			if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&hit); err == nil {
				for k, vals := range hit.Header {
					for _, v := range vals {
						c.Writer.Header().Add(k, v)
					}
				}
				c.Writer.Header().Set("X-Cache", "HIT")
				c.Status(hit.Status)
				_, _ = c.Writer.Write(hit.Body)
				c.Abort()
				return
			}
		}

		buf := &bytes.Buffer{}
		bw := &bufferedWriter{ResponseWriter: c.Writer, buf: buf}
		c.Writer = bw
		c.Writer.Header().Set("X-Cache", "MISS")

		c.Next()

		if bw.Status() >= 200 && bw.Status() < 300 {
			item := cachedBody{
				Status: bw.Status(),
				Header: c.Writer.Header().Clone(),
				Body:   buf.Bytes(),
			}
			delete(item.Header, "X-Cache")

			var o bytes.Buffer
			if err := gob.NewEncoder(&o).Encode(item); err == nil {
				_ = rdb.Set(ctx, key, o.Bytes(), ttl).Err()
			}
		}
	}
}

type bufferedWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}
