package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eventhub/middlewares"
)

/* --------------------- Views -------------------- */

// GET /views/home
func (d *deps) home(c *gin.Context) {
	limit := d.PreviewLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	h, err := d.Views.Home(c.Request.Context(), limit)
	if err != nil {
		d.fail(c, err, "home view")
		return
	}
	c.JSON(http.StatusOK, h)
}

// GET /views/events/:id
func (d *deps) eventDetail(c *gin.Context) {
	v, err := d.Views.EventDetail(c.Request.Context(), c.Param("id"), middlewares.Viewer(c))
	if err != nil {
		d.fail(c, err, "event view")
		return
	}
	c.JSON(http.StatusOK, v)
}

// GET /views/dashboard. RequireSession has already redirected anonymous
// visitors.
func (d *deps) dashboard(c *gin.Context) {
	v, err := d.Views.Dashboard(c.Request.Context(), *middlewares.Viewer(c))
	if err != nil {
		d.fail(c, err, "dashboard view")
		return
	}
	c.JSON(http.StatusOK, v)
}
