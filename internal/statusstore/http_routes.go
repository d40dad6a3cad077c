package statusstore

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taoyao-code/mcp-status/internal/healthpoll"
)

// statusView /status 响应体
type statusView struct {
	healthpoll.Status
	State         healthpoll.State `json:"state"`
	TransportMode string           `json:"transport_mode"`
	APIURL        string           `json:"api_url"`
}

// RegisterRoutes 注册 GET /status
func RegisterRoutes(r gin.IRouter, store Store) {
	r.GET("/status", func(c *gin.Context) {
		st, err := store.Load(c.Request.Context())
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"state": healthpoll.StateUnknown, "error": "no health snapshot yet"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, statusView{
			Status:        st,
			State:         st.State(),
			TransportMode: st.Diagnostic(healthpoll.DiagTransportMode),
			APIURL:        st.Diagnostic(healthpoll.DiagAPIURL),
		})
	})
}
