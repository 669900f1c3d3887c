package api

import "github.com/gin-gonic/gin"

// NewRouter builds the gin engine with the default request logger and
// recovery, CORS, the websocket endpoint and the operator API under /api.
func NewRouter(contacts *ContactHandler, broadcast *BroadcastHandler, ws gin.HandlerFunc) *gin.Engine {
	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	if ws != nil {
		r.GET("/ws", ws)
	}
	RegisterRoutes(r.Group("/api"), contacts, broadcast)
	return r
}

// RegisterRoutes mounts the operator API under g.
func RegisterRoutes(g *gin.RouterGroup, contacts *ContactHandler, broadcast *BroadcastHandler) {
	// Contact batch
	g.GET("/contacts", contacts.GetContacts)
	g.POST("/contacts/refresh", contacts.RefreshContacts)
	g.POST("/contacts/import", contacts.ImportContacts)
	g.GET("/contacts/export", contacts.ExportContacts)

	// Selection
	g.POST("/selection/all", contacts.SelectAll)
	g.POST("/selection/clear", contacts.ClearSelection)
	g.POST("/selection/toggle", contacts.ToggleSelection)

	// Composer
	g.GET("/template", broadcast.GetTemplate)
	g.PUT("/template", broadcast.SetTemplate)
	g.GET("/preview", broadcast.Preview)
	g.PUT("/attachment", broadcast.SetAttachment)
	g.DELETE("/attachment", broadcast.ClearAttachment)

	// Dispatch
	g.POST("/dispatch", broadcast.StartDispatch)
	g.POST("/dispatch/cancel", broadcast.CancelDispatch)
	g.GET("/dispatch/status", broadcast.DispatchStatus)
}
