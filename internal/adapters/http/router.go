package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/dkeye/Support/internal/adapters/auth"
	"github.com/dkeye/Support/internal/adapters/signal"
	"github.com/dkeye/Support/internal/app"
	"github.com/dkeye/Support/internal/app/orch"
	"github.com/dkeye/Support/internal/config"
	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	clientTokenKey = "client_token"
	identityKey    = "identity"
)

// ClientTokenMiddleware pins a random token to the browser session so the
// logs of one client can be correlated across reconnects.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		token, _ := sess.Get(clientTokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			sess.Set(clientTokenKey, token)
			if err := sess.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

// StaffAuth admits only requests carrying a valid staff credential.
func StaffAuth(resolver app.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, class := resolver.Resolve(auth.TokenFromRequest(c.Request), core.ConnID("http_"+uuid.NewString()))
		if class != app.Authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !ident.Role.IsStaff() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": domain.ErrForbidden.Error()})
			return
		}
		c.Set(identityKey, ident)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, ctrl *signal.SignalWSController) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("SupportSessions", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": o.Registry.Count()})
	})

	api := r.Group("/api")

	api.GET("/ws/support", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString(clientTokenKey)).Msg("ws support endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	admin := api.Group("/admin", StaffAuth(o.Resolver))
	admin.GET("/connections", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"connections": o.Registry.List()})
	})
	admin.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": o.Rooms.Rooms()})
	})
	admin.GET("/rooms/:roomId/connections", func(c *gin.Context) {
		room := domain.RoomID(c.Param("roomId"))
		out := make([]core.ConnectionInfo, 0)
		for _, uid := range o.Rooms.Members(room) {
			if conn, ok := o.Registry.Lookup(uid); ok {
				out = append(out, conn.Info())
			}
		}
		c.JSON(http.StatusOK, gin.H{"roomId": room, "connections": out})
	})
	admin.POST("/status", func(c *gin.Context) {
		var upd domain.StatusUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
			return
		}
		actor := c.MustGet(identityKey).(domain.Identity)
		ent, err := o.ApplyStatusUpdate(c.Request.Context(), actor, upd)
		if err != nil {
			c.JSON(statusCode(err), gin.H{"error": errorText(err)})
			return
		}
		c.JSON(http.StatusOK, ent)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrEntityNotFound):
		return http.StatusNotFound
	case domain.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorText(err error) string {
	if domain.IsClientError(err) {
		return err.Error()
	}
	return "Failed to update status"
}
