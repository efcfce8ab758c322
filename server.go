package main

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const (
	statsRecentRounds = 10
	statsEventDays    = 7
	qrSize            = 256
)

// Server bundles the HTTP surface: websocket entry, stats, operator routes
type Server struct {
	cfg      Config
	game     *Game
	hub      *Hub
	stats    *Analytics
	admin    *Admin
	upgrader websocket.Upgrader
}

// NewServer wires the handlers. stats and admin may be nil.
func NewServer(cfg Config, game *Game, hub *Hub, stats *Analytics, admin *Admin) *Server {
	s := &Server{cfg: cfg, game: game, hub: hub, stats: stats, admin: admin}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.cfg.AllowAnyOrigin() {
		return true // Non-browser clients don't send Origin
	}
	return slices.Contains(s.cfg.Origins, origin)
}

// Router builds the gin engine
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if s.cfg.AllowAnyOrigin() {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.cfg.Origins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "healthy") })
	r.GET("/ws", s.handleWS)
	r.GET("/api/stats", s.handleStats)
	r.GET("/qr.png", s.handleQR)

	if s.admin != nil {
		admin := r.Group("/api/admin", s.admin.Middleware())
		admin.GET("/status", s.handleAdminStatus)
		admin.POST("/reset", s.handleAdminReset)
	}

	// Serve static files with no-cache so browsers always revalidate
	files := http.FileServer(http.Dir(s.cfg.ClientDir))
	r.NoRoute(func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache")
		files.ServeHTTP(c.Writer, c.Request)
	})
	return r
}

func (s *Server) handleWS(c *gin.Context) {
	ip := c.RemoteIP()
	if !s.hub.CanAccept(ip) {
		log.Warn().Str("remote", ip).Msg("connection refused: too many connections")
		c.String(http.StatusServiceUnavailable, "too many connections")
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", ip).Msg("upgrade error")
		return
	}

	client := NewClient(s.hub, conn, ip, CodecByName(c.Query("codec")))
	go client.WritePump()
	if err := s.hub.Admit(client); err != nil {
		client.Close()
		return
	}
	go client.ReadPump()
}

func (s *Server) handleStats(c *gin.Context) {
	rounds, err := s.stats.RecentRounds(statsRecentRounds)
	if err != nil {
		log.Error().Err(err).Msg("stats: recent rounds")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	events, err := s.stats.EventCounts(statsEventDays)
	if err != nil {
		log.Error().Err(err).Msg("stats: event counts")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rounds": rounds, "events": events})
}

func (s *Server) handleQR(c *gin.Context) {
	target := s.cfg.PublicURL
	if target == "" {
		target = "http://" + c.Request.Host + "/"
	}
	png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
	if err != nil {
		log.Error().Err(err).Str("url", target).Msg("qr encode failed")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) handleAdminStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.status())
}

// status adds the hub's socket count, which the game does not track
func (s *Server) status() StatusMsg {
	st := s.game.Status()
	st.Connections = s.hub.TotalConns()
	return st
}

func (s *Server) handleAdminReset(c *gin.Context) {
	if !s.game.ForceReset() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "game-stopped"})
		return
	}
	log.Info().Str("remote", c.RemoteIP()).Msg("operator reset")
	c.JSON(http.StatusOK, s.status())
}

// requestLogger logs HTTP requests through zerolog at debug level
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Str("remote", c.RemoteIP()).
			Msg("http")
	}
}
