package control

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/gin-gonic/gin"
)

const DefaultAddr = "127.0.0.1:8089"

// Server is the HTTP face of the mailbox. POST /api/menu publishes a record,
// GET /api/menu returns the current one.
type Server struct {
	addr   string
	box    *Mailbox
	router *gin.Engine
	log    *logger.Logger
}

func NewServer(addr string, box *Mailbox) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		addr:   addr,
		box:    box,
		router: gin.New(),
		log:    logger.NewLogger(coloransi.Color(coloransi.Cyan, coloransi.Black, "control")),
	}
	s.router.Use(gin.Recovery())
	s.router.POST("/api/menu", s.postMenu)
	s.router.GET("/api/menu", s.getMenu)
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Resource not found"})
	})
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) postMenu(c *gin.Context) {
	var p Params
	if err := c.ShouldBindJSON(&p); err != nil {
		s.log.Warn("rejected menu record:", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.box.Publish(p)
	s.log.Debugln("menu record published", fmt.Sprintf("%+v", p))
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully"})
}

func (s *Server) getMenu(c *gin.Context) {
	p, ok := s.box.Latest()
	if !ok {
		p = Defaults()
	}
	c.JSON(http.StatusOK, p)
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infoln("control listening on", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("control server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("control server shutdown: %w", err)
		}
		return nil
	}
}
