package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/store"
	"github.com/oshokin/alarm-clock/internal/version"
)

// Commands are the alarm operations reachable over HTTP.
type Commands interface {
	Dismiss(id int) error
	Snooze(id int) error
	SnoozeTo(id int, at alarm.ClockTime) error
	Sync(ctx context.Context, id int) error
}

// Handler wires the HTTP layer to the store and the alarm manager.
type Handler struct {
	// store serves reads and subscriptions.
	store *store.Store
	// commands handle the ringing alarm.
	commands Commands
	// hub streams actions to WebSocket clients.
	hub *Hub
	// prefs format clock times.
	prefs PrefsSource
	// gatherer backs /metrics. Nil disables the endpoint.
	gatherer prometheus.Gatherer
	// base is the daemon context used for logging.
	base context.Context //nolint:containedctx // Logger carrier for request handlers.
}

// NewHandler constructs the HTTP handler.
func NewHandler(
	ctx context.Context,
	st *store.Store,
	commands Commands,
	hub *Hub,
	prefs PrefsSource,
	gatherer prometheus.Gatherer,
) *Handler {
	return &Handler{
		store:    st,
		commands: commands,
		hub:      hub,
		prefs:    prefs,
		gatherer: gatherer,
		base:     logger.WithName(ctx, "http"),
	}
}

// InitRoutes builds the gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	router.GET("/healthz", h.health)

	if h.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	{
		api.GET("/alarms", h.listAlarms)
		api.GET("/alarms/:id", h.getAlarm)
		api.POST("/alarms/:id/dismiss", h.dismissAlarm)
		api.POST("/alarms/:id/snooze", h.snoozeAlarm)
		api.GET("/next", h.getNext)
	}

	router.GET("/ws", h.wsConnect)

	return router
}

// requestLogger logs every request through the daemon logger.
func (h *Handler) requestLogger(c *gin.Context) {
	started := time.Now()

	c.Next()

	logger.DebugKV(h.base, "HTTP request handled",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"duration", time.Since(started),
	)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.Short(),
		"alarms":  h.store.Alarms().Len(),
	})
}

func (h *Handler) listAlarms(c *gin.Context) {
	c.JSON(http.StatusOK, toListJSON(h.store.Alarms(), h.prefs.Prefs()))
}

func (h *Handler) getAlarm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	v, found := h.store.Get(id)
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "alarm not found"})

		return
	}

	c.JSON(http.StatusOK, toAlarmJSON(v, h.prefs.Prefs()))
}

func (h *Handler) dismissAlarm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	h.respond(c, id, h.commands.Dismiss(id))
}

// snoozeRequest is the optional body of the snooze endpoint.
type snoozeRequest struct {
	// Time is HH:MM; empty uses the configured snooze duration.
	Time string `json:"time"`
}

func (h *Handler) snoozeAlarm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req snoozeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})

			return
		}
	}

	if req.Time == "" {
		h.respond(c, id, h.commands.Snooze(id))

		return
	}

	at, err := alarm.ParseClockTime(req.Time)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	h.respond(c, id, h.commands.SnoozeTo(id, at))
}

func (h *Handler) getNext(c *gin.Context) {
	c.JSON(http.StatusOK, toNextJSON(h.store.Next()))
}

// respond waits for the command to settle and writes the resulting alarm.
func (h *Handler) respond(c *gin.Context, id int, err error) {
	if err == nil {
		err = h.commands.Sync(c.Request.Context(), id)
	}

	switch {
	case err == nil:
	case errors.Is(err, alarm.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})

		return
	case errors.Is(err, alarm.ErrInvalidTime):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	default:
		logger.ErrorKV(h.base, "Alarm command failed", "alarm_id", id, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	v, found := h.store.Get(id)
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "alarm not found"})

		return
	}

	c.JSON(http.StatusOK, toAlarmJSON(v, h.prefs.Prefs()))
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid alarm id"})

		return 0, false
	}

	return id, true
}
