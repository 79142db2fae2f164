package upstream

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"workorder_dashboard/internal/logger"
	"workorder_dashboard/internal/models"
)

// Simulator is an in-process stand-in for the work-order executor. It
// serves the push stream plus both pull endpoints, walking every requested
// work order through a scripted multi-step workflow. Used for local
// development (upstream.simulate) and end-to-end tests.
type Simulator struct {
	steps []string
	tick  time.Duration
	log   *logger.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	history map[string][]models.LogEvent
}

var defaultScript = []string{"planning", "execute", "verify", "commit"}

func NewSimulator(tick time.Duration, log *logger.Logger) *Simulator {
	if tick <= 0 {
		tick = time.Second
	}
	return &Simulator{
		steps:    defaultScript,
		tick:     tick,
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		history:  make(map[string][]models.LogEvent),
	}
}

// Routes returns the simulated executor API.
func (s *Simulator) Routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api/v1/workorders/:id")
	{
		api.GET("/logs/stream", s.streamLogs)
		api.GET("/logs", s.logPage)
		api.GET("/steps", s.stepHistory)
	}
	return router
}

// streamLogs upgrades to WebSocket and plays the scripted workflow, one
// event per tick. After the workflow finishes the connection idles with
// pings so the dashboard keeps its live buffer.
func (s *Simulator) streamLogs(c *gin.Context) {
	id := c.Param("id")
	levelFilter := c.Query("level")
	stepFilter := c.Query("step")

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if s.log != nil {
			s.log.Errorw("sim_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	script := s.script(id)
	for _, ev := range script {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
		}

		s.record(id, ev)
		if levelFilter != "" && ev.Level != levelFilter {
			continue
		}
		if stepFilter != "" && ev.Step != stepFilter {
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}

	// Workflow done; keep the stream open until the client leaves.
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// script builds the full event sequence for one work order.
func (s *Simulator) script(id string) []models.LogEvent {
	total := len(s.steps)
	stepSeconds := s.tick.Seconds()

	events := make([]models.LogEvent, 0, 2*total+1)
	elapsed := 0.0
	for i, step := range s.steps {
		n := i + 1
		events = append(events, simEvent(id, models.EventStepStarted, step, n, total, elapsed, 0))
		elapsed += stepSeconds
		events = append(events, simEvent(id, models.EventStepCompleted, step, n, total, elapsed, stepSeconds))
	}
	done := simEvent(id, models.EventWorkflowCompleted, "", 0, 0, elapsed, 0)
	done.Output = "workflow finished"
	return append(events, done)
}

func simEvent(id, name, step string, n, total int, elapsed, duration float64) models.LogEvent {
	ev := models.LogEvent{
		WorkOrderID:    id,
		Level:          models.LevelInfo,
		Event:          name,
		Timestamp:      time.Now().UTC(),
		Step:           step,
		ElapsedSeconds: &elapsed,
	}
	if n > 0 {
		ev.StepNumber = &n
		ev.TotalSteps = &total
	}
	if duration > 0 {
		ev.DurationSeconds = &duration
	}
	return ev
}

func (s *Simulator) record(id string, ev models.LogEvent) {
	s.mu.Lock()
	s.history[id] = append(s.history[id], ev)
	s.mu.Unlock()
}

// logPage serves the already-emitted events with limit/offset paging.
func (s *Simulator) logPage(c *gin.Context) {
	id := c.Param("id")

	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)

	s.mu.Lock()
	all := append([]models.LogEvent(nil), s.history[id]...)
	s.mu.Unlock()

	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, models.LogPage{
		Events: all[offset:end],
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// stepHistory derives step records from the emitted step_completed events.
func (s *Simulator) stepHistory(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	all := append([]models.LogEvent(nil), s.history[id]...)
	s.mu.Unlock()

	records := make([]models.StepRecord, 0, len(all))
	for _, ev := range all {
		if ev.Event != models.EventStepCompleted {
			continue
		}
		rec := models.StepRecord{
			Step:      ev.Step,
			Success:   ev.Level != models.LevelError,
			Output:    ev.Output,
			Timestamp: ev.Timestamp,
		}
		if ev.DurationSeconds != nil {
			rec.DurationSeconds = *ev.DurationSeconds
		}
		records = append(records, rec)
	}

	c.JSON(http.StatusOK, gin.H{"steps": records})
}

func intQuery(c *gin.Context, key string, def int) int {
	if raw := c.Query(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
