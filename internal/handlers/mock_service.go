package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"workorder_dashboard/internal/models"
	"workorder_dashboard/internal/service"
	"workorder_dashboard/internal/upstream"
)

// ---- Service Mocks ----

type mockStreams struct {
	state    models.ConnectionState
	logs     []models.LogEvent
	progress models.LiveProgress
	hasProg  bool

	connectCalls       int
	disconnectCalls    int
	disconnectAllCalls int
	reconnectCalls     int
	clearCalls         int
	lastID             string
}

func (m *mockStreams) Connect(id string) {
	m.connectCalls++
	m.lastID = id
}
func (m *mockStreams) Disconnect(id string) {
	m.disconnectCalls++
	m.lastID = id
}
func (m *mockStreams) DisconnectAll() {
	m.disconnectAllCalls++
}
func (m *mockStreams) Reconnect(id string) {
	m.reconnectCalls++
	m.lastID = id
}
func (m *mockStreams) Clear(id string) {
	m.clearCalls++
	m.lastID = id
}
func (m *mockStreams) State(id string) models.ConnectionState {
	if m.state == "" {
		return models.StateDisconnected
	}
	return m.state
}
func (m *mockStreams) Logs(id string) []models.LogEvent {
	return m.logs
}
func (m *mockStreams) Progress(id string) (models.LiveProgress, bool) {
	return m.progress, m.hasProg
}

type mockOverlay struct {
	logs     []models.LogEvent
	logsErr  error
	progress models.LiveProgress
	progErr  error

	lastQuery upstream.LogQuery
}

func (m *mockOverlay) EffectiveLogs(ctx context.Context, id string, q upstream.LogQuery) ([]models.LogEvent, error) {
	m.lastQuery = q
	return m.logs, m.logsErr
}

func (m *mockOverlay) EffectiveProgress(ctx context.Context, id string) (models.LiveProgress, error) {
	return m.progress, m.progErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func newTestContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}
