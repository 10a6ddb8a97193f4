package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	apperrors "pomodoro/pomod/internal/errors"
	"pomodoro/pomod/internal/logging"
	"pomodoro/pomod/internal/model"
	"pomodoro/pomod/internal/notify"
	"pomodoro/pomod/internal/service"
)

const (
	MessageState = "state"
	writeTimeout = 5 * time.Second
)

type PomodoroHandler struct {
	pomodoroService *service.PomodoroService
	hub             *notify.Hub
	upgrader        websocket.Upgrader
}

// WatchMessage is the first message a watcher receives: the state at the
// moment it subscribed. Phase events follow.
type WatchMessage struct {
	Type  string             `json:"type"`
	State *service.StateView `json:"state"`
}

func NewPomodoroHandler(pomodoroService *service.PomodoroService, hub *notify.Hub) *PomodoroHandler {
	return &PomodoroHandler{
		pomodoroService: pomodoroService,
		hub:             hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *PomodoroHandler) GetState(c *gin.Context) {
	writeState(c, h.pomodoroService.GetState())
}

func (h *PomodoroHandler) Start(c *gin.Context) {
	var req model.StartRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperrors.BadRequest(apperrors.CodeInvalidJSON, "invalid request body"))
			return
		}
	}

	state, apiErr := h.pomodoroService.Start(req)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	writeState(c, state)
}

func (h *PomodoroHandler) Stop(c *gin.Context) {
	writeState(c, h.pomodoroService.Stop())
}

// Events streams every phase change over a websocket until either side
// closes or the hub shuts down.
func (h *PomodoroHandler) Events(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Debug("websocket upgrade failed: " + err.Error())
		return
	}
	defer conn.Close()

	events, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	hello := WatchMessage{Type: MessageState, State: h.pomodoroService.GetState()}
	if err := writeJSON(conn, hello); err != nil {
		return
	}

	for {
		select {
		case event, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "daemon shutting down"),
					time.Now().Add(writeTimeout))
				return
			}
			if err := writeJSON(conn, event); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func writeJSON(conn *websocket.Conn, v interface{}) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}
