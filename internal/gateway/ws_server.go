package gateway

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSServer struct {
	hub    *Hub
	logger *slog.Logger
}

func NewWSServer(hub *Hub, logger *slog.Logger) *WSServer {
	return &WSServer{
		hub:    hub,
		logger: logger.With("component", "ws_server"),
	}
}

func (s *WSServer) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", s.HandleConnection)
}

func (s *WSServer) HandleConnection(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return err
	}

	conn := NewConn(ws, c.RealIP(), s.logger)
	s.hub.Register(conn)
	s.logger.Info("client connected", "connection_id", conn.ID(), "address", conn.RemoteAddr())

	go conn.writePump()
	conn.readPump(s.hub)

	s.logger.Info("client connection closed", "connection_id", conn.ID())
	return nil
}
