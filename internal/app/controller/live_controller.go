package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/eduverify-backend/internal/middleware"
	ws "github.com/ikkim/eduverify-backend/internal/websocket"
)

type LiveController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewLiveController(hub *ws.Hub, allowedOrigins []string) *LiveController {
	return &LiveController{
		hub:      hub,
		upgrader: ws.NewUpgrader(allowedOrigins),
	}
}

// WebSocketHandler streams request events to dashboards
// GET /api/v1/ws?token=
// 쿼리 파라미터로 토큰을 받지만, 로깅하지 않음 (보안)
func (ctrl *LiveController) WebSocketHandler(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	// 미들웨어에서 이미 인증 완료
	session, ok := currentSession(c)
	if !ok {
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, session)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"user_id":    session.User.ID,
		"company_id": session.Company.ID,
	})
}
