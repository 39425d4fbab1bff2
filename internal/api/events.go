package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// websocket 写入参数
const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleEvents 把节点事件以 JSON 推送给 websocket 客户端
//
// 每个事件一条文本消息，格式见 types.EventRecord。客户端发送的消息被忽略。
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("websocket 升级失败", "error", err)
		return
	}
	sub := s.hub.Subscribe()
	rid := w.Header().Get(RequestIDHeader)
	logger.Debug("事件订阅者已连接", "request_id", rid, "remote", r.RemoteAddr)

	// 读循环只用于感知连接关闭
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer func() {
		ping.Stop()
		sub.Cancel()
		_ = c.Close()
		logger.Debug("事件订阅者已断开", "request_id", rid)
	}()

	for {
		select {
		case <-gone:
			return
		case rec, ok := <-sub.C():
			if !ok {
				_ = c.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(wsWriteTimeout))
				return
			}
			_ = c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.WriteJSON(rec); err != nil {
				return
			}
		case <-ping.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}
