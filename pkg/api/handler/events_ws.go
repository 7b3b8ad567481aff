package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/LENAX/dag-engine/pkg/core/events"
)

// EventsHandler 事件WebSocket推送处理器
// 把事件总线上的运行事件实时推送给WebSocket客户端
type EventsHandler struct {
	bus      *events.EventBus
	upgrader websocket.Upgrader
}

// NewEventsHandler 创建EventsHandler
func NewEventsHandler(bus *events.EventBus) *EventsHandler {
	return &EventsHandler{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Stream 建立WebSocket连接并推送事件
// GET /ws/events
func (h *EventsHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WebSocket] 升级连接失败: %v", err)
		return
	}
	defer conn.Close()

	// 事件通过channel串行写入，避免并发写同一连接
	eventCh := make(chan *events.Event, 64)
	if err := h.bus.Subscribe(c.Request.Context(), func(event *events.Event) {
		select {
		case eventCh <- event:
		default:
			// 客户端消费过慢时丢弃事件，不阻塞总线
		}
	}); err != nil {
		log.Printf("[WebSocket] 订阅事件失败: %v", err)
		return
	}

	// 读取goroutine：感知客户端断开
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event := <-eventCh:
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("[WebSocket] 推送事件失败: %v", err)
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
