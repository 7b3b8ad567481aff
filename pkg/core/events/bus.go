package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventTopic 事件总线统一topic
const EventTopic = "dag-engine.events"

// EventHandler 事件处理函数（对外导出）
type EventHandler func(event *Event)

// EventBus 进程内事件总线（对外导出）
// 基于watermill的gochannel pub/sub，事件以JSON编码传递
type EventBus struct {
	pubSub *gochannel.GoChannel
	mu     sync.Mutex
	closed bool
}

// NewEventBus 创建事件总线（对外导出的工厂方法）
func NewEventBus() *EventBus {
	logger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger)
	return &EventBus{pubSub: pubSub}
}

// Publish 发布事件（对外导出）
func (b *EventBus) Publish(event *Event) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("事件总线已关闭")
	}
	b.mu.Unlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return b.pubSub.Publish(EventTopic, msg)
}

// Subscribe 订阅事件（对外导出）
// handler在独立goroutine中被调用，ctx取消后订阅自动结束
func (b *EventBus) Subscribe(ctx context.Context, handler EventHandler) error {
	msgs, err := b.pubSub.Subscribe(ctx, EventTopic)
	if err != nil {
		return fmt.Errorf("订阅事件失败: %w", err)
	}

	go func() {
		for msg := range msgs {
			var event Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				log.Printf("[EventBus] 反序列化事件失败: %v", err)
				msg.Ack()
				continue
			}
			handler(&event)
			msg.Ack()
		}
	}()
	return nil
}

// Close 关闭事件总线（对外导出）
func (b *EventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubSub.Close()
}
