package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/kochabx/sealstore/store"
)

// Event 存储变更事件
type Event = store.Event

// Publisher 将存储事件写入配置的主题
type Publisher struct {
	client *Client
	topic  string
	now    func() time.Time
}

var _ store.Notifier = (*Publisher)(nil)

// NewPublisher 创建事件发布者，主题取自客户端配置
func NewPublisher(client *Client) *Publisher {
	return &Publisher{
		client: client,
		topic:  client.config.Topic,
		now:    time.Now,
	}
}

// Topic 返回事件主题
func (p *Publisher) Topic() string {
	return p.topic
}

// Notify 发布事件，消息键为内容地址
// 缺少 ID 或时间戳时自动补齐
func (p *Publisher) Notify(ctx context.Context, ev Event) error {
	msg, err := p.message(ev)
	if err != nil {
		return err
	}

	w, err := p.client.Producer(p.topic)
	if err != nil {
		return err
	}
	if err := w.WriteMessages(ctx, msg); err != nil {
		p.client.logger.Warn().Err(err).Str("topic", p.topic).Str("address", ev.Address).Str("type", string(ev.Type)).Msg("publish event failed")
		return err
	}

	p.client.logger.Debug().Str("topic", p.topic).Str("address", ev.Address).Str("type", string(ev.Type)).Msg("event published")
	return nil
}

// message 将事件编码为 Kafka 消息
func (p *Publisher) message(ev Event) (kafka.Message, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = p.now().UnixMilli()
	}

	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(ev.Address),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}, nil
}

// DecodeEvent 解析事件消息
func DecodeEvent(msg kafka.Message) (Event, error) {
	var ev Event
	err := json.Unmarshal(msg.Value, &ev)
	return ev, err
}

// Subscribe 持续消费事件直到 ctx 取消或 handler 返回错误
// groupID 非空时以消费者组方式读取并提交位点
func (c *Client) Subscribe(ctx context.Context, groupID string, handler func(Event) error) error {
	r, err := c.Consumer(c.config.Topic, groupID)
	if err != nil {
		return err
	}

	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		ev, err := DecodeEvent(msg)
		if err != nil {
			c.logger.Warn().Err(err).Int64("offset", msg.Offset).Msg("skip malformed event")
			continue
		}
		if err := handler(ev); err != nil {
			return err
		}
	}
}
