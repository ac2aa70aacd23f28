package queue

import (
	"context"
	"errors"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrChannelClosed = errors.New("消息通道已关闭")

// Outcome 决定一条消息处理完之后如何确认
type Outcome int

const (
	Ack     Outcome = iota // 处理完成
	Reject                 // 无法处理，丢弃
	Requeue                // 暂时无法处理，重新入队
)

type HandleFunc func(ctx context.Context, msg amqp.Delivery) Outcome

// Consume 以手动确认的方式消费队列
func Consume(ch *amqp.Channel, name string) (<-chan amqp.Delivery, error) {
	return ch.Consume(
		name,
		"",    // 消费者标识，由 RabbitMQ 自动分配
		false, // 手动确认
		false, // 非独占
		false, // RabbitMQ 不支持 noLocal，必须为 false
		false, // 等待 RabbitMQ 响应
		nil,
	)
}

// Serve 逐条处理消息直到 ctx 结束或通道关闭。ctx 结束时返回 nil，通道被关闭时返回 ErrChannelClosed
func Serve(ctx context.Context, msgs <-chan amqp.Delivery, logger *slog.Logger, handle HandleFunc) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return ErrChannelClosed
			}
			logger.Info("收到消息", slog.String("message", string(msg.Body)))

			var err error
			switch handle(ctx, msg) {
			case Ack:
				err = msg.Ack(false)
			case Reject:
				err = msg.Nack(false, false)
			case Requeue:
				err = msg.Nack(false, true)
			}
			if err != nil {
				logger.Error("无法确认消息", slog.String("error", err.Error()))
			}
		}
	}
}
