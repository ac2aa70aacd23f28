package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

const (
	ExperimentQueue = "experiment_queue"
	EmailQueue      = "email_queue"
)

// DeclareQueues 声明持久化的队列，生产者与消费者都需要调用
func DeclareQueues(ch *amqp.Channel) error {
	for _, name := range []string{ExperimentQueue, EmailQueue} {
		if _, err := ch.QueueDeclare(
			name,
			true,  // 持久化
			false, // 不自动删除，避免没有消费者时队列被删除
			false, // 非独占
			false, // 等待 RabbitMQ 确认
			nil,
		); err != nil {
			return err
		}
	}
	return nil
}

type Publisher struct {
	ch      *amqp.Channel
	timeout time.Duration
}

func NewPublisher(ch *amqp.Channel, timeout time.Duration) *Publisher {
	return &Publisher{
		ch:      ch,
		timeout: timeout,
	}
}

func (p *Publisher) publishJSON(queue string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		"",
		queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (p *Publisher) PublishExperiment(experimentID string) error {
	return p.publishJSON(ExperimentQueue, domain.ExperimentJob{ExperimentID: experimentID})
}

func (p *Publisher) PublishMail(msg domain.MailMessage) error {
	return p.publishJSON(EmailQueue, msg)
}
