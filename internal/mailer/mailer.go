// Package mailer 将 email_queue 中的消息渲染为 HTML 邮件并发送
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/queue"
	"github.com/wneessen/go-mail"
)

var templates = map[string]struct {
	file    string
	subject string
}{
	domain.MailTypeExperimentFinished: {"experiment_finished_email.html", "背包遗传算法实验 - 运行完成"},
	domain.MailTypeExperimentFailed:   {"experiment_failed_email.html", "背包遗传算法实验 - 运行失败"},
}

// Sender 由 *mail.Client 实现
type Sender interface {
	DialAndSend(messages ...*mail.Msg) error
}

type mailTemplate struct {
	tmpl    *template.Template
	subject string
}

type Mailer struct {
	sender    Sender
	from      string
	templates map[string]mailTemplate
	logger    *slog.Logger
}

// New 在启动时解析 templateDir 下的所有模板，缺少模板时直接返回错误
func New(sender Sender, from, templateDir string, logger *slog.Logger) (*Mailer, error) {
	parsed := make(map[string]mailTemplate, len(templates))
	for typ, info := range templates {
		tmpl, err := template.ParseFiles(filepath.Join(templateDir, info.file))
		if err != nil {
			return nil, err
		}
		parsed[typ] = mailTemplate{tmpl: tmpl, subject: info.subject}
	}

	return &Mailer{
		sender:    sender,
		from:      from,
		templates: parsed,
		logger:    logger,
	}, nil
}

// Build 根据邮件类型选择模板并渲染
func (m *Mailer) Build(message domain.MailMessage) (*mail.Msg, error) {
	tmpl, ok := m.templates[message.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的邮件类型 %q", message.Type)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := msg.To(message.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}
	if err := msg.SetBodyHTMLTemplate(tmpl.tmpl, message.Data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}
	msg.Subject(tmpl.subject)

	return msg, nil
}

// Handle 处理 email_queue 中的一条消息。无法构建的邮件直接丢弃，发送失败则重新入队
func (m *Mailer) Handle(_ context.Context, delivery amqp.Delivery) queue.Outcome {
	message := domain.MailMessage{}
	if err := json.Unmarshal(delivery.Body, &message); err != nil {
		m.logger.Error("邮件信息反序列化失败", slog.String("error", err.Error()))
		return queue.Reject
	}

	msg, err := m.Build(message)
	if err != nil {
		m.logger.Error("无法构建邮件", slog.String("type", message.Type), slog.String("error", err.Error()))
		return queue.Reject
	}

	if err := m.sender.DialAndSend(msg); err != nil {
		m.logger.Error("邮件发送失败", slog.String("error", err.Error()))
		return queue.Requeue
	}

	m.logger.Info("邮件发送成功", slog.String("type", message.Type), slog.String("to", message.To))
	return queue.Ack
}
