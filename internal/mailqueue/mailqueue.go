package mailqueue

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/domain"
)

const QueueName = "email_queue"

var ErrUnsupportedMailType = errors.New("不支持的邮件类型")

//go:embed templates/*.html
var templatesFS embed.FS

var mailTemplates = map[string]struct {
	file    string
	subject string
}{
	domain.MailTypeCreateUser: {file: "templates/new_account_email.html", subject: "考试试卷系统 - 账户信息"},
}

// DeclareQueue 声明持久化的邮件队列，发送方和消费方都需要调用
func DeclareQueue(ch *amqp.Channel) (amqp.Queue, error) {
	return ch.QueueDeclare(
		QueueName, // 队列名称
		true,      // 是否持久化
		false,     // 是否自动删除
		false,     // 是否独占
		false,     // 是否不等待
		nil,       // 额外参数
	)
}

// Template 返回邮件类型对应的模板和邮件标题
func Template(mailType string) (*template.Template, string, error) {
	t, ok := mailTemplates[mailType]
	if !ok {
		return nil, "", ErrUnsupportedMailType
	}

	tmpl, err := template.ParseFS(templatesFS, t.file)
	if err != nil {
		return nil, "", err
	}

	return tmpl, t.subject, nil
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Publisher struct {
	ch      channel
	timeout time.Duration
}

func NewPublisher(ch *amqp.Channel, timeout time.Duration) *Publisher {
	return &Publisher{ch: ch, timeout: timeout}
}

func (p *Publisher) Publish(msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		"",
		QueueName,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (p *Publisher) NotifyAccountCreated(user *domain.User, password string) error {
	return p.Publish(domain.MailMessage{
		Type: domain.MailTypeCreateUser,
		To:   user.Email,
		Data: domain.CreateUserMailData{
			FullName: user.FullName,
			Username: user.Username,
			Password: password,
			Role:     user.Role,
		},
	})
}
