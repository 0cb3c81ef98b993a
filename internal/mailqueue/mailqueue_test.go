package mailqueue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/domain"
)

type mockChannel struct {
	key  string
	msgs []amqp.Publishing
	err  error
}

func (m *mockChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	m.key = key
	m.msgs = append(m.msgs, msg)
	return m.err
}

func TestPublisher_NotifyAccountCreated(t *testing.T) {
	ch := &mockChannel{}
	p := &Publisher{ch: ch, timeout: time.Second}

	user := &domain.User{Username: "admin", FullName: "系统管理员", Email: "admin@exam.local", Role: domain.RoleAdmin}
	if err := p.NotifyAccountCreated(user, "p@ssw0rd"); err != nil {
		t.Fatalf("发送通知应成功: %v", err)
	}
	if ch.key != QueueName {
		t.Errorf("期望发送到 %s，实际 %s", QueueName, ch.key)
	}
	if len(ch.msgs) != 1 {
		t.Fatalf("期望 1 条消息，实际 %d", len(ch.msgs))
	}

	msg := domain.MailMessage{}
	if err := json.Unmarshal(ch.msgs[0].Body, &msg); err != nil {
		t.Fatalf("消息反序列化失败: %v", err)
	}
	if msg.Type != domain.MailTypeCreateUser || msg.To != "admin@exam.local" {
		t.Errorf("消息内容错误: %+v", msg)
	}
}

func TestPublisher_Error(t *testing.T) {
	p := &Publisher{ch: &mockChannel{err: errors.New("通道已关闭")}, timeout: time.Second}
	if err := p.Publish(domain.MailMessage{Type: domain.MailTypeCreateUser}); err == nil {
		t.Error("通道错误应返回")
	}
}

func TestTemplate_CreateUser(t *testing.T) {
	tmpl, subject, err := Template(domain.MailTypeCreateUser)
	if err != nil {
		t.Fatalf("获取模板应成功: %v", err)
	}
	if subject == "" {
		t.Error("邮件标题不应为空")
	}

	// 模拟消费方：消息经过 JSON 往返后 Data 为 map
	body, _ := json.Marshal(domain.MailMessage{
		Type: domain.MailTypeCreateUser,
		Data: domain.CreateUserMailData{FullName: "考务管理员", Username: "examadmin", Password: "p@ssw0rd", Role: domain.RoleAdmin},
	})
	msg := domain.MailMessage{}
	if err := json.Unmarshal(body, &msg); err != nil {
		t.Fatalf("消息反序列化失败: %v", err)
	}

	buf := &bytes.Buffer{}
	if err := tmpl.Execute(buf, msg.Data); err != nil {
		t.Fatalf("渲染模板失败: %v", err)
	}
	for _, want := range []string{"考务管理员", "examadmin", "p@ssw0rd", "管理员"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("邮件正文应包含 %q", want)
		}
	}
}

func TestTemplate_Unsupported(t *testing.T) {
	if _, _, err := Template("reset_password"); !errors.Is(err, ErrUnsupportedMailType) {
		t.Errorf("期望 ErrUnsupportedMailType，实际: %v", err)
	}
}
