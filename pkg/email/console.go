package email

import (
	"context"
	"log"
	"strings"
	"sync"
)

// ConsoleSender 不真正发信，只把邮件写到日志并留存，供开发和测试使用
type ConsoleSender struct {
	logger *log.Logger

	mu   sync.Mutex
	sent []Message
}

var _ Sender = (*ConsoleSender)(nil)

func NewConsoleSender(logger *log.Logger) *ConsoleSender {
	if logger == nil {
		logger = log.Default()
	}
	return &ConsoleSender{logger: logger}
}

func (s *ConsoleSender) Send(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.logger.Printf("[email] to=%s subject=%q", strings.Join(msg.To, ","), msg.Subject)

	s.mu.Lock()
	s.sent = append(s.sent, *msg)
	s.mu.Unlock()
	return nil
}

// Sent 返回已“发送”邮件的副本
func (s *ConsoleSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
