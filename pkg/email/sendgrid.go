package email

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridConfig SendGrid 配置
type SendGridConfig struct {
	APIKey string `koanf:"api_key"`
}

// SendGridClient 通过 SendGrid v3 API 发信
type SendGridClient struct {
	key string
}

var _ Sender = (*SendGridClient)(nil)

func NewSendGridClient(config *SendGridConfig) *SendGridClient {
	return &SendGridClient{key: config.APIKey}
}

func (s *SendGridClient) Send(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.prepare(msg)
	if err != nil {
		return err
	}

	req := sendgrid.GetRequest(s.key, sendGridEndpoint, sendGridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

func (s *SendGridClient) prepare(msg *Message) (*sgmail.SGMailV3, error) {
	from, err := toSGEmail(msg.From)
	if err != nil {
		return nil, err
	}

	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	for _, to := range msg.To {
		addr, err := toSGEmail(to)
		if err != nil {
			return nil, err
		}
		p.AddTos(addr)
	}
	for _, cc := range msg.Cc {
		addr, err := toSGEmail(cc)
		if err != nil {
			return nil, err
		}
		p.AddCCs(addr)
	}
	for _, bcc := range msg.Bcc {
		addr, err := toSGEmail(bcc)
		if err != nil {
			return nil, err
		}
		p.AddBCCs(addr)
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(from)
	m.AddPersonalizations(p)
	if msg.IsHTML() {
		m.AddContent(sgmail.NewContent("text/html", msg.Body))
	} else {
		m.AddContent(sgmail.NewContent("text/plain", msg.Body))
	}
	return m, nil
}

func toSGEmail(raw string) (*sgmail.Email, error) {
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return nil, fmt.Errorf("email: invalid address %q: %w", raw, err)
	}
	return sgmail.NewEmail(addr.Name, addr.Address), nil
}
