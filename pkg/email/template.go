package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// Template 邮件模板
type Template struct {
	tmpl *template.Template
}

// NewTemplate 从 HTML 字符串创建模板
func NewTemplate(htmlContent string) (*Template, error) {
	tmpl, err := template.New("email").Parse(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	return &Template{tmpl: tmpl}, nil
}

// MustTemplate 解析失败直接 panic，用于包级模板常量
func MustTemplate(htmlContent string) *Template {
	t, err := NewTemplate(htmlContent)
	if err != nil {
		panic(err)
	}
	return t
}

// Render 渲染模板
func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email template: %w", err)
	}
	return buf.String(), nil
}

// PasswordResetData 密码重置邮件数据
type PasswordResetData struct {
	Name          string
	ResetLink     string
	ExpireMinutes int
}

// PasswordResetTemplate 密码重置邮件模板
const PasswordResetTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #1f6feb; color: white; padding: 20px; text-align: center; }
        .content { background-color: #f9f9f9; padding: 30px; border: 1px solid #ddd; }
        .button { display: inline-block; padding: 12px 24px; background-color: #1f6feb;
                  color: white; text-decoration: none; border-radius: 4px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Password recovery</h1>
        </div>
        <div class="content">
            <p>Hi {{.Name}},</p>
            <p>Click the button below to choose a new password:</p>
            <p><a class="button" href="{{.ResetLink}}">Reset password</a></p>
            <p>Or paste this link into your browser: {{.ResetLink}}</p>
            <p>This link is valid for {{.ExpireMinutes}} minutes and can be used once.</p>
            <p>If you did not ask for a new password, ignore this email.</p>
        </div>
        <div class="footer">
            <p>Akademi</p>
        </div>
    </div>
</body>
</html>
`

var passwordResetTmpl = MustTemplate(PasswordResetTemplate)

// PasswordResetMessage 渲染密码重置邮件
func PasswordResetMessage(from, to string, data PasswordResetData) (*Message, error) {
	body, err := passwordResetTmpl.Render(data)
	if err != nil {
		return nil, err
	}
	return HTML(from, to, "Password recovery - Akademi", body), nil
}
