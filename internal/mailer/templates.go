package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var (
	otpTemplate = template.Must(template.New("otp").Parse(`<p>Hello,</p>
<p>Use the code below to reset your {{.App}} password. It expires in {{.TTL}}.</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px;">{{.Code}}</p>
<p>If you did not request a reset you can ignore this email.</p>`))

	newPasswordTemplate = template.Must(template.New("new-password").Parse(`<p>Hello,</p>
<p>Your {{.App}} password has been reset. Your new password is:</p>
<p style="font-family:monospace;font-size:18px;">{{.Password}}</p>
<p>Sign in and change it from your account settings.</p>`))

	accountTemplate = template.Must(template.New("account").Parse(`<p>Hello {{.Name}},</p>
<p>An {{.App}} account was created for you with the role {{.Role}}.</p>
<p>Email: {{.Email}}<br>Password: <span style="font-family:monospace;">{{.Password}}</span></p>
<p>Please change your password after the first sign in.</p>`))
)

type Templates struct {
	App string
}

func (t Templates) OTP(to string, code string, ttl time.Duration) (Message, error) {
	return t.render(to, "Your password reset code", otpTemplate, map[string]any{
		"App":  t.App,
		"Code": code,
		"TTL":  ttl.String(),
	})
}

func (t Templates) NewPassword(to string, password string) (Message, error) {
	return t.render(to, "Your password has been reset", newPasswordTemplate, map[string]any{
		"App":      t.App,
		"Password": password,
	})
}

func (t Templates) AccountCreated(to string, name string, role string, password string) (Message, error) {
	return t.render(to, "Your account is ready", accountTemplate, map[string]any{
		"App":      t.App,
		"Name":     name,
		"Role":     role,
		"Email":    to,
		"Password": password,
	})
}

func (t Templates) render(to string, subject string, tpl *template.Template, data map[string]any) (Message, error) {
	var body bytes.Buffer
	if err := tpl.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render %s email: %w", tpl.Name(), err)
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("[%s] %s", t.App, subject),
		HTML:    body.String(),
	}, nil
}
