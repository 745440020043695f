package mailer

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"time"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a message and returns the id the relay assigned to it.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ResetLink builds the frontend page link carrying the plaintext reset token.
func ResetLink(frontendURL, token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return frontendURL + "/reset-password?" + q.Encode()
}

func ResetPasswordMessage(to, link string, expiresIn time.Duration) Message {
	escaped := html.EscapeString(link)
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2563eb;">Reset your password</h2>
  <p>Please reset your password by clicking the link below:</p>
  <a href="%s" style="display: inline-block; padding: 10px 20px; background-color: #2563eb; color: white; text-decoration: none; border-radius: 5px;">Reset Password</a>
  <p style="margin-top: 20px;">Or copy this link: %s</p>
  <p style="margin-top: 20px;">Link expires in: %s</p>
</div>`, escaped, escaped, expiresIn)

	return Message{
		To:      to,
		Subject: "Reset Your Password",
		Text:    "Please reset your password by visiting: " + link,
		HTML:    body,
	}
}
