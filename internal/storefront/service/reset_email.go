package service

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/pkg/mailx"
)

const resetEmailSubject = "Your Password Reset Token"

var resetEmailHTML = htmltemplate.Must(htmltemplate.New("reset.html").Parse(`<div style="border: 1px solid black; padding: 20px; font-family: sans-serif; line-height: 2; font-size: 20px;">
  <h2>Hello {{.Name}},</h2>
  <p>Your Password Reset Token is here!</p>
  <p><a href="{{.Link}}">Click Here to Reset</a></p>
  <p>This link expires at {{.Expires}}.</p>
</div>
`))

var resetEmailText = texttemplate.Must(texttemplate.New("reset.txt").Parse(`Hello {{.Name}},

Your Password Reset Token is here!

{{.Link}}

This link expires at {{.Expires}}.
`))

type resetEmailData struct {
	Name    string
	Link    string
	Expires string
}

// resetLink points at the frontend reset page with the raw token attached.
func resetLink(frontendURL, token string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(frontendURL, "/") + "/reset")
	if err != nil {
		return "", fmt.Errorf("frontend url: %w", err)
	}
	q := u.Query()
	q.Set("resetToken", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func resetEmail(u domain.User, frontendURL, token string, expiry time.Time) (mailx.Message, error) {
	link, err := resetLink(frontendURL, token)
	if err != nil {
		return mailx.Message{}, err
	}
	data := resetEmailData{Name: u.Name, Link: link, Expires: expiry.UTC().Format(time.RFC1123)}

	var html, text bytes.Buffer
	if err := resetEmailHTML.Execute(&html, data); err != nil {
		return mailx.Message{}, err
	}
	if err := resetEmailText.Execute(&text, data); err != nil {
		return mailx.Message{}, err
	}
	return mailx.Message{
		To:      u.Email,
		Subject: resetEmailSubject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
