// Package delivery is the outbound email capability used by the schedulers.
// A nil error from Send means the provider accepted the message; there is no partial success.
package delivery

import "context"

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
	// IdempotencyKey identifies the logical message (kind:tenant:template). Providers
	// and the dedupe decorator may use it to drop a repeat of an already-accepted send.
	IdempotencyKey string
	Headers        map[string]string
}

type EmailOption func(*Email)

func NewEmail(to string, opts ...EmailOption) Email {
	e := Email{To: to}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func WithSubject(sub string) EmailOption {
	return func(e *Email) {
		e.Subject = sub
	}
}

func WithHTML(html string) EmailOption {
	return func(e *Email) {
		e.HTML = html
	}
}

func WithText(text string) EmailOption {
	return func(e *Email) {
		e.Text = text
	}
}

func WithIdempotencyKey(key string) EmailOption {
	return func(e *Email) {
		e.IdempotencyKey = key
	}
}

func Header(key, value string) EmailOption {
	return func(e *Email) {
		if e.Headers == nil {
			e.Headers = make(map[string]string)
		}
		e.Headers[key] = value
	}
}
