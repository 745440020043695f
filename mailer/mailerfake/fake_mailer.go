package mailerfake

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/ipo-auth-server/mailer"
)

var _ mailer.Mailer = (*FakeMailer)(nil)

// FakeMailer records every message and can be told to fail.
type FakeMailer struct {
	lock sync.Mutex
	sent []mailer.Message
	Err  error
}

func NewFakeMailer() *FakeMailer {
	return &FakeMailer{}
}

func (m *FakeMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	m.sent = append(m.sent, msg)
	return fmt.Sprintf("<fake-%d@ipo.local>", len(m.sent)), nil
}

func (m *FakeMailer) Sent() []mailer.Message {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}
