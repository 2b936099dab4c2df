package mailer

import (
	"context"
	"sync"
)

// ConsoleSender пишет письма в лог вместо отправки (dev-режим)
type ConsoleSender struct {
	logger Logger

	mu   sync.Mutex
	sent []Message
}

// NewConsoleSender создает отправителя в консоль
func NewConsoleSender(logger Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger}
}

// Send логирует письмо и запоминает его
func (s *ConsoleSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("ConsoleSender: to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Body)

	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()

	return nil
}

// Sent возвращает копию отправленных писем
func (s *ConsoleSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
