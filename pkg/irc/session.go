// Package irc provides the transport session consumed by the relay: one
// connect-through-disconnect lifetime of an IRC connection.
//
// Protocol framing, registration, and PING handling are delegated to
// gopkg.in/irc.v4; this package reduces the wire to the small surface the
// relay needs (inbound message events, outbound sends, the current nick).
package irc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/irc.v4"
)

// ErrNotRunning is returned by Send before the session's stream has started.
var ErrNotRunning = errors.New("session stream not running")

// Config holds the transport connection settings.
type Config struct {
	// Server is the IRC server hostname.
	Server string

	// Port is the IRC server port.
	Port int

	// TLS enables a TLS connection.
	TLS bool

	// Nick is the nick requested at registration. The server may assign a
	// different one; CurrentNick reflects what is actually in effect.
	Nick string

	// Channels are joined automatically after registration.
	Channels []string

	// DialTimeout bounds the TCP/TLS dial. Defaults to 30s when zero.
	DialTimeout time.Duration
}

// InboundEvent is one message-post event from the stream. Sender is the nick
// portion of the message prefix, empty when the prefix is absent or carries
// no nick.
type InboundEvent struct {
	Target string
	Text   string
	Sender string
}

// Session is a live transport connection.
type Session struct {
	cfg    Config
	conn   net.Conn
	logger *zap.Logger

	mu     sync.Mutex
	client *irc.Client
}

func (s *Session) getClient() *irc.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// Connect establishes the transport connection. Registration happens when
// Run starts consuming the stream; a handshake failure surfaces there and is
// not distinguished from a mid-stream failure.
func Connect(cfg Config, logger *zap.Logger) (*Session, error) {
	timeout := cfg.DialTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	addr := net.JoinHostPort(cfg.Server, fmt.Sprintf("%d", cfg.Port))

	var conn net.Conn
	var err error
	if cfg.TLS {
		dialer := &net.Dialer{Timeout: timeout}
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, nil)
	} else {
		conn, err = net.DialTimeout("tcp", addr, timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}

	return &Session{
		cfg:    cfg,
		conn:   conn,
		logger: logger,
	}, nil
}

// Run registers with the server and consumes the inbound stream until it
// terminates, invoking onEvent synchronously for every message-post event.
// While onEvent is in flight no other event is read, so event handling is
// strictly sequential in arrival order.
func (s *Session) Run(ctx context.Context, onEvent func(InboundEvent)) error {
	handler := irc.HandlerFunc(func(c *irc.Client, m *irc.Message) {
		switch m.Command {
		case "001":
			s.logger.Info("registered with server",
				zap.String("nick", c.CurrentNick()),
			)
			for _, ch := range s.cfg.Channels {
				if err := c.WriteMessage(&irc.Message{
					Command: "JOIN",
					Params:  []string{ch},
				}); err != nil {
					s.logger.Error("joining channel",
						zap.String("channel", ch),
						zap.Error(err),
					)
				}
			}
		case "PRIVMSG":
			if len(m.Params) < 2 {
				return
			}
			ev := InboundEvent{
				Target: m.Params[0],
				Text:   m.Params[1],
			}
			if m.Prefix != nil {
				ev.Sender = m.Prefix.Name
			}
			onEvent(ev)
		}
	})

	client := irc.NewClient(s.conn, irc.ClientConfig{
		Nick:    s.cfg.Nick,
		User:    s.cfg.Nick,
		Name:    s.cfg.Nick,
		Handler: handler,
	})

	s.mu.Lock()
	s.client = client
	s.mu.Unlock()

	return client.RunContext(ctx)
}

// CurrentNick returns the nick currently in effect. The server can rename
// the client over the session's lifetime, so callers must re-read this for
// every check rather than caching it.
func (s *Session) CurrentNick() string {
	client := s.getClient()
	if client == nil {
		return s.cfg.Nick
	}
	return client.CurrentNick()
}

// Send posts one message to the target. An empty text still produces a
// protocol message.
func (s *Session) Send(target, text string) error {
	client := s.getClient()
	if client == nil {
		return ErrNotRunning
	}
	return client.WriteMessage(&irc.Message{
		Command: "PRIVMSG",
		Params:  []string{target, text},
	})
}

// Close tears down the underlying connection, terminating the stream.
func (s *Session) Close() error {
	return s.conn.Close()
}
