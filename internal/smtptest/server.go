// Package smtptest runs a throwaway SMTP server for tests.
//
// It speaks just enough of RFC 5321 for go-mail and net/smtp clients:
// EHLO, AUTH PLAIN/LOGIN, MAIL, RCPT, DATA, RSET, NOOP and QUIT.
// No TLS is offered, so clients authenticate over loopback only.
package smtptest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Message is an envelope plus raw DATA received by the server.
type Message struct {
	From string
	To   []string
	Data []byte
}

// Server is an in-process SMTP server bound to 127.0.0.1.
type Server struct {
	ln         net.Listener
	conns      map[net.Conn]struct{}
	messages   []Message
	users      []string
	wg         sync.WaitGroup
	mu         sync.Mutex
	rejectAuth bool
	rejectRcpt map[string]bool
}

// Option configures the server.
type Option func(*Server)

// WithAuthFailure makes every AUTH attempt fail with 535.
func WithAuthFailure() Option {
	return func(s *Server) { s.rejectAuth = true }
}

// WithRejectedRecipient makes RCPT TO fail with 550 for addr.
func WithRejectedRecipient(addr string) Option {
	return func(s *Server) { s.rejectRcpt[strings.ToLower(addr)] = true }
}

// New starts a server and stops it when the test finishes.
func New(tb testing.TB, opts ...Option) *Server {
	tb.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("smtptest: listen: %v", err)
	}

	s := &Server{
		ln:         ln,
		conns:      make(map[net.Conn]struct{}),
		rejectRcpt: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.serve()
	tb.Cleanup(s.Close)
	return s
}

// Host returns the listening IP.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.ln.Addr().String())
	return host
}

// Port returns the listening port.
func (s *Server) Port() int {
	_, port, _ := net.SplitHostPort(s.ln.Addr().String())
	n, _ := strconv.Atoi(port)
	return n
}

// URL returns an smtp:// connection URL for the server.
// Credentials are omitted when user is empty.
func (s *Server) URL(user, pass string) string {
	if user == "" {
		return fmt.Sprintf("smtp://%s", s.ln.Addr())
	}
	return fmt.Sprintf("smtp://%s:%s@%s", user, pass, s.ln.Addr())
}

// Messages returns a copy of everything delivered so far.
func (s *Server) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Users returns the usernames that authenticated successfully.
func (s *Server) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.users...)
}

// Close stops accepting connections and drops open sessions.
func (s *Server) Close() {
	_ = s.ln.Close()
	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
			s.mu.Lock()
			delete(s.conns, conn)
			s.mu.Unlock()
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	tp := textproto.NewConn(conn)
	defer tp.Close()

	reply := func(format string, args ...any) bool {
		return tp.PrintfLine(format, args...) == nil
	}
	if !reply("220 smtptest ready") {
		return
	}

	var cur Message
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		verb, arg, _ := strings.Cut(line, " ")

		switch strings.ToUpper(verb) {
		case "EHLO", "HELO":
			if !reply("250-smtptest") || !reply("250-8BITMIME") || !reply("250 AUTH PLAIN LOGIN") {
				return
			}
		case "AUTH":
			user, ok := s.auth(tp, arg)
			if !ok {
				reply("535 5.7.8 authentication failed")
				continue
			}
			s.mu.Lock()
			s.users = append(s.users, user)
			s.mu.Unlock()
			reply("235 2.7.0 authenticated")
		case "MAIL":
			cur = Message{From: address(arg)}
			reply("250 2.1.0 ok")
		case "RCPT":
			rcpt := address(arg)
			if s.rejectRcpt[strings.ToLower(rcpt)] {
				reply("550 5.1.1 no such user")
				continue
			}
			cur.To = append(cur.To, rcpt)
			reply("250 2.1.5 ok")
		case "DATA":
			if !reply("354 end data with <CR><LF>.<CR><LF>") {
				return
			}
			data, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			cur.Data = data
			s.mu.Lock()
			s.messages = append(s.messages, cur)
			s.mu.Unlock()
			cur = Message{}
			reply("250 2.0.0 queued")
		case "RSET":
			cur = Message{}
			reply("250 2.0.0 ok")
		case "NOOP":
			reply("250 2.0.0 ok")
		case "QUIT":
			reply("221 2.0.0 bye")
			return
		default:
			reply("502 5.5.2 command not implemented")
		}
	}
}

// auth runs a PLAIN or LOGIN exchange and returns the username.
func (s *Server) auth(tp *textproto.Conn, arg string) (string, bool) {
	mech, initial, _ := strings.Cut(arg, " ")

	var user string
	switch strings.ToUpper(mech) {
	case "PLAIN":
		if initial == "" {
			if tp.PrintfLine("334 ") != nil {
				return "", false
			}
			line, err := tp.ReadLine()
			if err != nil {
				return "", false
			}
			initial = line
		}
		raw, err := base64.StdEncoding.DecodeString(initial)
		if err != nil {
			return "", false
		}
		parts := bytes.Split(raw, []byte{0})
		if len(parts) != 3 {
			return "", false
		}
		user = string(parts[1])
	case "LOGIN":
		if tp.PrintfLine("334 %s", base64.StdEncoding.EncodeToString([]byte("Username:"))) != nil {
			return "", false
		}
		line, err := tp.ReadLine()
		if err != nil {
			return "", false
		}
		name, err := base64.StdEncoding.DecodeString(line)
		if err != nil {
			return "", false
		}
		if tp.PrintfLine("334 %s", base64.StdEncoding.EncodeToString([]byte("Password:"))) != nil {
			return "", false
		}
		if _, err := tp.ReadLine(); err != nil {
			return "", false
		}
		user = string(name)
	default:
		return "", false
	}

	if s.rejectAuth {
		return "", false
	}
	return user, true
}

// address extracts the mailbox from "FROM:<a@b>" or "TO:<a@b> SIZE=1".
func address(arg string) string {
	start := strings.IndexByte(arg, '<')
	end := strings.IndexByte(arg, '>')
	if start < 0 || end < start {
		_, after, _ := strings.Cut(arg, ":")
		return strings.TrimSpace(after)
	}
	return arg[start+1 : end]
}
