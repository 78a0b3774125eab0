package digest

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

func TestSendDigestBuildsMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	s := NewSMTPSender(SMTPConfig{
		Host:     "smtp.example.com",
		Port:     "587",
		User:     "bot@example.com",
		Password: "secret",
		From:     "bot@example.com",
		FromName: "Job Digest",
	})
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := s.SendDigest(context.Background(), "me@example.com", "Job Digest: 2 new postings", "<html>body</html>")
	if err != nil {
		t.Fatalf("SendDigest() error = %v", err)
	}

	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr = %q, want smtp.example.com:587", gotAddr)
	}
	if gotFrom != "bot@example.com" {
		t.Errorf("envelope from = %q, want bot@example.com", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "me@example.com" {
		t.Errorf("to = %v, want [me@example.com]", gotTo)
	}

	msg := string(gotMsg)
	for _, want := range []string{
		"From: Job Digest <bot@example.com>\r\n",
		"To: me@example.com\r\n",
		"Subject: Job Digest: 2 new postings\r\n",
		"Content-Type: text/html; charset=UTF-8\r\n",
		"\r\n\r\n<html>body</html>",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestSendDigestNoAuthWhenNoCredentials(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: "1025", From: "bot@example.com"})
	var gotAuth smtp.Auth
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAuth = a
		return nil
	}

	if err := s.SendDigest(context.Background(), "me@example.com", "subject", "body"); err != nil {
		t.Fatalf("SendDigest() error = %v", err)
	}
	if gotAuth != nil {
		t.Error("expected nil auth when no credentials configured")
	}
}

func TestSendDigestSanitizesHeaders(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: "25", From: "bot@example.com"})
	var gotMsg []byte
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotMsg = msg
		return nil
	}

	subject := "hello\r\nBcc: everyone@example.com"
	if err := s.SendDigest(context.Background(), "me@example.com", subject, "body"); err != nil {
		t.Fatalf("SendDigest() error = %v", err)
	}
	if strings.Contains(string(gotMsg), "\r\nBcc:") {
		t.Error("CRLF in subject was not stripped")
	}
}

func TestSendDigestPropagatesError(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: "25", From: "bot@example.com"})
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	}

	err := s.SendDigest(context.Background(), "me@example.com", "subject", "body")
	if err == nil {
		t.Fatal("expected error from failed send")
	}
}

func TestSendDigestHonorsCancelledContext(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: "25", From: "bot@example.com"})
	called := false
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		called = true
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.SendDigest(ctx, "me@example.com", "subject", "body"); err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if called {
		t.Error("send should not run after context cancellation")
	}
}
