package smtpclient

import (
	"context"
	"net"
	"testing"
	"time"
)

// TestLogin_PlainSuccess drives a full EHLO+AUTH PLAIN exchange.
func TestLogin_PlainSuccess(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	done := make(chan struct{})
	var gotAuthLine string
	go func() {
		defer close(done)
		fs := newFakeServer(server)
		fs.send("220 srv")
		fs.expect() // EHLO
		fs.send("250-srv hello", "250 AUTH PLAIN LOGIN")
		gotAuthLine = fs.expect() // AUTH PLAIN <b64>
		fs.send("235 ok")
	}()

	s, err := NewSession(WithTimeout(2 * time.Second))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.ConnectConn(context.Background(), client, false); err != nil {
		t.Fatalf("ConnectConn: %v", err)
	}

	if err := s.Login(context.Background(), "pooh", "honey", "", "client.example.com"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	<-done

	if !s.Authorized() {
		t.Error("expected authorized=true after successful PLAIN auth")
	}
	if want := "AUTH PLAIN AHBvb2gAaG9uZXk="; gotAuthLine != want {
		t.Errorf("AUTH line = %q, want %q", gotAuthLine, want)
	}
}

// TestLogin_LoginThreeStep drives the three-step AUTH LOGIN challenge/response.
func TestLogin_LoginThreeStep(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	done := make(chan struct{})
	var authCmd, userLine, passLine string
	go func() {
		defer close(done)
		fs := newFakeServer(server)
		fs.send("220 srv")
		fs.expect() // EHLO
		fs.send("250-srv hello", "250 AUTH LOGIN")
		authCmd = fs.expect() // AUTH LOGIN
		fs.send("334 VXNlcm5hbWU6")
		userLine = fs.expect() // b64(pooh)
		fs.send("334 UGFzc3dvcmQ6")
		passLine = fs.expect() // b64(honey)
		fs.send("235 ok")
	}()

	s, err := NewSession(WithTimeout(2 * time.Second))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.ConnectConn(context.Background(), client, false); err != nil {
		t.Fatalf("ConnectConn: %v", err)
	}

	if err := s.Login(context.Background(), "pooh", "honey", "", "client.example.com"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	<-done

	if !s.Authorized() {
		t.Error("expected authorized=true after successful LOGIN auth")
	}
	if authCmd != "AUTH LOGIN" {
		t.Errorf("authCmd = %q, want %q", authCmd, "AUTH LOGIN")
	}
	if userLine != "cG9vaA==" {
		t.Errorf("userLine = %q, want %q", userLine, "cG9vaA==")
	}
	if passLine != "aG9uZXk=" {
		t.Errorf("passLine = %q, want %q", passLine, "aG9uZXk=")
	}
}

func TestLogin_AuthNotSupported(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	go func() {
		fs := newFakeServer(server)
		fs.send("220 srv")
		fs.expect() // EHLO
		fs.send("250-srv hello", "250 AUTH GSSAPI")
	}()

	s, err := NewSession(WithTimeout(2 * time.Second))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.ConnectConn(context.Background(), client, false); err != nil {
		t.Fatalf("ConnectConn: %v", err)
	}

	err = s.Login(context.Background(), "pooh", "honey", "", "client.example.com")
	if err == nil {
		t.Fatal("expected AuthNotSupported")
	}
}

// TestLogin_CRAMMD5DoubleSpaceQuirk verifies the "AUTH  CRAM-MD5"
// two-space wire form is sent verbatim.
func TestLogin_CRAMMD5DoubleSpaceQuirk(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	done := make(chan struct{})
	var authCmd string
	go func() {
		defer close(done)
		fs := newFakeServer(server)
		fs.send("220 srv")
		fs.expect() // EHLO
		fs.send("250-srv hello", "250 AUTH CRAM-MD5")
		authCmd = fs.expect()
		fs.send("334 PDQxOTI5NDIzNDEuMTI4Mjg0NzJAc291cmNlZm91ci5hbmRyZXcuY211LmVkdT4=")
		fs.expect() // b64(user + " " + hex-hmac) — content checked by the root package's round-trip test.
		fs.send("235 ok")
	}()

	s, err := NewSession(WithTimeout(2 * time.Second))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.ConnectConn(context.Background(), client, false); err != nil {
		t.Fatalf("ConnectConn: %v", err)
	}

	if err := s.Login(context.Background(), "tim", "tanstaaftanstaaf", "CRAM-MD5", "client.example.com"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	<-done

	if authCmd != "AUTH  CRAM-MD5" {
		t.Errorf("authCmd = %q, want %q (two spaces, per documented quirk)", authCmd, "AUTH  CRAM-MD5")
	}
}

func TestLogin_FailureClosesSessionGracefully(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	go func() {
		fs := newFakeServer(server)
		fs.send("220 srv")
		fs.expect() // EHLO
		fs.send("250-srv hello", "250 AUTH PLAIN")
		fs.expect() // AUTH PLAIN
		fs.send("535 bad credentials")
	}()

	s, err := NewSession(WithTimeout(2 * time.Second))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.ConnectConn(context.Background(), client, false); err != nil {
		t.Fatalf("ConnectConn: %v", err)
	}

	err = s.Login(context.Background(), "pooh", "honey", "", "client.example.com")
	if err == nil {
		t.Fatal("expected auth failure")
	}
	if s.Authorized() {
		t.Error("expected authorized=false after failed auth")
	}
	if got := s.State(); got != StateNotConnected {
		t.Errorf("state = %v, want NotConnected after graceful close", got)
	}
}
