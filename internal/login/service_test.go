package login

import (
	"context"
	"errors"
	"testing"

	"github.com/Mr-Dark-debug/yatter/internal/logger"
	"github.com/Mr-Dark-debug/yatter/internal/metrics"
	"github.com/Mr-Dark-debug/yatter/internal/model"
)

type fakeTokens struct {
	token    *string
	err      error
	reads    int
	saved    string
	username string
	cleared  bool
	saveErr  error
}

func (f *fakeTokens) GetAccessToken(ctx context.Context) (*string, error) {
	f.reads++
	return f.token, f.err
}

func (f *fakeTokens) SaveAccessToken(ctx context.Context, username, token string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.username = username
	f.saved = token
	return nil
}

func (f *fakeTokens) ClearAccessToken(ctx context.Context) error {
	f.cleared = true
	return nil
}

type fakeAuth struct {
	token string
	err   error
	user  string
	pass  string
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (string, error) {
	f.user, f.pass = username, password
	return f.token, f.err
}

func strPtr(s string) *string { return &s }

func TestCheckLoginService(t *testing.T) {
	cases := []struct {
		name  string
		token *string
		want  bool
	}{
		{"nil token", nil, false},
		{"empty token", strPtr(""), false},
		{"saved token", strPtr("accessToken"), true},
		{"whitespace token", strPtr(" "), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tokens := &fakeTokens{token: tc.token}
			got, err := NewCheckLoginService(tokens).Execute(context.Background())
			if err != nil {
				t.Fatalf("Execute returned error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
			if tokens.reads != 1 {
				t.Errorf("expected exactly one token read, got %d", tokens.reads)
			}
		})
	}
}

func TestCheckLoginServicePropagatesReadError(t *testing.T) {
	readErr := errors.New("disk gone")
	tokens := &fakeTokens{err: readErr, token: strPtr("ignored")}

	got, err := NewCheckLoginService(tokens).Execute(context.Background())
	if !errors.Is(err, readErr) {
		t.Fatalf("expected read error, got %v", err)
	}
	if got {
		t.Error("expected false alongside an error")
	}
}

func TestLoginServiceStoresToken(t *testing.T) {
	tokens := &fakeTokens{}
	auth := &fakeAuth{token: "tok-1"}
	svc := NewLoginService(auth, tokens, metrics.Nop{}, logger.Discard())

	if err := svc.Execute(context.Background(), "  shuta ", "pw"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if auth.user != "shuta" || auth.pass != "pw" {
		t.Errorf("unexpected credentials sent: %q/%q", auth.user, auth.pass)
	}
	if tokens.saved != "tok-1" || tokens.username != "shuta" {
		t.Errorf("expected token stored for shuta, got %q for %q", tokens.saved, tokens.username)
	}
}

func TestLoginServiceRejectsBlankCredentials(t *testing.T) {
	svc := NewLoginService(&fakeAuth{}, &fakeTokens{}, metrics.Nop{}, logger.Discard())

	for _, pair := range [][2]string{{"", "pw"}, {"user", ""}, {"   ", "pw"}} {
		if err := svc.Execute(context.Background(), pair[0], pair[1]); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("Execute(%q, %q): expected ErrMissingCredentials, got %v", pair[0], pair[1], err)
		}
	}
}

func TestLoginServiceUnauthorized(t *testing.T) {
	tokens := &fakeTokens{}
	svc := NewLoginService(&fakeAuth{err: model.ErrUnauthorized}, tokens, metrics.Nop{}, logger.Discard())

	err := svc.Execute(context.Background(), "shuta", "bad")
	if !errors.Is(err, model.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if tokens.saved != "" {
		t.Error("expected no token stored on failure")
	}
}

func TestLoginServiceEmptyToken(t *testing.T) {
	svc := NewLoginService(&fakeAuth{token: ""}, &fakeTokens{}, metrics.Nop{}, logger.Discard())
	if err := svc.Execute(context.Background(), "shuta", "pw"); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestLogoutService(t *testing.T) {
	tokens := &fakeTokens{}
	if err := NewLogoutService(tokens, logger.Discard()).Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !tokens.cleared {
		t.Error("expected token to be cleared")
	}
}
