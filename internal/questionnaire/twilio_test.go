package questionnaire

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
)

func TestTwilioMessenger_Send(t *testing.T) {
	var got url.Values
	var user, pass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2010-04-01/Accounts/AC123/Messages.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		user, pass, _ = r.BasicAuth()
		_ = r.ParseForm()
		got = r.PostForm
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer srv.Close()

	m, err := NewTwilioMessenger(TwilioConfig{AccountSID: "AC123", AuthToken: "tok", From: "+1000", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewTwilioMessenger() error = %v", err)
	}
	if err := m.Send(context.Background(), "+1999", "hello"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if user != "AC123" || pass != "tok" {
		t.Errorf("basic auth = %q/%q", user, pass)
	}
	if got.Get("To") != "+1999" || got.Get("From") != "+1000" || got.Get("Body") != "hello" {
		t.Errorf("form = %v", got)
	}
}

func TestTwilioMessenger_ClientError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"The 'To' number is not valid."}`))
	}))
	defer srv.Close()

	m, _ := NewTwilioMessenger(TwilioConfig{AccountSID: "AC1", AuthToken: "t", From: "+1", BaseURL: srv.URL, RetryMax: 1})
	err := m.Send(context.Background(), "bogus", "hi")
	if err == nil || !strings.Contains(err.Error(), "21211") {
		t.Fatalf("Send() error = %v, want Twilio error code", err)
	}
	if calls != 1 {
		t.Errorf("client errors retried: %d calls", calls)
	}
}

func TestTwilioMessenger_RetriesThrottled(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	m, _ := NewTwilioMessenger(TwilioConfig{AccountSID: "AC1", AuthToken: "t", From: "+1", BaseURL: srv.URL, RetryMax: 2})
	if err := m.Send(context.Background(), "+1999", "hi"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestTwilioMessenger_ServerErrorNotResent(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(status)
			}))
			defer srv.Close()

			m, _ := NewTwilioMessenger(TwilioConfig{AccountSID: "AC1", AuthToken: "t", From: "+1", BaseURL: srv.URL, RetryMax: 3})
			err := m.Send(context.Background(), "+1999", "hi")
			if err == nil || !strings.Contains(err.Error(), strconv.Itoa(status)) {
				t.Fatalf("Send() error = %v, want status %d", err, status)
			}
			if calls != 1 {
				t.Errorf("message sent %d times, want 1", calls)
			}
		})
	}
}

func TestSendRetryPolicy(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		status  int
		err     error
		want    bool
		wantErr bool
	}{
		{"created", context.Background(), http.StatusCreated, nil, false, false},
		{"throttled", context.Background(), http.StatusTooManyRequests, nil, true, false},
		{"server error", context.Background(), http.StatusInternalServerError, nil, false, false},
		{"unavailable", context.Background(), http.StatusServiceUnavailable, nil, false, false},
		{"bad request", context.Background(), http.StatusBadRequest, nil, false, false},
		{"dial refused", context.Background(), 0, &url.Error{Op: "Post", URL: "x", Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}}, true, false},
		{"read reset", context.Background(), 0, &url.Error{Op: "Post", URL: "x", Err: &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")}}, false, false},
		{"unexpected EOF", context.Background(), 0, &url.Error{Op: "Post", URL: "x", Err: io.ErrUnexpectedEOF}, false, false},
		{"cancelled", cancelled, http.StatusTooManyRequests, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			if tt.err == nil {
				resp = &http.Response{StatusCode: tt.status}
			}
			got, err := sendRetryPolicy(tt.ctx, resp, tt.err)
			if got != tt.want {
				t.Errorf("retry = %v, want %v", got, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewTwilioMessenger_RequiresCredentials(t *testing.T) {
	if _, err := NewTwilioMessenger(TwilioConfig{AccountSID: "AC1"}); err == nil {
		t.Error("NewTwilioMessenger() should fail without token and sender")
	}
}

func TestSignature(t *testing.T) {
	params := url.Values{
		"CallSid": {"CA1234567890ABCDE"},
		"Caller":  {"+12349013030"},
		"Digits":  {"1234"},
		"From":    {"+12349013030"},
		"To":      {"+18005551212"},
	}
	const (
		token   = "12345"
		fullURL = "https://mycompany.com/myapp.php?foo=1&bar=2"
		want    = "0/KCTR6DLpKmkAf8muzZqo1nDgQ="
	)

	if got := Signature(token, fullURL, params); got != want {
		t.Errorf("Signature() = %q, want %q", got, want)
	}
	if !ValidSignature(token, fullURL, params, want) {
		t.Error("ValidSignature() rejected a correct signature")
	}
	if ValidSignature(token, fullURL, params, "") {
		t.Error("ValidSignature() accepted an empty signature")
	}
	params.Set("Digits", "9999")
	if ValidSignature(token, fullURL, params, want) {
		t.Error("ValidSignature() accepted tampered params")
	}
}

func TestTwiML(t *testing.T) {
	out, err := TwiML("Is <this> ok?")
	if err != nil {
		t.Fatalf("TwiML() error = %v", err)
	}
	want := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + `<Response><Message>Is &lt;this&gt; ok?</Message></Response>`
	if string(out) != want {
		t.Errorf("TwiML() = %q, want %q", out, want)
	}

	out, _ = TwiML("")
	if !strings.HasSuffix(string(out), "<Response></Response>") {
		t.Errorf("empty TwiML() = %q", out)
	}
}
