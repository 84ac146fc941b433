package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/JonMunkholm/surveyviz/internal/questionnaire"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{
			name:   "no trusted proxies keeps remote",
			remote: "203.0.113.9:5000",
			headers: map[string]string{
				"X-Real-IP": "198.51.100.1",
			},
			want: "203.0.113.9:5000",
		},
		{
			name:    "trusted cidr uses X-Real-IP",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:5000",
			headers: map[string]string{"X-Real-IP": "198.51.100.1"},
			want:    "198.51.100.1",
		},
		{
			name:    "trusted single address uses first forwarded entry",
			trusted: []string{"127.0.0.1"},
			remote:  "127.0.0.1:5000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.1"},
			want:    "198.51.100.7",
		},
		{
			name:    "untrusted proxy ignored",
			trusted: []string{"10.0.0.0/8"},
			remote:  "192.168.1.1:5000",
			headers: map[string]string{"X-Real-IP": "198.51.100.1"},
			want:    "192.168.1.1:5000",
		},
		{
			name:    "invalid header ignored",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:5000",
			headers: map[string]string{"X-Real-IP": "not-an-ip"},
			want:    "10.1.2.3:5000",
		},
		{
			name:    "invalid trusted entry skipped",
			trusted: []string{"bogus", " 10.0.0.0/8 "},
			remote:  "10.1.2.3:5000",
			headers: map[string]string{"X-Real-IP": "2001:db8::1"},
			want:    "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogger_RecordsStatusAndBytes(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pot", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if rec.Body.String() != "short and stout" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	_, _ = ww.Write([]byte("abc"))
	_, _ = ww.Write([]byte("de"))
	ww.WriteHeader(http.StatusInternalServerError)

	if ww.status != http.StatusOK {
		t.Errorf("status = %d, want 200 after implicit header", ww.status)
	}
	if ww.bytes != 5 {
		t.Errorf("bytes = %d, want 5", ww.bytes)
	}
	if ww.Unwrap() != rec {
		t.Error("Unwrap did not return the underlying writer")
	}
}

func TestTwilioSignature(t *testing.T) {
	const token = "secret-token"
	form := url.Values{"From": {"+15551234567"}, "Body": {"Yes"}}

	tests := []struct {
		name       string
		cfg        SignatureConfig
		target     string
		proto      string
		sign       string
		wantStatus int
	}{
		{
			name:       "disabled passes",
			cfg:        SignatureConfig{AuthToken: token},
			target:     "http://example.com/sms",
			wantStatus: http.StatusOK,
		},
		{
			name:       "configured url",
			cfg:        SignatureConfig{AuthToken: token, WebhookURL: "https://hooks.example.com/sms", Enabled: true},
			target:     "http://internal:8080/sms",
			sign:       "https://hooks.example.com/sms",
			wantStatus: http.StatusOK,
		},
		{
			name:       "rebuilt from forwarded proto",
			cfg:        SignatureConfig{AuthToken: token, Enabled: true},
			target:     "http://hooks.example.com/sms?x=1",
			proto:      "https",
			sign:       "https://hooks.example.com/sms?x=1",
			wantStatus: http.StatusOK,
		},
		{
			name:       "signed for another url",
			cfg:        SignatureConfig{AuthToken: token, Enabled: true},
			target:     "http://hooks.example.com/sms",
			sign:       "http://evil.example.com/sms",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing signature",
			cfg:        SignatureConfig{AuthToken: token, Enabled: true},
			target:     "http://hooks.example.com/sms",
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := TwilioSignature(tt.cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			if tt.sign != "" {
				req.Header.Set("X-Twilio-Signature", questionnaire.Signature(token, tt.sign, form))
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
