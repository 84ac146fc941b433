package questionnaire

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultTwilioAPI is the Twilio REST base URL.
const DefaultTwilioAPI = "https://api.twilio.com"

// Messenger sends outbound text messages.
type Messenger interface {
	Send(ctx context.Context, to, body string) error
}

// TwilioConfig configures a TwilioMessenger.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	BaseURL    string
	RetryMax   int
	Logger     *slog.Logger
}

// TwilioMessenger sends SMS through the Twilio Messages API, retrying
// failures that cannot have delivered the message.
type TwilioMessenger struct {
	client   *retryablehttp.Client
	endpoint string
	sid      string
	token    string
	from     string
}

// NewTwilioMessenger builds a messenger from cfg.
func NewTwilioMessenger(cfg TwilioConfig) (*TwilioMessenger, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil, fmt.Errorf("twilio: account SID, auth token and from number are required")
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultTwilioAPI
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	if client.RetryMax <= 0 {
		client.RetryMax = 3
	}
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.CheckRetry = sendRetryPolicy
	if cfg.Logger != nil {
		client.Logger = cfg.Logger
	} else {
		client.Logger = slog.Default()
	}

	return &TwilioMessenger{
		client:   client,
		endpoint: fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", base, url.PathEscape(cfg.AccountSID)),
		sid:      cfg.AccountSID,
		token:    cfg.AuthToken,
		from:     cfg.From,
	}, nil
}

// sendRetryPolicy retries a message POST only when Twilio cannot have
// accepted it: the connection was never made, or the request was throttled.
// A 5xx or a dropped response may already have queued the message.
func sendRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		var opErr *net.OpError
		return errors.As(err, &opErr) && opErr.Op == "dial", nil
	}
	return resp.StatusCode == http.StatusTooManyRequests, nil
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send posts one message.
func (m *TwilioMessenger) Send(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", m.from)
	form.Set("Body", body)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("twilio: build request: %w", err)
	}
	req.SetBasicAuth(m.sid, m.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio: send to %s: %w", to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var te twilioError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &te) == nil && te.Message != "" {
		return fmt.Errorf("twilio: send to %s: status %d: %s (code %d)", to, resp.StatusCode, te.Message, te.Code)
	}
	return fmt.Errorf("twilio: send to %s: status %d", to, resp.StatusCode)
}

// Signature computes the X-Twilio-Signature value for a form POST to
// fullURL: base64(HMAC-SHA1(authToken, fullURL + sorted key/value pairs)).
func Signature(authToken, fullURL string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		for _, v := range params[k] {
			b.WriteString(k)
			b.WriteString(v)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidSignature reports whether signature matches the request parameters.
func ValidSignature(authToken, fullURL string, params url.Values, signature string) bool {
	if signature == "" {
		return false
	}
	want := Signature(authToken, fullURL, params)
	return hmac.Equal([]byte(want), []byte(signature))
}

type twiml struct {
	XMLName  xml.Name `xml:"Response"`
	Messages []string `xml:"Message"`
}

// TwiML renders a messaging response containing reply. An empty reply
// produces an empty response.
func TwiML(reply string) ([]byte, error) {
	var doc twiml
	if reply != "" {
		doc.Messages = []string{reply}
	}
	out, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode twiml: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
