package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/surveyviz/internal/logging"
)

// Replies sent outside the question prompts.
const (
	ReplyOptOut       = "You have opted out of the survey. Thank you."
	ReplyNeedConsent  = "Please respond with Yes or No to consent."
	ReplyInvalid      = "Invalid input. Please try again."
	ReplyComplete     = "Thank you for completing the survey!"
	ReplyStateCorrupt = "An error occurred. Please start the survey again."
)

// ErrNoSender is returned for messages without a sender address.
var ErrNoSender = errors.New("questionnaire: message has no sender")

// Flow advances each sender through Questions.
type Flow struct {
	store Store
	sink  ResponseSink
	now   func() time.Time
}

// NewFlow creates a flow keeping state in store and delivering completed
// surveys to sink.
func NewFlow(store Store, sink ResponseSink) *Flow {
	return &Flow{store: store, sink: sink, now: time.Now}
}

// Handle processes one inbound message and returns the reply to send.
func (f *Flow) Handle(ctx context.Context, sender, message string) (string, error) {
	if sender == "" {
		return "", ErrNoSender
	}
	msg := strings.TrimSpace(message)
	logger := logging.WithFields(ctx, "sender", sender)

	st, ok, err := f.store.Get(ctx, sender)
	if err != nil {
		return "", fmt.Errorf("load state: %w", err)
	}
	if !ok {
		st = State{Sender: sender}
		logger.Info("survey session started")
	}

	if st.Current < 0 || st.Current >= len(Questions) {
		logger.Error("survey state out of range", "question", st.Current)
		return ReplyStateCorrupt, f.forget(ctx, sender)
	}

	if st.Current == 0 {
		return f.consent(ctx, logger, st, msg)
	}

	q := st.Current
	if !Validate(q, msg) {
		logger.Warn("invalid survey answer", "question", q+1)
		return ReplyInvalid, f.save(ctx, st)
	}

	st.Responses = append(st.Responses, msg)
	if q+1 < len(Questions) {
		st.Current++
		return Questions[st.Current].Prompt, f.save(ctx, st)
	}

	sub := Submission{Sender: sender, Responses: st.Responses, Completed: f.now()}
	if err := f.sink.Save(ctx, sub); err != nil {
		// The respondent cannot retry, so the reply stays the same.
		logger.Error("failed to save survey responses", "error", err)
	} else {
		logger.Info("survey completed", "answers", len(sub.Responses))
	}
	return ReplyComplete, f.forget(ctx, sender)
}

// Start resets any progress for to and sends the consent question.
func (f *Flow) Start(ctx context.Context, m Messenger, to string) error {
	if to == "" {
		return ErrNoSender
	}
	if err := f.forget(ctx, to); err != nil {
		return err
	}
	if err := m.Send(ctx, to, Questions[0].Prompt); err != nil {
		return fmt.Errorf("send consent question: %w", err)
	}
	logging.FromContext(ctx).Info("survey invitation sent", "to", to)
	return nil
}

func (f *Flow) consent(ctx context.Context, logger *slog.Logger, st State, msg string) (string, error) {
	switch strings.ToLower(msg) {
	case "yes":
		st.Responses = append(st.Responses, msg)
		st.Current = 1
		logger.Info("survey consent given")
		return Questions[1].Prompt, f.save(ctx, st)
	case "no":
		logger.Info("survey declined")
		return ReplyOptOut, f.forget(ctx, st.Sender)
	default:
		logger.Warn("invalid consent response")
		return ReplyNeedConsent, f.save(ctx, st)
	}
}

func (f *Flow) save(ctx context.Context, st State) error {
	if err := f.store.Put(ctx, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (f *Flow) forget(ctx context.Context, sender string) error {
	if err := f.store.Delete(ctx, sender); err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}
