package questionnaire

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sync"
	"time"
)

// Submission is a completed survey.
type Submission struct {
	Sender    string    `json:"sender"`
	Responses []string  `json:"responses"`
	Completed time.Time `json:"completed"`
}

// ResponseSink receives completed surveys.
type ResponseSink interface {
	Save(ctx context.Context, sub Submission) error
}

// Collector is an in-memory ResponseSink. Submissions are lost on restart.
type Collector struct {
	mu   sync.Mutex
	subs []Submission
}

func (c *Collector) Save(_ context.Context, sub Submission) error {
	sub.Responses = append([]string(nil), sub.Responses...)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return nil
}

// Submissions returns a copy of everything collected so far.
func (c *Collector) Submissions() []Submission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Submission(nil), c.subs...)
}

// WriteCSV writes one row per submission with the sender first, followed by
// one column per question.
func (c *Collector) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append([]string{"sender"}, Columns()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, sub := range c.Submissions() {
		row := make([]string, len(header))
		row[0] = sub.Sender
		copy(row[1:], sub.Responses)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", sub.Sender, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
