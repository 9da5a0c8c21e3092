// Package registration submits a registration form as JSON and reports
// the result on a status display.
package registration

import "context"

// Submitter runs the submission lifecycle for one form and one display.
type Submitter struct {
	sender  Sender
	form    Form
	display Display
}

// Result is what an asynchronous submission resolves to.
type Result struct {
	Outcome *Outcome
	Err     error
}

func NewSubmitter(sender Sender, form Form, display Display) *Submitter {
	return &Submitter{sender: sender, form: form, display: display}
}

// Submit collects the form, posts it and shows the outcome. The form is
// reset only on success. A transport or parse error is returned as is
// and leaves both the display and the form untouched.
func (s *Submitter) Submit(ctx context.Context) (*Outcome, error) {
	return s.send(ctx, Collect(s.form))
}

// SubmitAsync collects the form now and sends it on a new goroutine.
// Overlapping calls are not serialized.
func (s *Submitter) SubmitAsync(ctx context.Context) <-chan Result {
	payload := Collect(s.form)
	done := make(chan Result, 1)
	go func() {
		outcome, err := s.send(ctx, payload)
		done <- Result{Outcome: outcome, Err: err}
	}()
	return done
}

func (s *Submitter) send(ctx context.Context, payload Payload) (*Outcome, error) {
	outcome, err := s.sender.Send(ctx, payload)
	if err != nil {
		return nil, err
	}
	s.display.Show(Render(outcome))
	if outcome.Success {
		s.form.Reset()
	}
	return outcome, nil
}
