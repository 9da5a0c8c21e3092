package registration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, payload Payload) (*Outcome, error) {
	args := m.Called(ctx, payload)
	outcome, _ := args.Get(0).(*Outcome)
	return outcome, args.Error(1)
}

type mockDisplay struct {
	mock.Mock
}

func (m *mockDisplay) Show(status Status) {
	m.Called(status)
}

func filledForm() *StaticForm {
	form := NewStaticForm("username", "email")
	form.Set("username", "ana")
	form.Set("email", "ana@example.com")
	return form
}

func TestSubmitSuccess(t *testing.T) {
	ctx := context.Background()
	form := filledForm()
	sender := &mockSender{}
	display := &mockDisplay{}

	sender.On("Send", ctx, Payload{"username": "ana", "email": "ana@example.com"}).
		Return(&Outcome{Success: true, StatusCode: 201}, nil).Once()
	display.On("Show", Status{Color: "green", Text: "✅ Registro exitoso"}).Once()

	outcome, err := NewSubmitter(sender, form, display).Submit(ctx)
	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.Equal(t, []Field{{"username", ""}, {"email", ""}}, form.Fields())

	sender.AssertExpectations(t)
	display.AssertExpectations(t)
}

func TestSubmitFailureKeepsForm(t *testing.T) {
	ctx := context.Background()
	form := filledForm()
	sender := &mockSender{}
	display := &mockDisplay{}

	sender.On("Send", ctx, mock.Anything).Return(&Outcome{
		StatusCode: 400,
		Errors:     []FieldError{{"email", "invalid"}, {"name", "required"}},
	}, nil)
	display.On("Show", Status{Color: "red", Text: "❌ Error: invalid | required"}).Once()

	outcome, err := NewSubmitter(sender, form, display).Submit(ctx)
	require.NoError(t, err)
	require.False(t, outcome.Success)

	require.Equal(t, "ana", form.Fields()[0].Value)
	display.AssertExpectations(t)
}

func TestSubmitErrorLeavesDisplayAndForm(t *testing.T) {
	ctx := context.Background()
	form := filledForm()
	sender := &mockSender{}
	display := &mockDisplay{}

	sendErr := errors.Join(ErrMalformedErrorBody, errors.New("expected a JSON object"))
	sender.On("Send", ctx, mock.Anything).Return(nil, sendErr)

	outcome, err := NewSubmitter(sender, form, display).Submit(ctx)
	require.ErrorIs(t, err, ErrMalformedErrorBody)
	require.Nil(t, outcome)

	display.AssertNotCalled(t, "Show", mock.Anything)
	require.Equal(t, "ana@example.com", form.Fields()[1].Value)
}

// gatedSender releases each response only when told to.
type gatedSender struct {
	started chan Payload
	release map[string]chan *Outcome
}

func (g *gatedSender) Send(ctx context.Context, payload Payload) (*Outcome, error) {
	g.started <- payload
	return <-g.release[payload["username"]], nil
}

func TestSubmitAsyncLastResponseWins(t *testing.T) {
	ctx := context.Background()
	sender := &gatedSender{
		started: make(chan Payload, 2),
		release: map[string]chan *Outcome{
			"first":  make(chan *Outcome),
			"second": make(chan *Outcome),
		},
	}
	form := NewStaticForm("username")
	line := NewStatusLine(nil)
	submitter := NewSubmitter(sender, form, line)

	form.Set("username", "first")
	first := submitter.SubmitAsync(ctx)
	<-sender.started

	form.Set("username", "second")
	second := submitter.SubmitAsync(ctx)
	<-sender.started

	// The second request resolves first; the first one lands last.
	sender.release["second"] <- &Outcome{Success: true, StatusCode: 201}
	require.NoError(t, (<-second).Err)

	sender.release["first"] <- &Outcome{StatusCode: 400, Errors: []FieldError{{"username", "taken"}}}
	res := <-first
	require.NoError(t, res.Err)
	require.False(t, res.Outcome.Success)

	status, shown := line.Current()
	require.True(t, shown)
	require.Equal(t, Status{Color: ColorFailure, Text: "❌ Error: taken"}, status)
}

func TestSubmitAsyncCollectsAtSubmitTime(t *testing.T) {
	ctx := context.Background()
	sender := &mockSender{}
	form := NewStaticForm("username")
	form.Set("username", "ana")

	sender.On("Send", ctx, Payload{"username": "ana"}).Return(&Outcome{Success: true}, nil)

	done := NewSubmitter(sender, form, NewStatusLine(nil)).SubmitAsync(ctx)
	form.Set("username", "changed")

	res := <-done
	require.NoError(t, res.Err)
	sender.AssertExpectations(t)
}
