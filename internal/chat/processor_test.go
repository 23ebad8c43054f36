package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityclinic/desk-assistant/internal/appointments"
	"github.com/cityclinic/desk-assistant/pkg/logging"
)

// stubChatter returns a canned reply and records what it was sent.
type stubChatter struct {
	reply        string
	err          error
	gotHistory   []Message
	gotUtterance string
}

func (s *stubChatter) Send(_ context.Context, history []Message, utterance string) (string, error) {
	s.gotHistory = history
	s.gotUtterance = utterance
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// stubStore records conditional inserts against a fixed appointment book.
type stubStore struct {
	appts     []appointments.Appointment
	created   []appointments.Fields
	createErr error
	listErr   error
}

func (s *stubStore) List(context.Context) ([]appointments.Appointment, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.appts, nil
}

func (s *stubStore) CreateIfFree(_ context.Context, f appointments.Fields) (*appointments.Appointment, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, f)
	return &appointments.Appointment{
		ID: "appt-1", Name: f.Name, Contact: f.Contact,
		Doctor: f.Doctor, Date: f.Date, Time: f.Time,
	}, nil
}

type stubNotifier struct {
	confirmed []appointments.Appointment
	err       error
}

func (s *stubNotifier) BookingConfirmed(_ context.Context, appt appointments.Appointment) error {
	s.confirmed = append(s.confirmed, appt)
	return s.err
}

func newTestProcessor(chatter Chatter, store BookingStore) (*Processor, *MemorySessionStore) {
	sessions := NewMemorySessionStore()
	p := NewProcessor(chatter, store, sessions, nil, time.Second, logging.New("error"))
	return p, sessions
}

func TestProcessTurnPassThroughNoBooking(t *testing.T) {
	chatter := &stubChatter{reply: `{"reply":"What is your name?","query":null}`}
	store := &stubStore{}
	p, sessions := newTestProcessor(chatter, store)

	reply, err := p.ProcessTurn(context.Background(), "s1", "I want to book an appointment")
	require.NoError(t, err)

	assert.Equal(t, "What is your name?", reply.Reply)
	assert.Equal(t, Decision{Kind: DecisionNone}, reply.Decision())
	assert.Empty(t, store.created)

	hist, err := sessions.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, hist, len(SeedHistory())+2)
	assert.Equal(t, Message{Role: RoleUser, Text: "I want to book an appointment"}, hist[len(hist)-2])
	assert.Equal(t, Message{Role: RoleModel, Text: "What is your name?"}, hist[len(hist)-1])
}

func TestProcessTurnGroundsBookedSlots(t *testing.T) {
	chatter := &stubChatter{reply: `{"reply":"Noted","query":null}`}
	store := &stubStore{appts: []appointments.Appointment{
		{Doctor: "surgeon", Date: "2025-06-10", Time: "4:00 PM"},
		{Doctor: "surgeon", Date: "2025-06-11", Time: "4:10 PM"},
	}}
	p, sessions := newTestProcessor(chatter, store)

	_, err := p.ProcessTurn(context.Background(), "s1", "Tuesday at 4?")
	require.NoError(t, err)

	want := "Tuesday at 4? The doctor is already booked on the following dates and times: " +
		"2025-06-10 4:00 PM, 2025-06-11 4:10 PM."
	assert.Equal(t, want, chatter.gotUtterance)

	// what was sent is what was recorded
	hist, err := sessions.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, want, hist[len(hist)-2].Text)
}

func TestProcessTurnCreatesBooking(t *testing.T) {
	chatter := &stubChatter{reply: `{"reply":"Booked!","query":{"name":"Jane Doe","contact":"9876543210","doctor":"surgeon","date":"2025-06-10","time":"4:00 PM"}}`}
	store := &stubStore{}
	notifier := &stubNotifier{}
	p := NewProcessor(chatter, store, NewMemorySessionStore(), notifier, time.Second, logging.New("error"))

	reply, err := p.ProcessTurn(context.Background(), "s1", "yes, confirm it")
	require.NoError(t, err)

	assert.Equal(t, "Booked!", reply.Reply)
	require.Len(t, store.created, 1)
	assert.Equal(t, appointments.Fields{
		Name: "Jane Doe", Contact: "9876543210", Doctor: "surgeon",
		Date: "2025-06-10", Time: "4:00 PM",
	}, store.created[0])
	require.Len(t, notifier.confirmed, 1)
	assert.Equal(t, "appt-1", notifier.confirmed[0].ID)
}

func TestProcessTurnBookingFailureIsSwallowed(t *testing.T) {
	chatter := &stubChatter{reply: `{"reply":"Booked!","query":{"name":"Jane Doe","contact":"9876543210","doctor":"surgeon","date":"2025-06-10","time":"4:00 PM"}}`}
	store := &stubStore{createErr: errors.New("connection refused")}
	p, _ := newTestProcessor(chatter, store)

	reply, err := p.ProcessTurn(context.Background(), "s1", "yes")

	require.NoError(t, err)
	assert.Equal(t, "Booked!", reply.Reply)
}

func TestProcessTurnSlotConflictIsSwallowed(t *testing.T) {
	chatter := &stubChatter{reply: `{"reply":"Booked!","query":{"name":"Jane","contact":"9876543210","doctor":"surgeon","date":"2025-06-10","time":"4:00 PM"}}`}
	store := &stubStore{createErr: appointments.ErrSlotTaken}
	p, _ := newTestProcessor(chatter, store)

	reply, err := p.ProcessTurn(context.Background(), "s1", "yes")

	require.NoError(t, err)
	assert.Equal(t, "Booked!", reply.Reply)
}

func TestProcessTurnEndResetsSession(t *testing.T) {
	store := &stubStore{}
	chatter := &stubChatter{reply: `{"reply":"Sure, what do you need?","query":null}`}
	p, sessions := newTestProcessor(chatter, store)

	_, err := p.ProcessTurn(context.Background(), "s1", "hello")
	require.NoError(t, err)

	chatter.reply = `{"reply":"Goodbye!","query":"END"}`
	reply, err := p.ProcessTurn(context.Background(), "s1", "bye")
	require.NoError(t, err)
	assert.Equal(t, "Goodbye!", reply.Reply)

	hist, err := sessions.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, SeedHistory(), hist)
}

func TestProcessTurnUpstreamFailure(t *testing.T) {
	chatter := &stubChatter{err: ErrNoResponse}
	p, sessions := newTestProcessor(chatter, &stubStore{})

	_, err := p.ProcessTurn(context.Background(), "s1", "hello")
	assert.ErrorIs(t, err, ErrNoResponse)

	// a failed turn records nothing
	hist, histErr := sessions.History(context.Background(), "s1")
	require.NoError(t, histErr)
	assert.Equal(t, SeedHistory(), hist)
}

func TestProcessTurnDegradedReplyRecorded(t *testing.T) {
	chatter := &stubChatter{reply: "Please only ask about appointments."}
	p, _ := newTestProcessor(chatter, &stubStore{})

	reply, err := p.ProcessTurn(context.Background(), "s1", "what is the weather?")
	require.NoError(t, err)
	assert.Equal(t, "Please only ask about appointments.", reply.Reply)
	assert.Nil(t, reply.Query)
}

func TestProcessTurnEmptySessionUsesDefault(t *testing.T) {
	chatter := &stubChatter{reply: `{"reply":"ok","query":null}`}
	p, sessions := newTestProcessor(chatter, &stubStore{})

	_, err := p.ProcessTurn(context.Background(), "", "first")
	require.NoError(t, err)

	hist, err := sessions.History(context.Background(), DefaultSessionID)
	require.NoError(t, err)
	assert.Len(t, hist, len(SeedHistory())+2)
}
