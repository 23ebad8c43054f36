package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cityclinic/desk-assistant/internal/appointments"
	"github.com/cityclinic/desk-assistant/pkg/logging"
)

const defaultTurnTimeout = 30 * time.Second

var tracer = otel.Tracer("cityclinic.internal.chat")

// BookingStore is the slice of the appointment store the processor uses:
// a full scan for grounding, and a conditional insert for booking commands.
type BookingStore interface {
	List(ctx context.Context) ([]appointments.Appointment, error)
	CreateIfFree(ctx context.Context, f appointments.Fields) (*appointments.Appointment, error)
}

// Notifier receives successfully persisted bookings. Failures are logged and
// never fail the turn.
type Notifier interface {
	BookingConfirmed(ctx context.Context, appt appointments.Appointment) error
}

// Processor owns per-session conversation state and runs one turn at a time
// per session: ground the utterance with booked slots, ask the reasoning
// service, parse its decision, and apply at most one side effect.
type Processor struct {
	chatter  Chatter
	store    BookingStore
	sessions SessionStore
	notifier Notifier
	logger   *logging.Logger
	timeout  time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewProcessor creates a turn processor. notifier may be nil; timeout <= 0
// falls back to the default per-turn limit.
func NewProcessor(chatter Chatter, store BookingStore, sessions SessionStore, notifier Notifier, timeout time.Duration, logger *logging.Logger) *Processor {
	if chatter == nil {
		panic("chat: chatter required")
	}
	if store == nil {
		panic("chat: booking store required")
	}
	if sessions == nil {
		panic("chat: session store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = defaultTurnTimeout
	}
	return &Processor{
		chatter:  chatter,
		store:    store,
		sessions: sessions,
		notifier: notifier,
		logger:   logger,
		timeout:  timeout,
		locks:    make(map[string]*sync.Mutex),
	}
}

// ProcessTurn runs one conversational turn for the given session. The
// returned reply is always the model's (possibly degraded) output; an error
// means the reasoning service or session storage failed and the turn
// produced nothing.
func (p *Processor) ProcessTurn(ctx context.Context, sessionID, userPrompt string) (*TurnReply, error) {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	lock := p.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	ctx, span := tracer.Start(ctx, "chat.turn")
	defer span.End()
	span.SetAttributes(attribute.String("chat.session_id", sessionID))

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	history, err := p.sessions.History(ctx, sessionID)
	if err != nil {
		chatTurnsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	appts, err := p.store.List(ctx)
	if err != nil {
		chatTurnsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("chat: failed to load booked slots: %w", err)
	}
	augmented := augmentUtterance(userPrompt, appts)

	start := time.Now()
	raw, err := p.chatter.Send(ctx, history, augmented)
	status := "ok"
	if err != nil {
		status = "error"
	}
	llmLatency.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if err != nil {
		chatTurnsTotal.WithLabelValues("failed").Inc()
		span.RecordError(err)
		return nil, err
	}

	reply := ParseReply(raw)
	decision := reply.Decision()
	span.SetAttributes(attribute.String("chat.decision", string(decision.Kind)))

	switch decision.Kind {
	case DecisionEnd:
		if err := p.sessions.Reset(ctx, sessionID); err != nil {
			p.logger.Error("failed to reset session", "session_id", sessionID, "error", err)
		}
		chatTurnsTotal.WithLabelValues("ended").Inc()
		return &reply, nil

	case DecisionBook:
		p.createBooking(ctx, sessionID, decision.Booking)
		chatTurnsTotal.WithLabelValues("booked").Inc()

	default:
		chatTurnsTotal.WithLabelValues("replied").Inc()
	}

	// The augmented utterance is both what the model saw and what the next
	// turn's history replays.
	if err := p.sessions.Append(ctx, sessionID,
		Message{Role: RoleUser, Text: augmented},
		Message{Role: RoleModel, Text: reply.Reply},
	); err != nil {
		p.logger.Error("failed to record turn", "session_id", sessionID, "error", err)
	}

	return &reply, nil
}

// createBooking persists a confirmed booking command. Any failure is logged
// and swallowed: the user still receives the model's reply.
func (p *Processor) createBooking(ctx context.Context, sessionID string, booking *Booking) {
	appt, err := p.store.CreateIfFree(ctx, appointments.Fields{
		Name:    booking.Name,
		Contact: booking.Contact,
		Doctor:  booking.Doctor,
		Date:    booking.Date,
		Time:    booking.Time,
	})
	if errors.Is(err, appointments.ErrSlotTaken) {
		bookingsTotal.WithLabelValues("conflict").Inc()
		p.logger.Warn("booking slot already taken",
			"session_id", sessionID, "doctor", booking.Doctor,
			"date", booking.Date, "time", booking.Time)
		return
	}
	if err != nil {
		bookingsTotal.WithLabelValues("error").Inc()
		p.logger.Error("failed to save appointment", "session_id", sessionID, "error", err)
		return
	}

	bookingsTotal.WithLabelValues("created").Inc()
	p.logger.Info("appointment created",
		"appointment_id", appt.ID, "doctor", appt.Doctor,
		"date", appt.Date, "time", appt.Time)

	if p.notifier != nil {
		if err := p.notifier.BookingConfirmed(ctx, *appt); err != nil {
			p.logger.Error("failed to send booking confirmation", "appointment_id", appt.ID, "error", err)
		}
	}
}

// augmentUtterance appends the booked-slots annotation the model is told to
// expect. Nothing is appended while the book is empty.
func augmentUtterance(userPrompt string, appts []appointments.Appointment) string {
	if len(appts) == 0 {
		return userPrompt
	}
	slots := make([]string, 0, len(appts))
	for _, a := range appts {
		slots = append(slots, a.BookedSlot())
	}
	return userPrompt + " The doctor is already booked on the following dates and times: " + strings.Join(slots, ", ") + "."
}

func (p *Processor) sessionLock(sessionID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	lock, ok := p.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[sessionID] = lock
	}
	return lock
}
