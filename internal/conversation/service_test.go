package conversation

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/citabot/citabot/internal/bookings"
)

// stubBookings lets tests inject availability and commit outcomes
type stubBookings struct {
	available bool
	availErr  error
	createErr error
	created   []*bookings.CreateBookingRequest
}

func (s *stubBookings) IsSlotAvailable(ctx context.Context, date, timeStr string) (bool, error) {
	return s.available, s.availErr
}

func (s *stubBookings) CreateBooking(ctx context.Context, req *bookings.CreateBookingRequest) (*bookings.Booking, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, req)
	return &bookings.Booking{Name: req.Name, Phone: req.Phone, Date: req.Date, Time: req.Time}, nil
}

func newTestService() (*ConversationService, *InMemoryStore) {
	store := NewInMemoryStore()
	bookingService := bookings.NewService(bookings.NewInMemoryStore())
	return NewService(store, bookingService, zap.NewNop()), store
}

// reach drives a fresh sender through the flow up to the requested stage
func reach(t *testing.T, svc *ConversationService, senderID string, stage Stage) {
	t.Helper()
	ctx := context.Background()

	steps := []string{"Alice", "12345678901", "2025-03-01", "14:30"}
	targets := []Stage{StageAwaitingPhone, StageAwaitingDate, StageAwaitingTime, StageAwaitingConfirmation}

	for i, input := range steps {
		svc.HandleMessage(ctx, senderID, input)
		if targets[i] == stage {
			return
		}
	}
}

func TestHandleMessageFirstContact(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	reply := svc.HandleMessage(ctx, "+5491100000001", "Alice")

	assert.Contains(t, reply, "Alice")
	assert.Contains(t, reply, "teléfono")

	session, ok := store.GetSession(ctx, "+5491100000001")
	require.True(t, ok)
	assert.Equal(t, StageAwaitingPhone, session.Stage)
	assert.Equal(t, "Alice", session.Name)
}

func TestHandleMessageEmptyNameReprompts(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	reply := svc.HandleMessage(ctx, "sender", "   ")

	assert.Equal(t, replyAskName, reply)

	session, ok := store.GetSession(ctx, "sender")
	require.True(t, ok)
	assert.Equal(t, StageAwaitingName, session.Stage)
	assert.Empty(t, session.Name)
}

func TestHandleMessagePhoneValidation(t *testing.T) {
	invalid := []string{"abc", "123", "12345678", "+12 345", "1234567890123456", "+abc1234567890"}

	for _, input := range invalid {
		t.Run(input, func(t *testing.T) {
			svc, store := newTestService()
			ctx := context.Background()
			svc.HandleMessage(ctx, "sender", "Alice")

			// repeated rejection leaves the stage and fields untouched
			for i := 0; i < 3; i++ {
				reply := svc.HandleMessage(ctx, "sender", input)
				assert.Equal(t, replyInvalidPhone, reply)
			}

			session, ok := store.GetSession(ctx, "sender")
			require.True(t, ok)
			assert.Equal(t, StageAwaitingPhone, session.Stage)
			assert.Empty(t, session.Phone)
		})
	}

	t.Run("accepts leading plus and surrounding whitespace", func(t *testing.T) {
		svc, store := newTestService()
		ctx := context.Background()
		svc.HandleMessage(ctx, "sender", "Alice")

		reply := svc.HandleMessage(ctx, "sender", "  +5491112345678  ")
		assert.Equal(t, replyAskDate, reply)

		session, _ := store.GetSession(ctx, "sender")
		assert.Equal(t, "+5491112345678", session.Phone)
		assert.Equal(t, StageAwaitingDate, session.Stage)
	})
}

func TestHandleMessageDateRejectionIsIdempotent(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	reach(t, svc, "sender", StageAwaitingDate)

	for i := 0; i < 5; i++ {
		reply := svc.HandleMessage(ctx, "sender", "01-03-2025")
		assert.Equal(t, replyInvalidDate, reply)
	}

	session, ok := store.GetSession(ctx, "sender")
	require.True(t, ok)
	assert.Equal(t, StageAwaitingDate, session.Stage)
	assert.Empty(t, session.Date)
}

func TestHandleMessageTimeValidation(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	reach(t, svc, "sender", StageAwaitingTime)

	reply := svc.HandleMessage(ctx, "sender", "2pm")
	assert.Equal(t, replyInvalidTime, reply)

	session, _ := store.GetSession(ctx, "sender")
	assert.Equal(t, StageAwaitingTime, session.Stage)
	assert.Empty(t, session.Time)
}

func TestHandleMessageSlotTakenRoutesBackToDate(t *testing.T) {
	store := NewInMemoryStore()
	bookingStore := bookings.NewInMemoryStore()
	svc := NewService(store, bookings.NewService(bookingStore), zap.NewNop())
	ctx := context.Background()

	// occupy the slot first
	err := bookingStore.CreateBooking(ctx, &bookings.Booking{
		Name: "Bob", Phone: "12345678901", Date: "2025-03-01", Time: "14:30",
	})
	require.NoError(t, err)

	reach(t, svc, "sender", StageAwaitingTime)
	reply := svc.HandleMessage(ctx, "sender", "14:30")

	assert.Equal(t, replySlotTaken, reply)

	session, ok := store.GetSession(ctx, "sender")
	require.True(t, ok)
	assert.Equal(t, StageAwaitingDate, session.Stage)
}

func TestHandleMessageAvailabilityErrorTreatedAsTaken(t *testing.T) {
	store := NewInMemoryStore()
	stub := &stubBookings{availErr: fmt.Errorf("connection refused")}
	svc := NewService(store, stub, zap.NewNop())
	ctx := context.Background()

	reach(t, svc, "sender", StageAwaitingTime)
	reply := svc.HandleMessage(ctx, "sender", "14:30")

	assert.Equal(t, replySlotTaken, reply)

	session, _ := store.GetSession(ctx, "sender")
	assert.Equal(t, StageAwaitingDate, session.Stage)
}

func TestHandleMessageEndToEnd(t *testing.T) {
	store := NewInMemoryStore()
	bookingStore := bookings.NewInMemoryStore()
	svc := NewService(store, bookings.NewService(bookingStore), zap.NewNop())
	ctx := context.Background()

	reply := svc.HandleMessage(ctx, "A", "Alice")
	assert.Contains(t, reply, "teléfono")

	reply = svc.HandleMessage(ctx, "A", "12345678901")
	assert.Equal(t, replyAskDate, reply)

	reply = svc.HandleMessage(ctx, "A", "2025-03-01")
	assert.Equal(t, replyAskTime, reply)

	reply = svc.HandleMessage(ctx, "A", "14:30")
	assert.Contains(t, reply, "2025-03-01")
	assert.Contains(t, reply, "14:30")

	reply = svc.HandleMessage(ctx, "A", "si")
	assert.Contains(t, reply, "Cita agendada")
	assert.Contains(t, reply, "2025-03-01")
	assert.Contains(t, reply, "14:30")

	// session gone, slot occupied
	_, ok := store.GetSession(ctx, "A")
	assert.False(t, ok)

	available, err := bookingStore.IsSlotAvailable(ctx, "2025-03-01", "14:30")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestConfirmationAlwaysTerminates(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		createErr error
		wantReply string
	}{
		{name: "affirmative", input: "si", wantReply: replyBooked},
		{name: "affirmative accented upper", input: "SÍ", wantReply: replyBooked},
		{name: "negative", input: "no", wantReply: replyCancelled},
		{name: "unrelated text", input: "tal vez", wantReply: replyCancelled},
		{name: "save failure", input: "si", createErr: fmt.Errorf("unique violation"), wantReply: replySaveError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewInMemoryStore()
			stub := &stubBookings{available: true, createErr: tc.createErr}
			svc := NewService(store, stub, zap.NewNop())
			ctx := context.Background()

			reach(t, svc, "sender", StageAwaitingConfirmation)
			reply := svc.HandleMessage(ctx, "sender", tc.input)

			if tc.wantReply == replyBooked {
				assert.Contains(t, reply, "Cita agendada")
			} else {
				assert.Equal(t, tc.wantReply, reply)
			}

			// every confirmation outcome removes the session
			_, ok := store.GetSession(ctx, "sender")
			assert.False(t, ok)

			// the next message starts a brand-new dialogue
			reply = svc.HandleMessage(ctx, "sender", "Carol")
			assert.Contains(t, reply, "Carol")
			session, ok := store.GetSession(ctx, "sender")
			require.True(t, ok)
			assert.Equal(t, StageAwaitingPhone, session.Stage)
			assert.Empty(t, session.Phone)
		})
	}
}

func TestHandleMessageUnknownStageIsNoOp(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	session := store.GetOrCreateSession(ctx, "sender")
	session.Stage = Stage("corrupted")

	reply := svc.HandleMessage(ctx, "sender", "hola")

	assert.Empty(t, reply)
	session, ok := store.GetSession(ctx, "sender")
	require.True(t, ok)
	assert.Equal(t, Stage("corrupted"), session.Stage)
	assert.Empty(t, session.Name)
}

func TestConcurrentSendersDoNotInterleave(t *testing.T) {
	store := NewInMemoryStore()
	bookingStore := bookings.NewInMemoryStore()
	svc := NewService(store, bookings.NewService(bookingStore), zap.NewNop())
	ctx := context.Background()

	const senders = 20
	var wg sync.WaitGroup

	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			senderID := fmt.Sprintf("sender-%02d", n)
			svc.HandleMessage(ctx, senderID, fmt.Sprintf("User %d", n))
			svc.HandleMessage(ctx, senderID, "12345678901")
			svc.HandleMessage(ctx, senderID, fmt.Sprintf("2025-03-%02d", n+1))
			svc.HandleMessage(ctx, senderID, "14:30")
			svc.HandleMessage(ctx, senderID, "si")
		}(i)
	}
	wg.Wait()

	// every sender booked a distinct date, so all commits must have succeeded
	for i := 0; i < senders; i++ {
		available, err := bookingStore.IsSlotAvailable(ctx, fmt.Sprintf("2025-03-%02d", i+1), "14:30")
		require.NoError(t, err)
		assert.False(t, available, "sender %d should have booked its slot", i)

		_, ok := store.GetSession(ctx, fmt.Sprintf("sender-%02d", i))
		assert.False(t, ok)
	}
}

func TestConcurrentConfirmationsSingleWinner(t *testing.T) {
	store := NewInMemoryStore()
	bookingStore := bookings.NewInMemoryStore()
	svc := NewService(store, bookings.NewService(bookingStore), zap.NewNop())
	ctx := context.Background()

	// both senders pass the availability check for the same slot
	reach(t, svc, "A", StageAwaitingConfirmation)
	reach(t, svc, "B", StageAwaitingConfirmation)

	var wg sync.WaitGroup
	replies := make([]string, 2)
	for i, senderID := range []string{"A", "B"} {
		wg.Add(1)
		go func(i int, senderID string) {
			defer wg.Done()
			replies[i] = svc.HandleMessage(ctx, senderID, "si")
		}(i, senderID)
	}
	wg.Wait()

	booked, failed := 0, 0
	for _, reply := range replies {
		switch {
		case reply == replySaveError:
			failed++
		default:
			booked++
		}
	}
	assert.Equal(t, 1, booked, "exactly one commit must win the slot")
	assert.Equal(t, 1, failed, "the loser must get the save-error reply")
}
