package conversation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/citabot/citabot/internal/bookings"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern  = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

const (
	replyAskName      = "¡Hola! ¿Cuál es tu nombre?"
	replyAskPhone     = "Gracias, %s. ¿Cuál es tu número de teléfono?"
	replyInvalidPhone = "❌ Formato de teléfono inválido. Intenta nuevamente."
	replyAskDate      = "📅 ¿Para qué fecha deseas la cita? (Formato: YYYY-MM-DD)"
	replyInvalidDate  = "❌ Formato de fecha inválido. Usa YYYY-MM-DD."
	replyAskTime      = "⏰ ¿A qué hora? (Formato: HH:MM en formato 24 horas)"
	replyInvalidTime  = "❌ Formato de hora inválido. Usa HH:MM en formato 24h."
	replySlotTaken    = "❌ Lo sentimos, ya hay una cita agendada en esa fecha y hora. Elige otra."
	replyConfirm      = "📅 Confirmando tu cita para el %s a las %s. ¿Es correcto? (Sí/No)"
	replyBooked       = "✅ Cita agendada para %s a las %s. ¡Te esperamos!"
	replySaveError    = "❌ Ocurrió un error al guardar la cita. Intenta de nuevo."
	replyCancelled    = "❌ Cita cancelada. Empecemos de nuevo. ¿Cuál es tu nombre?"
)

// ConversationService implements the Engine interface. It advances one
// sender's dialogue per message: validates the input for the current stage,
// mutates the session, and consults the booking service at the time and
// confirmation stages.
type ConversationService struct {
	sessions SessionStore
	bookings bookings.BookingManager
	locks    *keyedMutex
	logger   *zap.Logger
}

// NewConversationService creates a new conversation service
func NewConversationService(sessions SessionStore, bookingService bookings.BookingManager, logger *zap.Logger) *ConversationService {
	return &ConversationService{
		sessions: sessions,
		bookings: bookingService,
		locks:    newKeyedMutex(),
		logger:   logger,
	}
}

// NewService creates a new conversation service (alias for NewConversationService)
func NewService(sessions SessionStore, bookingService bookings.BookingManager, logger *zap.Logger) *ConversationService {
	return NewConversationService(sessions, bookingService, logger)
}

// HandleMessage processes one inbound message and returns the reply text.
// Messages from the same sender are serialized; distinct senders proceed
// concurrently. Malformed input never advances the stage and never mutates
// stored fields.
func (s *ConversationService) HandleMessage(ctx context.Context, senderID, text string) string {
	s.locks.Lock(senderID)
	defer s.locks.Unlock(senderID)

	text = strings.TrimSpace(text)
	session := s.sessions.GetOrCreateSession(ctx, senderID)

	switch session.Stage {
	case StageAwaitingName:
		return s.collectName(session, text)
	case StageAwaitingPhone:
		return s.collectPhone(session, text)
	case StageAwaitingDate:
		return s.collectDate(session, text)
	case StageAwaitingTime:
		return s.collectTime(ctx, session, text)
	case StageAwaitingConfirmation:
		return s.confirm(ctx, session, text)
	default:
		// should be unreachable; stay silent rather than crash the dialogue
		s.logger.Warn("Unknown conversation stage",
			zap.String("sender_id", senderID),
			zap.String("stage", string(session.Stage)))
		return ""
	}
}

func (s *ConversationService) collectName(session *Session, text string) string {
	if text == "" {
		return replyAskName
	}

	session.Name = text
	session.Stage = StageAwaitingPhone
	session.UpdatedAt = time.Now()
	return fmt.Sprintf(replyAskPhone, session.Name)
}

func (s *ConversationService) collectPhone(session *Session, text string) string {
	if !phonePattern.MatchString(text) {
		return replyInvalidPhone
	}

	session.Phone = text
	session.Stage = StageAwaitingDate
	session.UpdatedAt = time.Now()
	return replyAskDate
}

func (s *ConversationService) collectDate(session *Session, text string) string {
	if !datePattern.MatchString(text) {
		return replyInvalidDate
	}

	session.Date = text
	session.Stage = StageAwaitingTime
	session.UpdatedAt = time.Now()
	return replyAskTime
}

func (s *ConversationService) collectTime(ctx context.Context, session *Session, text string) string {
	if !timePattern.MatchString(text) {
		return replyInvalidTime
	}

	session.Time = text
	session.UpdatedAt = time.Now()

	available, err := s.bookings.IsSlotAvailable(ctx, session.Date, session.Time)
	if err != nil {
		// an uncertain read must never lead to a double booking
		s.logger.Error("Failed to check slot availability",
			zap.String("sender_id", session.SenderID),
			zap.String("date", session.Date),
			zap.String("time", session.Time),
			zap.Error(err))
		available = false
	}

	if !available {
		session.Stage = StageAwaitingDate
		return replySlotTaken
	}

	session.Stage = StageAwaitingConfirmation
	return fmt.Sprintf(replyConfirm, session.Date, session.Time)
}

// confirm terminates the conversation on every outcome: booked, cancelled
// or save failure. The next message from this sender starts over.
func (s *ConversationService) confirm(ctx context.Context, session *Session, text string) string {
	defer s.sessions.DeleteSession(ctx, session.SenderID)

	if !isAffirmative(text) {
		return replyCancelled
	}

	_, err := s.bookings.CreateBooking(ctx, &bookings.CreateBookingRequest{
		Name:  session.Name,
		Phone: session.Phone,
		Date:  session.Date,
		Time:  session.Time,
	})
	if err != nil {
		s.logger.Error("Failed to save booking",
			zap.String("sender_id", session.SenderID),
			zap.String("date", session.Date),
			zap.String("time", session.Time),
			zap.Error(err))
		return replySaveError
	}

	return fmt.Sprintf(replyBooked, session.Date, session.Time)
}

func isAffirmative(text string) bool {
	lower := strings.ToLower(text)
	return lower == "si" || lower == "sí"
}
