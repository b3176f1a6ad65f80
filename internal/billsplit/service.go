package billsplit

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/susu3304/splitbot/internal/db"
	"github.com/susu3304/splitbot/internal/settle"
)

var ErrHistoryDisabled = errors.New("settlement history is not configured")

// History stores finished settlement runs. *db.DB implements it.
type History interface {
	InsertSettlement(ctx context.Context, rec *db.SettlementRecord) (int64, error)
	ListSettlements(ctx context.Context, sessionID string, limit int) ([]db.SettlementRecord, error)
	GetSettlement(ctx context.Context, id int64) (*db.SettlementRecord, error)
}

// Session is the form state of one channel or web client.
type Session struct {
	ID           string               `json:"id"`
	Bill         string               `json:"bill"`
	Participants []settle.Participant `json:"participants"`
	Transactions []settle.Transaction `json:"transactions"`
}

type Service struct {
	mu      sync.Mutex
	store   map[string]*Session
	history History
}

// NewService creates a Service. history may be nil.
func NewService(history History) *Service {
	return &Service{store: make(map[string]*Session), history: history}
}

func (s *Service) session(id string) *Session {
	sess, ok := s.store[id]
	if !ok {
		sess = &Session{ID: id}
		s.store[id] = sess
	}
	return sess
}

// SetBill stores the raw bill text; it is parsed when calculating. ok reports
// whether the text currently parses.
func (s *Service) SetBill(id, raw string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw = strings.TrimSpace(raw)
	s.session(id).Bill = raw
	return ParseBill(raw)
}

func (s *Service) AddParticipant(id, name, rawAmount string) (settle.Participant, error) {
	p, err := NewParticipant(name, rawAmount)
	if err != nil {
		return settle.Participant{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(id)
	sess.Participants = append(sess.Participants, p)
	return p, nil
}

func (s *Service) Participants(id string) []settle.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.store[id]
	if !ok {
		return nil
	}
	return append([]settle.Participant(nil), sess.Participants...)
}

// Snapshot returns a copy of the session state. Unknown ids yield an empty session.
func (s *Service) Snapshot(id string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.store[id]
	if !ok {
		return Session{ID: id}
	}
	return Session{
		ID:           sess.ID,
		Bill:         sess.Bill,
		Participants: append([]settle.Participant(nil), sess.Participants...),
		Transactions: append([]settle.Transaction(nil), sess.Transactions...),
	}
}

// Calculate settles the session's current bill and participants. It returns
// ErrNoParticipants or ErrBillMissing without touching the previous result.
func (s *Service) Calculate(ctx context.Context, id string) (*Result, error) {
	s.mu.Lock()
	sess := s.session(id)
	res, err := compute(sess.Bill, append([]settle.Participant(nil), sess.Participants...))
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	sess.Transactions = res.Transactions
	s.mu.Unlock()

	if s.history != nil {
		rec := &db.SettlementRecord{
			SessionID:    id,
			Bill:         res.Bill,
			Share:        res.Share,
			Participants: res.Participants,
			Transactions: res.Transactions,
		}
		settlementID, err := s.history.InsertSettlement(ctx, rec)
		if err != nil {
			log.Printf("history: failed to record settlement for session %s: %v", id, err)
		} else {
			res.SettlementID = settlementID
		}
	}
	return res, nil
}

// Reset forgets the session entirely.
func (s *Service) Reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, id)
}

func (s *Service) History(ctx context.Context, id string, limit int) ([]db.SettlementRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.ListSettlements(ctx, id, limit)
}

func (s *Service) Settlement(ctx context.Context, settlementID int64) (*db.SettlementRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.GetSettlement(ctx, settlementID)
}
