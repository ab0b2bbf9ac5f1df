package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/arb-alert-core/internal/alert"
)

// MemoryStore implementa Store em memória. Serve aos testes e ao modo
// local sem Postgres; a semântica espelha a do PostgresStore.
type MemoryStore struct {
	mu     sync.Mutex
	alerts map[string]*alert.Alert
	users  map[string]*User
	bets   map[string]*UserBet
	stats  map[string]*DailyStats // chave userID|date

	Now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		alerts: make(map[string]*alert.Alert),
		users:  make(map[string]*User),
		bets:   make(map[string]*UserBet),
		stats:  make(map[string]*DailyStats),
		Now:    time.Now,
	}
}

func (s *MemoryStore) InsertAlert(_ context.Context, a *alert.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.alerts[a.ID] = &cp
	return nil
}

func (s *MemoryStore) GetAlert(_ context.Context, id string) (*alert.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) GetOrCreateUser(_ context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	u := NewUser(id, s.Now())
	s.users[id] = u
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) ListActiveUsers(_ context.Context) ([]*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*User
	for _, u := range s.users {
		if u.Active {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) SaveUserSettings(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	cp := *u
	cp.AlertsToday = cur.AlertsToday
	cp.LastAlertDate = cur.LastAlertDate
	cp.LastAlertAt = cur.LastAlertAt
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) UpdateThrottle(_ context.Context, userID string, alertsToday int, lastAlertDate, lastAlertAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.AlertsToday = alertsToday
	u.LastAlertDate = lastAlertDate
	t := lastAlertAt
	u.LastAlertAt = &t
	return nil
}

func (s *MemoryStore) IncrementClassCounter(_ context.Context, userID string, class alert.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	switch class {
	case alert.ClassArbitrage:
		u.ArbitrageBets++
	case alert.ClassGoodEV:
		u.GoodEVBets++
	case alert.ClassMiddle:
		u.MiddleBets++
	}
	return nil
}

func (s *MemoryStore) DeactivateUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.Active = false
	}
	return nil
}

func (s *MemoryStore) RecordClick(_ context.Context, p ClickParams) (ClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bets {
		if b.UserID == p.UserID && b.EventHash == p.EventHash && b.Class == p.Class {
			return ClickResult{BetID: b.ID, Already: true}, nil
		}
	}
	b := &UserBet{
		ID:             uuid.NewString(),
		UserID:         p.UserID,
		AlertID:        p.AlertID,
		Class:          p.Class,
		EventHash:      p.EventHash,
		BetDate:        dateOnly(p.BetDate),
		MatchName:      p.MatchName,
		League:         p.League,
		TotalStake:     p.TotalStake,
		ExpectedProfit: p.ExpectedProfit,
		Status:         StatusPending,
		CreatedAt:      s.Now(),
	}
	if p.MatchDate != nil {
		d := dateOnly(*p.MatchDate)
		b.MatchDate = &d
	}
	s.bets[b.ID] = b

	key := statsKey(p.UserID, b.BetDate)
	d, ok := s.stats[key]
	if !ok {
		d = &DailyStats{UserID: p.UserID, Date: b.BetDate}
		s.stats[key] = d
	}
	d.TotalBets++
	d.TotalStaked += p.TotalStake
	d.TotalProfit += p.ExpectedProfit
	d.Confirmed = false
	return ClickResult{BetID: b.ID}, nil
}

func (s *MemoryStore) Undo(_ context.Context, userID, betID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bets[betID]
	if !ok || b.UserID != userID {
		return ErrNotFound
	}
	if b.Status != StatusPending {
		return ErrNotPending
	}
	delete(s.bets, betID)
	key := statsKey(userID, b.BetDate)
	if d, ok := s.stats[key]; ok {
		d.TotalBets--
		d.TotalStaked -= b.TotalStake
		d.TotalProfit -= b.ExpectedProfit
		if d.TotalBets <= 0 {
			delete(s.stats, key)
		}
	}
	return nil
}

func (s *MemoryStore) Resolve(_ context.Context, betID string, status BetStatus, actualProfit float64) (*UserBet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bets[betID]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status.Terminal() {
		cp := *b
		return &cp, nil
	}
	b.Status = status
	v := actualProfit
	b.ActualProfit = &v
	if d, ok := s.stats[statsKey(b.UserID, b.BetDate)]; ok {
		d.TotalProfit = d.TotalProfit - b.ExpectedProfit + actualProfit
		pending := false
		for _, other := range s.bets {
			if other.UserID == b.UserID && other.BetDate.Equal(b.BetDate) && other.Status == StatusPending {
				pending = true
				break
			}
		}
		d.Confirmed = !pending
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) PostponeBet(_ context.Context, betID string, matchDate *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bets[betID]
	if !ok || b.Status != StatusPending {
		return ErrNotFound
	}
	if matchDate == nil {
		b.MatchDate = nil
		return nil
	}
	d := dateOnly(*matchDate)
	b.MatchDate = &d
	return nil
}

func (s *MemoryStore) GetBet(_ context.Context, betID string) (*UserBet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bets[betID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) ReadyCount(_ context.Context, userID string, today time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bets {
		if b.UserID == userID && b.Ready(today) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ListReadyBets(_ context.Context, userID string, today time.Time) ([]*UserBet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*UserBet
	for _, b := range s.bets {
		if b.UserID == userID && b.Ready(today) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) GetDailyStats(_ context.Context, userID string, date time.Time) (*DailyStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.stats[statsKey(userID, dateOnly(date))]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func statsKey(userID string, date time.Time) string {
	return userID + "|" + date.Format("2006-01-02")
}
