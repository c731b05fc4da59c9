package cartstore

import (
	"sync"
	"time"

	"cartapi/internal/domain/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Snapshot はチェックアウト開始時点の明細と合計（以後変更されない）。
type Snapshot struct {
	ID      string
	Lines   []model.CartLine
	Total   decimal.Decimal
	TakenAt time.Time

	seqs []uint64 // Linesと同じ並び。取得時点の明細の世代
}

// entry は明細と、その明細が作られた順番。
// 同じ商品でも削除して再追加すれば別の世代になる。
type entry struct {
	model.CartLine
	seq uint64
}

// Store は1カート分の明細を持つ唯一の所有者。
// 全操作はmuの中で行い、カタログ参照などのI/Oはここに持ち込まない。
type Store struct {
	mu      sync.Mutex
	lines   []entry
	nextSeq uint64
	status  model.CheckoutStatus
	pending *Snapshot
	touched time.Time
	now     func() time.Time
}

func NewStore() *Store {
	return newStore(time.Now)
}

func newStore(now func() time.Time) *Store {
	return &Store{
		status:  model.CheckoutStatusIdle,
		touched: now(),
		now:     now,
	}
}

// List は追加順の明細と合計を返す。
func (s *Store) List() model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cartLocked()
}

// Add は商品を追加する（同一商品は数量加算、価格は最初の追加時のまま）。
// qtyはvalidator.ClampQuantity済みを想定し、1未満は1として扱う。
func (s *Store) Add(p model.Product, qty int64) model.Cart {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()

	if i := s.indexLocked(p.ID); i >= 0 {
		s.lines[i].Quantity += qty
		return s.cartLocked()
	}

	s.nextSeq++
	s.lines = append(s.lines, entry{
		CartLine: model.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  qty,
			UnitPrice: p.Price,
		},
		seq: s.nextSeq,
	})
	return s.cartLocked()
}

// Update は既存明細の数量を置き換える（加算ではない）。
func (s *Store) Update(productID string, qty int64) (model.Cart, error) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()

	i := s.indexLocked(productID)
	if i < 0 {
		return model.Cart{}, ErrLineNotFound
	}
	s.lines[i].Quantity = qty
	return s.cartLocked(), nil
}

// Remove は明細を削除する。無いIDでもエラーにしない。
func (s *Store) Remove(productID string) model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()

	if i := s.indexLocked(productID); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
	return s.cartLocked()
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.SumLines(s.plainLocked())
}

// Clear は全明細を削除する。チェックアウト中は拒否。
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return ErrCheckoutInProgress
	}
	s.touched = s.now()
	s.lines = nil
	return nil
}

func (s *Store) Status() model.CheckoutStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

// BeginCheckout は IDLE -> PROCESSING。
// 明細のスナップショットを取り、解決するまでclearの権利を占有する。
func (s *Store) BeginCheckout() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return Snapshot{}, ErrCheckoutInProgress
	}
	if len(s.lines) == 0 {
		return Snapshot{}, ErrEmptyCart
	}

	lines := s.plainLocked()
	seqs := make([]uint64, len(s.lines))
	for i := range s.lines {
		seqs[i] = s.lines[i].seq
	}

	snap := Snapshot{
		ID:      uuid.NewString(),
		Lines:   lines,
		Total:   model.SumLines(lines),
		TakenAt: s.now(),
		seqs:    seqs,
	}
	s.pending = &snap
	s.status = model.CheckoutStatusProcessing
	s.touched = snap.TakenAt
	return snap, nil
}

// CompleteCheckout は PROCESSING -> COMPLETED。
// スナップショットに含まれる世代の明細からだけ数量を引く。
// チェックアウト中に作られた明細（削除後の再追加を含む）はそのまま残る。
func (s *Store) CompleteCheckout(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.releaseLocked(snap); err != nil {
		return err
	}

	for k, sl := range snap.Lines {
		i := s.indexLocked(sl.ProductID)
		if i < 0 || k >= len(snap.seqs) || s.lines[i].seq != snap.seqs[k] {
			continue
		}
		if s.lines[i].Quantity <= sl.Quantity {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			continue
		}
		s.lines[i].Quantity -= sl.Quantity
	}
	if len(s.lines) == 0 {
		s.lines = nil
	}
	s.status = model.CheckoutStatusCompleted
	return nil
}

// FailCheckout は PROCESSING -> FAILED。カートはそのまま。
func (s *Store) FailCheckout(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.releaseLocked(snap); err != nil {
		return err
	}
	s.status = model.CheckoutStatusFailed
	return nil
}

// AbortCheckout はキャンセル時。開始前の状態(IDLE)に戻す。
func (s *Store) AbortCheckout(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.releaseLocked(snap); err != nil {
		return err
	}
	s.status = model.CheckoutStatusIdle
	return nil
}

// 最後に触られてからの経過時間。チェックアウト中は0を返す。
func (s *Store) idleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return 0
	}
	return now.Sub(s.touched)
}

func (s *Store) touch() {
	s.mu.Lock()
	s.touched = s.now()
	s.mu.Unlock()
}

func (s *Store) releaseLocked(snap Snapshot) error {
	if s.pending == nil || s.pending.ID != snap.ID {
		return ErrUnknownSnapshot
	}
	s.pending = nil
	s.touched = s.now()
	return nil
}

func (s *Store) indexLocked(productID string) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) plainLocked() []model.CartLine {
	lines := make([]model.CartLine, len(s.lines))
	for i := range s.lines {
		lines[i] = s.lines[i].CartLine
	}
	return lines
}

func (s *Store) cartLocked() model.Cart {
	lines := s.plainLocked()

	return model.Cart{
		Lines:          lines,
		Total:          model.SumLines(lines),
		CheckoutStatus: s.status,
	}
}
