// Package inventorytest provides an in-memory lot ledger and transaction
// manager for tests of code that depends on inventory.
package inventorytest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
)

// Store implements inventory.ProductRepository and inventory.LotRepository.
type Store struct {
	mu         sync.Mutex
	products   map[id.ID]*inventory.Product
	lots       []inventory.Lot
	depletions []inventory.Depletion
	refs       map[id.ID]string
	seq        int64

	// Calls counts invocations per method name.
	Calls map[string]int
	// FailOn makes the named method return the error once.
	FailOn map[string]error
}

var (
	_ inventory.ProductRepository = (*Store)(nil)
	_ inventory.LotRepository     = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		products: make(map[id.ID]*inventory.Product),
		refs:     make(map[id.ID]string),
		Calls:    make(map[string]int),
		FailOn:   make(map[string]error),
	}
}

func (s *Store) enter(name string) error {
	s.Calls[name]++
	if err, ok := s.FailOn[name]; ok {
		delete(s.FailOn, name)
		return err
	}
	return nil
}

// --- seeding helpers ---

// SeedProduct stores a product with the given cached quantity.
func (s *Store) SeedProduct(name, brand string, qty types.Quantity) *inventory.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := inventory.NewProduct(name, brand, types.MustMoney("1"), types.MustMoney("2"), 0)
	p.Quantity = qty
	s.products[p.ID] = p
	return cloneProduct(p)
}

// SeedLot stores a lot without touching the product total.
func (s *Store) SeedLot(productID id.ID, remaining inventory.Remaining, expiry types.Expiry, created time.Time) id.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	qty, _ := remaining.Units()
	lot := inventory.NewLot(productID, qty, expiry, "", entity.DayOf(created))
	lot.Remaining = remaining
	lot.CreatedAt = created
	s.seq++
	lot.Seq = s.seq
	s.lots = append(s.lots, *lot)
	return lot.ID
}

// SetReference marks a product as referenced by another record kind.
func (s *Store) SetReference(productID id.ID, kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[productID] = kind
}

// Product returns a copy of the stored product.
func (s *Store) Product(productID id.ID) inventory.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *cloneProduct(s.products[productID])
}

// Remaining returns a lot's remaining quantity.
func (s *Store) Remaining(lotID id.ID) inventory.Remaining {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lots {
		if l.ID == lotID {
			return l.Remaining
		}
	}
	return inventory.Untracked()
}

// AllDepletions returns every stored depletion.
func (s *Store) AllDepletions() []inventory.Depletion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]inventory.Depletion(nil), s.depletions...)
}

// Snapshot captures the state and returns a function restoring it.
func (s *Store) Snapshot() (restore func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := make(map[id.ID]*inventory.Product, len(s.products))
	for k, v := range s.products {
		products[k] = cloneProduct(v)
	}
	lots := append([]inventory.Lot(nil), s.lots...)
	depletions := append([]inventory.Depletion(nil), s.depletions...)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.products = products
		s.lots = lots
		s.depletions = depletions
	}
}

func cloneProduct(p *inventory.Product) *inventory.Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// --- ProductRepository ---

func (s *Store) Create(ctx context.Context, p *inventory.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Create"); err != nil {
		return err
	}
	s.products[p.ID] = cloneProduct(p)
	return nil
}

func (s *Store) Update(ctx context.Context, p *inventory.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Update"); err != nil {
		return err
	}
	if _, ok := s.products[p.ID]; !ok {
		return apperror.NewNotFound("product", p.ID)
	}
	s.products[p.ID] = cloneProduct(p)
	return nil
}

func (s *Store) GetByID(ctx context.Context, productID id.ID) (*inventory.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetByID"); err != nil {
		return nil, err
	}
	p, ok := s.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	return cloneProduct(p), nil
}

func (s *Store) List(ctx context.Context, filter inventory.ProductFilter) ([]inventory.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("List"); err != nil {
		return nil, err
	}
	out := []inventory.Product{}
	for _, p := range s.products {
		if filter.Brand != "" && !strings.EqualFold(p.Brand, filter.Brand) {
			continue
		}
		if q := strings.ToLower(filter.Search); q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Brand), q) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Brand != out[j].Brand {
			return out[i].Brand < out[j].Brand
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) Brands(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, p := range s.products {
		if p.Brand != "" && !seen[p.Brand] {
			seen[p.Brand] = true
			out = append(out, p.Brand)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) Delete(ctx context.Context, productID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Delete"); err != nil {
		return err
	}
	delete(s.products, productID)
	return nil
}

func (s *Store) References(ctx context.Context, productID id.ID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs[productID], nil
}

// --- Ledger ---

func (s *Store) LockProduct(ctx context.Context, productID id.ID) (*inventory.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("LockProduct"); err != nil {
		return nil, err
	}
	p, ok := s.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	return cloneProduct(p), nil
}

func (s *Store) CandidateLots(ctx context.Context, productID id.ID, offset, limit int) ([]inventory.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CandidateLots"); err != nil {
		return nil, err
	}
	var out []inventory.Lot
	for _, l := range s.lots {
		if l.ProductID != productID {
			continue
		}
		if n, tracked := l.Remaining.Units(); tracked && n <= 0 {
			continue
		}
		out = append(out, l)
	}
	inventory.SortFEFO(out)
	if offset >= len(out) {
		return []inventory.Lot{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (s *Store) DecrementLots(ctx context.Context, decrements []inventory.LotDecrement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DecrementLots"); err != nil {
		return err
	}
	for _, d := range decrements {
		for i := range s.lots {
			if s.lots[i].ID == d.LotID {
				n, _ := s.lots[i].Remaining.Units()
				s.lots[i].Remaining = inventory.Tracked(n - d.Quantity)
			}
		}
	}
	return nil
}

func (s *Store) InsertDepletions(ctx context.Context, depletions []inventory.Depletion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("InsertDepletions"); err != nil {
		return err
	}
	s.depletions = append(s.depletions, depletions...)
	return nil
}

func (s *Store) AdjustProductQuantity(ctx context.Context, productID id.ID, delta types.Quantity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("AdjustProductQuantity"); err != nil {
		return err
	}
	p, ok := s.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID)
	}
	p.Quantity += delta
	return nil
}

// --- LotRepository ---

func (s *Store) CreateLot(ctx context.Context, lot *inventory.Lot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateLot"); err != nil {
		return err
	}
	s.seq++
	lot.Seq = s.seq
	s.lots = append(s.lots, *lot)
	return nil
}

func (s *Store) ListLots(ctx context.Context, productID id.ID) ([]inventory.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []inventory.Lot{}
	for _, l := range s.lots {
		if l.ProductID == productID {
			out = append(out, l)
		}
	}
	inventory.SortFEFO(out)
	return out, nil
}

func (s *Store) Depletions(ctx context.Context, recorderID id.ID) ([]inventory.Depletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []inventory.Depletion{}
	for _, d := range s.depletions {
		if d.RecorderID == recorderID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) MarkDepletionsReversed(ctx context.Context, recorderID id.ID, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.depletions {
		if s.depletions[i].RecorderID == recorderID && s.depletions[i].ReversedAt == nil {
			t := at
			s.depletions[i].ReversedAt = &t
			n++
		}
	}
	return n, nil
}

func (s *Store) ExpiringBetween(ctx context.Context, from, to time.Time) ([]inventory.ExpiringLot, error) {
	return s.expiring(func(e types.Expiry) bool {
		d, ok := e.Date()
		return ok && d.After(from) && !d.After(to)
	}), nil
}

func (s *Store) ExpiredOn(ctx context.Context, day time.Time) ([]inventory.ExpiringLot, error) {
	return s.expiring(func(e types.Expiry) bool { return e.ExpiredAt(day) }), nil
}

func (s *Store) expiring(match func(types.Expiry) bool) []inventory.ExpiringLot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []inventory.ExpiringLot{}
	for _, l := range s.lots {
		avail := l.Remaining.Available()
		if avail == 0 || !match(l.Expiry) {
			continue
		}
		p := s.products[l.ProductID]
		row := inventory.ExpiringLot{
			LotID:     l.ID,
			ProductID: l.ProductID,
			Code:      l.Code,
			Remaining: avail,
			Expiry:    l.Expiry,
		}
		if p != nil {
			row.ProductName, row.Brand, row.PurchasePrice = p.Name, p.Brand, p.PurchasePrice
		}
		out = append(out, row)
	}
	return out
}

func (s *Store) Audit(ctx context.Context, productID *id.ID) ([]inventory.AuditRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []inventory.AuditRow{}
	for _, p := range s.products {
		if productID != nil && p.ID != *productID {
			continue
		}
		row := inventory.AuditRow{ProductID: p.ID, ProductName: p.Name, CachedQuantity: p.Quantity}
		for _, l := range s.lots {
			if l.ProductID != p.ID {
				continue
			}
			if n, tracked := l.Remaining.Units(); tracked {
				row.LotQuantity += n
			} else {
				row.UntrackedLots++
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Store) BackfillUntracked(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.lots {
		if r, tracked := s.lots[i].Remaining.Units(); !tracked || r < 0 {
			s.lots[i].Remaining = inventory.Tracked(s.lots[i].Quantity)
			n++
		}
	}
	return n, nil
}
