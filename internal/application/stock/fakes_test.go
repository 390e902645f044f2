package stock_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hospital-stock/internal/application/stock"
	"github.com/jhoicas/hospital-stock/internal/domain"
	"github.com/jhoicas/hospital-stock/internal/domain/entity"
	"github.com/jhoicas/hospital-stock/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de persistencia. El fakeTxRunner simula el
// Rollback de la transacción restaurando un snapshot cuando fn devuelve error,
// para poder verificar la semántica todo-o-nada sin base de datos.
// ──────────────────────────────────────────────────────────────────────────────

type fakeLotRepo struct {
	lots map[string]*entity.Lot
	seq  int
}

func newFakeLotRepo() *fakeLotRepo {
	return &fakeLotRepo{lots: make(map[string]*entity.Lot)}
}

func cloneLot(l *entity.Lot) *entity.Lot {
	c := *l
	return &c
}

func (r *fakeLotRepo) snapshot() map[string]*entity.Lot {
	snap := make(map[string]*entity.Lot, len(r.lots))
	for id, l := range r.lots {
		snap[id] = cloneLot(l)
	}
	return snap
}

func (r *fakeLotRepo) restore(snap map[string]*entity.Lot) {
	r.lots = snap
}

func (r *fakeLotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	if l, ok := r.lots[id]; ok {
		return cloneLot(l), nil
	}
	return nil, nil
}

func (r *fakeLotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeLotRepo) GetByItemAndNumber(_ context.Context, itemID, lotNumber string) (*entity.Lot, error) {
	for _, l := range r.lots {
		if l.ItemID == itemID && l.LotNumber == lotNumber {
			return cloneLot(l), nil
		}
	}
	return nil, nil
}

func (r *fakeLotRepo) Create(_ context.Context, lot *entity.Lot) error {
	for _, l := range r.lots {
		if l.ItemID == lot.ItemID && l.LotNumber == lot.LotNumber {
			return domain.ErrDuplicate
		}
	}
	if lot.ID == "" {
		r.seq++
		lot.ID = fmt.Sprintf("lot-%04d", r.seq)
	}
	r.lots[lot.ID] = cloneLot(lot)
	return nil
}

func (r *fakeLotRepo) Increment(_ context.Context, lotID string, qty int64) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	l, ok := r.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	l.Quantity += qty
	return nil
}

func (r *fakeLotRepo) Decrement(_ context.Context, lotID string, qty int64) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	l, ok := r.lots[lotID]
	if !ok || l.Quantity < qty {
		return domain.ErrNegativeResult
	}
	l.Quantity -= qty
	return nil
}

func (r *fakeLotRepo) ListForAllocation(_ context.Context, itemID string, today time.Time, includeExpired bool) ([]*entity.Lot, error) {
	var list []*entity.Lot
	for _, l := range r.lots {
		if l.ItemID != itemID || l.Status != entity.LotStatusActive || l.Quantity <= 0 {
			continue
		}
		if !includeExpired && l.IsExpired(today) {
			continue
		}
		list = append(list, cloneLot(l))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *fakeLotRepo) ListByItem(_ context.Context, itemID string, includeDisposed bool) ([]*entity.Lot, error) {
	var list []*entity.Lot
	for _, l := range r.lots {
		if l.ItemID != itemID {
			continue
		}
		if !includeDisposed && l.Status != entity.LotStatusActive {
			continue
		}
		list = append(list, cloneLot(l))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *fakeLotRepo) SumQuantityByItem(_ context.Context, itemID string) (int64, error) {
	var sum int64
	for _, l := range r.lots {
		if l.ItemID == itemID {
			sum += l.Quantity
		}
	}
	return sum, nil
}

func (r *fakeLotRepo) SumQuantityAll(_ context.Context) (map[string]int64, error) {
	sums := make(map[string]int64)
	for _, l := range r.lots {
		sums[l.ItemID] += l.Quantity
	}
	return sums, nil
}

func (r *fakeLotRepo) UpdatePrices(_ context.Context, lotID string, buyPrice, sellPrice *decimal.Decimal) error {
	l, ok := r.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	if buyPrice != nil {
		l.BuyPrice = *buyPrice
	}
	if sellPrice != nil {
		p := *sellPrice
		l.SellPrice = &p
	}
	return nil
}

func (r *fakeLotRepo) UpdateLocation(_ context.Context, lotID string, locationID *string) error {
	l, ok := r.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	l.LocationID = locationID
	return nil
}

func (r *fakeLotRepo) Dispose(_ context.Context, lotID string) error {
	l, ok := r.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	l.Quantity = 0
	l.Status = entity.LotStatusDisposed
	return nil
}

type fakeMovementRepo struct {
	movements []*entity.Movement
	counters  map[string]int64
}

func newFakeMovementRepo() *fakeMovementRepo {
	return &fakeMovementRepo{counters: make(map[string]int64)}
}

type movementSnapshot struct {
	movements []*entity.Movement
	counters  map[string]int64
}

func (r *fakeMovementRepo) snapshot() movementSnapshot {
	snap := movementSnapshot{
		movements: append([]*entity.Movement(nil), r.movements...),
		counters:  make(map[string]int64, len(r.counters)),
	}
	for k, v := range r.counters {
		snap.counters[k] = v
	}
	return snap
}

func (r *fakeMovementRepo) restore(snap movementSnapshot) {
	r.movements = snap.movements
	r.counters = snap.counters
}

func (r *fakeMovementRepo) Create(_ context.Context, m *entity.Movement) error {
	c := *m
	if c.ID == "" {
		c.ID = fmt.Sprintf("mov-%04d", len(r.movements)+1)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.movements = append(r.movements, &c)
	return nil
}

func (r *fakeMovementRepo) NextReference(_ context.Context, prefix, period string) (int64, error) {
	key := prefix + "|" + period
	r.counters[key]++
	return r.counters[key], nil
}

func (r *fakeMovementRepo) SumOutSince(_ context.Context, itemID string, since time.Time) (int64, error) {
	var sum int64
	for _, m := range r.movements {
		if m.ItemID == itemID && m.Type == entity.MovementTypeOUT && !m.CreatedAt.Before(since) {
			sum += m.Quantity
		}
	}
	return sum, nil
}

func (r *fakeMovementRepo) ListByItem(_ context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	var list []*entity.Movement
	for _, m := range r.movements {
		if m.ItemID != itemID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		list = append(list, m)
	}
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *fakeMovementRepo) ListByLot(_ context.Context, lotID string, limit, offset int) ([]*entity.Movement, error) {
	var list []*entity.Movement
	for _, m := range r.movements {
		if m.LotID == lotID {
			list = append(list, m)
		}
	}
	return list, nil
}

// byType filtra los movimientos registrados por tipo (helper de aserciones).
func (r *fakeMovementRepo) byType(movementType string) []*entity.Movement {
	var list []*entity.Movement
	for _, m := range r.movements {
		if m.Type == movementType {
			list = append(list, m)
		}
	}
	return list
}

type fakeItemRepo struct {
	items map[string]*entity.Item
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[string]*entity.Item)}
}

func (r *fakeItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	if i, ok := r.items[id]; ok {
		c := *i
		return &c, nil
	}
	return nil, nil
}

func (r *fakeItemRepo) GetByCode(_ context.Context, code string) (*entity.Item, error) {
	for _, i := range r.items {
		if i.Code == code {
			c := *i
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeItemRepo) List(_ context.Context, filter repository.ItemFilter) ([]*entity.Item, error) {
	var list []*entity.Item
	for _, i := range r.items {
		if filter.ActiveOnly && !i.Active {
			continue
		}
		c := *i
		list = append(list, &c)
	}
	sort.Slice(list, func(a, b int) bool { return list[a].Code < list[b].Code })
	return list, nil
}

func (r *fakeItemRepo) UpdateThresholds(_ context.Context, itemID string, minStock, maxStock int64) error {
	i, ok := r.items[itemID]
	if !ok {
		return domain.ErrNotFound
	}
	i.MinStock = minStock
	i.MaxStock = maxStock
	return nil
}

type fakeLocationRepo struct {
	locations map[string]*entity.Location
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{locations: make(map[string]*entity.Location)}
}

func (r *fakeLocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	if l, ok := r.locations[id]; ok {
		c := *l
		return &c, nil
	}
	return nil, nil
}

func (r *fakeLocationRepo) List(_ context.Context) ([]*entity.Location, error) {
	var list []*entity.Location
	for _, l := range r.locations {
		c := *l
		list = append(list, &c)
	}
	return list, nil
}

// fakeTxRunner ejecuta fn sobre los fakes y restaura el estado previo si fn
// devuelve error (equivalente al Rollback de la tx real). El mutex serializa
// las transacciones como lo hacen los bloqueos de fila (FOR UPDATE) cuando
// dos operaciones tocan el mismo lote: la segunda espera y relee el estado
// que dejó la primera.
type fakeTxRunner struct {
	mu        sync.Mutex
	lots      *fakeLotRepo
	movements *fakeMovementRepo
	items     *fakeItemRepo
	locations *fakeLocationRepo
}

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lotSnap := r.lots.snapshot()
	movSnap := r.movements.snapshot()
	if err := fn(r.lots, r.movements, r.items, r.locations); err != nil {
		r.lots.restore(lotSnap)
		r.movements.restore(movSnap)
		return err
	}
	return nil
}

// env arma el juego completo de fakes con el motor cableado.
type env struct {
	lots      *fakeLotRepo
	movements *fakeMovementRepo
	items     *fakeItemRepo
	locations *fakeLocationRepo
	alloc     *stock.AllocationUseCase
}

func newEnv() *env {
	e := &env{
		lots:      newFakeLotRepo(),
		movements: newFakeMovementRepo(),
		items:     newFakeItemRepo(),
		locations: newFakeLocationRepo(),
	}
	e.alloc = stock.NewAllocationUseCase(&fakeTxRunner{
		lots:      e.lots,
		movements: e.movements,
		items:     e.items,
		locations: e.locations,
	})
	return e
}

func (e *env) addItem(item *entity.Item) {
	c := *item
	e.items.items[item.ID] = &c
}

func (e *env) addLot(lot *entity.Lot) {
	if lot.Status == "" {
		lot.Status = entity.LotStatusActive
	}
	_ = e.lots.Create(context.Background(), lot)
}

func (e *env) addLocation(loc *entity.Location) {
	c := *loc
	e.locations.locations[loc.ID] = &c
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func daysFromNow(d int) *time.Time {
	t := time.Now().AddDate(0, 0, d)
	return &t
}
