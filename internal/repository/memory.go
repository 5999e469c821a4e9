package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
)

// MemoryStore keeps everything in process memory behind one mutex.  Every
// method is atomic with respect to the others, which gives it the same
// all-or-nothing behaviour SQLStore gets from transactions.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID uint64
	now    func() time.Time
	labs   map[uint64]model.Laboratory
	rows   map[uint64]model.Row
	ws     map[uint64]model.Workstation
	slots  map[uint64]model.EmptySlot
	books  map[uint64]model.Booking
	queue  map[uint64]model.QueueEntry
	wsAt   map[model.Coord]uint64 // live workstation index
	slotAt map[model.Coord]uint64 // placeholder index
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:    func() time.Time { return time.Now().UTC() },
		labs:   map[uint64]model.Laboratory{},
		rows:   map[uint64]model.Row{},
		ws:     map[uint64]model.Workstation{},
		slots:  map[uint64]model.EmptySlot{},
		books:  map[uint64]model.Booking{},
		queue:  map[uint64]model.QueueEntry{},
		wsAt:   map[model.Coord]uint64{},
		slotAt: map[model.Coord]uint64{},
	}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) id() uint64 {
	m.nextID++
	return m.nextID
}

// ---- labs ----

func (m *MemoryStore) CreateLab(_ context.Context, l *model.Laboratory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = m.id()
	l.CreatedAt = m.now()
	m.labs[l.ID] = *l
	return nil
}

func (m *MemoryStore) GetLab(_ context.Context, id uint64) (*model.Laboratory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.labs[id]
	if !ok {
		return nil, apperr.NotFound("getLab", "lab", id)
	}
	return &l, nil
}

func (m *MemoryStore) ListLabs(_ context.Context) ([]model.Laboratory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Laboratory, 0, len(m.labs))
	for _, l := range m.labs {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- rows ----

func (m *MemoryStore) CreateRow(_ context.Context, r *model.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.labs[r.LabID]; !ok {
		return apperr.NotFound("createRow", "lab", r.LabID)
	}
	for _, existing := range m.rows {
		if existing.LabID == r.LabID && existing.Name == r.Name {
			return apperr.Conflict("createRow", "row", "name %q already exists", r.Name)
		}
	}
	r.ID = m.id()
	r.CreatedAt = m.now()
	m.rows[r.ID] = *r
	return nil
}

func (m *MemoryStore) GetRow(_ context.Context, id uint64) (*model.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, apperr.NotFound("getRow", "row", id)
	}
	return &r, nil
}

func (m *MemoryStore) FindRowByName(_ context.Context, labID uint64, name string) (*model.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rows {
		if r.LabID == labID && r.Name == name {
			return &r, nil
		}
	}
	return nil, apperr.NotFound("findRow", "row", name)
}

func (m *MemoryStore) ListRows(_ context.Context, labID uint64) ([]model.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Row{}
	for _, r := range m.rows {
		if r.LabID == labID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) RenameRow(_ context.Context, id uint64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return apperr.NotFound("renameRow", "row", id)
	}
	for _, other := range m.rows {
		if other.ID != id && other.LabID == r.LabID && other.Name == name {
			return apperr.Conflict("renameRow", "row", "name %q already exists", name)
		}
	}
	r.Name = name
	m.rows[id] = r
	return nil
}

func (m *MemoryStore) DeleteRowCascade(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return apperr.NotFound("deleteRow", "row", id)
	}
	for wid, w := range m.ws {
		if w.RowID == id {
			m.dropWorkstation(wid)
		}
	}
	for sid, s := range m.slots {
		if s.RowID == id {
			delete(m.slotAt, model.Coord{RowID: s.RowID, Position: s.Position})
			delete(m.slots, sid)
		}
	}
	delete(m.rows, id)
	return nil
}

// dropWorkstation removes a workstation and its bookings; caller holds mu.
func (m *MemoryStore) dropWorkstation(id uint64) {
	w := m.ws[id]
	for bid, b := range m.books {
		if b.WorkstationID == id {
			delete(m.books, bid)
		}
	}
	delete(m.wsAt, w.Coord())
	delete(m.ws, id)
}

// ---- workstations ----

func cloneWS(w model.Workstation) model.Workstation {
	w.SoftwareList = append([]string(nil), w.SoftwareList...)
	return w
}

func (m *MemoryStore) CreateWorkstation(_ context.Context, w *model.Workstation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[w.RowID]; !ok {
		return apperr.NotFound("createWorkstation", "row", w.RowID)
	}
	c := w.Coord()
	if _, taken := m.wsAt[c]; taken {
		return apperr.Conflict("createWorkstation", "workstation", "position %d is occupied", c.Position)
	}
	if sid, ok := m.slotAt[c]; ok {
		delete(m.slots, sid)
		delete(m.slotAt, c)
	}
	w.ID = m.id()
	w.Version = 1
	m.ws[w.ID] = cloneWS(*w)
	m.wsAt[c] = w.ID
	return nil
}

func (m *MemoryStore) GetWorkstation(_ context.Context, id uint64) (*model.Workstation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.ws[id]
	if !ok {
		return nil, apperr.NotFound("getWorkstation", "workstation", id)
	}
	w = cloneWS(w)
	return &w, nil
}

func (m *MemoryStore) FindWorkstationAt(_ context.Context, c model.Coord) (*model.Workstation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.wsAt[c]
	if !ok {
		return nil, apperr.NotFound("findWorkstation", "workstation", c)
	}
	w := cloneWS(m.ws[id])
	return &w, nil
}

func (m *MemoryStore) rowsOfLab(labID uint64) map[uint64]bool {
	set := map[uint64]bool{}
	for _, r := range m.rows {
		if r.LabID == labID {
			set[r.ID] = true
		}
	}
	return set
}

func (m *MemoryStore) ListWorkstations(_ context.Context, labID uint64) ([]model.Workstation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.rowsOfLab(labID)
	out := []model.Workstation{}
	for _, w := range m.ws {
		if rows[w.RowID] {
			out = append(out, cloneWS(w))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateWorkstation(_ context.Context, w *model.Workstation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.ws[w.ID]
	if !ok {
		return apperr.NotFound("updateWorkstation", "workstation", w.ID)
	}
	if cur.Version != w.Version {
		return stale("updateWorkstation", "workstation")
	}
	cur.Label = w.Label
	cur.BaseStatus = w.BaseStatus
	cur.Specs = w.Specs
	cur.SoftwareList = append([]string(nil), w.SoftwareList...)
	cur.Version++
	m.ws[w.ID] = cur
	w.Version = cur.Version
	return nil
}

func (m *MemoryStore) DeleteWorkstation(_ context.Context, id uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.ws[id]
	if !ok {
		return false, apperr.NotFound("deleteWorkstation", "workstation", id)
	}
	m.dropWorkstation(id)
	c := w.Coord()
	if _, exists := m.slotAt[c]; exists {
		return false, nil
	}
	s := model.EmptySlot{ID: m.id(), RowID: c.RowID, Position: c.Position}
	m.slots[s.ID] = s
	m.slotAt[c] = s.ID
	return true, nil
}

// unchanged reports whether the stored copy of w still matches what the
// caller read; caller holds mu.
func (m *MemoryStore) unchanged(w model.Workstation) bool {
	cur, ok := m.ws[w.ID]
	return ok && cur.Version == w.Version && cur.Coord() == w.Coord()
}

func (m *MemoryStore) RelocateWorkstation(_ context.Context, w model.Workstation, to model.Coord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.unchanged(w) {
		return stale("relocateWorkstation", "workstation")
	}
	if _, ok := m.rows[to.RowID]; !ok {
		return apperr.NotFound("relocateWorkstation", "row", to.RowID)
	}
	if _, taken := m.wsAt[to]; taken {
		return stale("relocateWorkstation", "workstation")
	}
	cur := m.ws[w.ID]
	delete(m.wsAt, cur.Coord())
	cur.RowID, cur.Position = to.RowID, to.Position
	cur.Version++
	m.ws[w.ID] = cur
	m.wsAt[to] = w.ID
	return nil
}

func (m *MemoryStore) SwapWorkstations(_ context.Context, a, b model.Workstation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.unchanged(a) || !m.unchanged(b) {
		return stale("swapWorkstations", "workstation")
	}
	ca, cb := m.ws[a.ID], m.ws[b.ID]
	ca.RowID, ca.Position, cb.RowID, cb.Position = b.RowID, b.Position, a.RowID, a.Position
	ca.Version++
	cb.Version++
	m.ws[a.ID], m.ws[b.ID] = ca, cb
	m.wsAt[ca.Coord()] = ca.ID
	m.wsAt[cb.Coord()] = cb.ID
	return nil
}

// ---- placeholders ----

func (m *MemoryStore) CreateEmptySlot(_ context.Context, s *model.EmptySlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[s.RowID]; !ok {
		return apperr.NotFound("createEmptySlot", "row", s.RowID)
	}
	c := model.Coord{RowID: s.RowID, Position: s.Position}
	if _, taken := m.wsAt[c]; taken {
		return apperr.Conflict("createEmptySlot", "empty_slot", "position %d holds a workstation", s.Position)
	}
	if _, taken := m.slotAt[c]; taken {
		return apperr.Conflict("createEmptySlot", "empty_slot", "position %d already has a placeholder", s.Position)
	}
	s.ID = m.id()
	m.slots[s.ID] = *s
	m.slotAt[c] = s.ID
	return nil
}

func (m *MemoryStore) EnsureEmptySlot(_ context.Context, c model.Coord) (*model.EmptySlot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sid, ok := m.slotAt[c]; ok {
		s := m.slots[sid]
		return &s, false, nil
	}
	if _, ok := m.rows[c.RowID]; !ok {
		return nil, false, apperr.NotFound("ensureEmptySlot", "row", c.RowID)
	}
	s := model.EmptySlot{ID: m.id(), RowID: c.RowID, Position: c.Position}
	m.slots[s.ID] = s
	m.slotAt[c] = s.ID
	return &s, true, nil
}

func (m *MemoryStore) DeleteEmptySlot(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.slots[id]; ok {
		delete(m.slotAt, model.Coord{RowID: s.RowID, Position: s.Position})
		delete(m.slots, id)
	}
	return nil
}

func (m *MemoryStore) FindEmptySlotAt(_ context.Context, c model.Coord) (*model.EmptySlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sid, ok := m.slotAt[c]
	if !ok {
		return nil, apperr.NotFound("findEmptySlot", "empty_slot", c)
	}
	s := m.slots[sid]
	return &s, nil
}

func (m *MemoryStore) ListEmptySlots(_ context.Context, labID uint64) ([]model.EmptySlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.rowsOfLab(labID)
	out := []model.EmptySlot{}
	for _, s := range m.slots {
		if rows[s.RowID] {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- bookings ----

func (m *MemoryStore) CreateBooking(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ws[b.WorkstationID]; !ok {
		return apperr.NotFound("createBooking", "workstation", b.WorkstationID)
	}
	for _, e := range m.books {
		if e.WorkstationID == b.WorkstationID && e.Date == b.Date && e.TimeSlot == b.TimeSlot {
			return apperr.Conflict("createBooking", "booking", "%s on %s is already booked", b.TimeSlot, b.Date)
		}
	}
	now := m.now()
	b.ID = m.id()
	b.CreatedAt, b.UpdatedAt = now, now
	m.books[b.ID] = *b
	return nil
}

func (m *MemoryStore) GetBooking(_ context.Context, id uint64) (*model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	if !ok {
		return nil, apperr.NotFound("getBooking", "booking", id)
	}
	return &b, nil
}

func (m *MemoryStore) FindBooking(_ context.Context, workstationID uint64, date string, slot model.TimeSlot) (*model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.books {
		if b.WorkstationID == workstationID && b.Date == date && b.TimeSlot == slot {
			return &b, nil
		}
	}
	return nil, apperr.NotFound("findBooking", "booking", string(slot)+"@"+date)
}

func (m *MemoryStore) UpdateBooking(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.books[b.ID]
	if !ok {
		return apperr.NotFound("updateBooking", "booking", b.ID)
	}
	cur.StudentName = b.StudentName
	cur.Purpose = b.Purpose
	cur.QueueEntryRef = b.QueueEntryRef
	cur.UpdatedAt = m.now()
	m.books[b.ID] = cur
	*b = cur
	return nil
}

func (m *MemoryStore) DeleteBooking(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return apperr.NotFound("deleteBooking", "booking", id)
	}
	delete(m.books, id)
	return nil
}

func sortBookings(out []model.Booking) {
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
}

func (m *MemoryStore) ListBookingsByLab(_ context.Context, labID uint64, date string) ([]model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.rowsOfLab(labID)
	out := []model.Booking{}
	for _, b := range m.books {
		if w, ok := m.ws[b.WorkstationID]; ok && rows[w.RowID] && b.Date == date {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (m *MemoryStore) ListBookingsByWorkstation(_ context.Context, workstationID uint64, date string) ([]model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Booking{}
	for _, b := range m.books {
		if b.WorkstationID == workstationID && b.Date == date {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out, nil
}

// ---- queue ----

func (m *MemoryStore) CreateQueueEntry(_ context.Context, q *model.QueueEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.labs[q.LabID]; !ok {
		return apperr.NotFound("addToQueue", "lab", q.LabID)
	}
	q.ID = m.id()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = m.now()
	}
	m.queue[q.ID] = *q
	return nil
}

func (m *MemoryStore) GetQueueEntry(_ context.Context, id uint64) (*model.QueueEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.queue[id]
	if !ok {
		return nil, apperr.NotFound("getQueueEntry", "queue_entry", id)
	}
	return &q, nil
}

func (m *MemoryStore) ListQueueEntries(_ context.Context, labID uint64) ([]model.QueueEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.QueueEntry{}
	for _, q := range m.queue {
		if q.LabID == labID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) SetQueueStatus(_ context.Context, id uint64, s model.QueueStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queue[id]
	if !ok {
		return apperr.NotFound("setQueueStatus", "queue_entry", id)
	}
	q.Status = s
	m.queue[id] = q
	return nil
}
