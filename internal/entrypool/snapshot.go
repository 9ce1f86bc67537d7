package entrypool

import (
	"github.com/anpopa/tkmviewer-sub000/internal/model"
)

// Snapshot is one consistent set of collections. A nil slice means the
// collection is not loaded. Entries are shared, never copied, and must not
// be modified.
type Snapshot struct {
	Sessions  []*model.SessionEntry
	ProcInfo  []*model.ProcInfoEntry
	CtxInfo   []*model.CtxInfoEntry
	ProcAcct  []*model.ProcAcctEntry
	ProcEvent []*model.ProcEventEntry
	CPUStat   []*model.CPUStatEntry
	MemInfo   []*model.MemInfoEntry
	Pressure  []*model.PressureEntry
	BuddyInfo []*model.BuddyInfoEntry
	Wireless  []*model.WirelessEntry
	DiskStat  []*model.DiskStatEntry
}

// Count returns the size of the collection for v and whether it is loaded.
func (s *Snapshot) Count(v model.Variant) (int, bool) {
	switch v {
	case model.VariantSession:
		return len(s.Sessions), s.Sessions != nil
	case model.VariantProcInfo:
		return len(s.ProcInfo), s.ProcInfo != nil
	case model.VariantCtxInfo:
		return len(s.CtxInfo), s.CtxInfo != nil
	case model.VariantProcAcct:
		return len(s.ProcAcct), s.ProcAcct != nil
	case model.VariantProcEvent:
		return len(s.ProcEvent), s.ProcEvent != nil
	case model.VariantCPUStat:
		return len(s.CPUStat), s.CPUStat != nil
	case model.VariantMemInfo:
		return len(s.MemInfo), s.MemInfo != nil
	case model.VariantPressure:
		return len(s.Pressure), s.Pressure != nil
	case model.VariantBuddyInfo:
		return len(s.BuddyInfo), s.BuddyInfo != nil
	case model.VariantWireless:
		return len(s.Wireless), s.Wireless != nil
	case model.VariantDiskStat:
		return len(s.DiskStat), s.DiskStat != nil
	}
	return 0, false
}

// ActiveSession returns the session marked by the last LoadData, if any.
func (s *Snapshot) ActiveSession() *model.SessionEntry {
	for _, e := range s.Sessions {
		if e.Active {
			return e
		}
	}
	return nil
}

// Guard holds the data lock. Its getters must not be used after Unlock.
type Guard struct {
	p *EntryPool
}

// Lock blocks until the data lock is held.
func (p *EntryPool) Lock() *Guard {
	p.mu.Lock()
	return &Guard{p: p}
}

// TryLock takes the data lock only if it is free.
func (p *EntryPool) TryLock() (*Guard, bool) {
	if !p.mu.TryLock() {
		return nil, false
	}
	return &Guard{p: p}, true
}

// Unlock releases the data lock. Calling it twice panics.
func (g *Guard) Unlock() {
	if g.p == nil {
		panic("entrypool: Unlock of released guard")
	}
	p := g.p
	g.p = nil
	p.mu.Unlock()
}

func (g *Guard) pool() *EntryPool {
	if g.p == nil {
		panic("entrypool: use of released guard")
	}
	return g.p
}

func (g *Guard) Sessions() []*model.SessionEntry    { return g.pool().data.Sessions }
func (g *Guard) ProcInfo() []*model.ProcInfoEntry   { return g.pool().data.ProcInfo }
func (g *Guard) CtxInfo() []*model.CtxInfoEntry     { return g.pool().data.CtxInfo }
func (g *Guard) ProcAcct() []*model.ProcAcctEntry   { return g.pool().data.ProcAcct }
func (g *Guard) ProcEvent() []*model.ProcEventEntry { return g.pool().data.ProcEvent }
func (g *Guard) CPUStat() []*model.CPUStatEntry     { return g.pool().data.CPUStat }
func (g *Guard) MemInfo() []*model.MemInfoEntry     { return g.pool().data.MemInfo }
func (g *Guard) Pressure() []*model.PressureEntry   { return g.pool().data.Pressure }
func (g *Guard) BuddyInfo() []*model.BuddyInfoEntry { return g.pool().data.BuddyInfo }
func (g *Guard) Wireless() []*model.WirelessEntry   { return g.pool().data.Wireless }
func (g *Guard) DiskStat() []*model.DiskStatEntry   { return g.pool().data.DiskStat }

// Snapshot copies the current collections while the guard is held.
func (g *Guard) Snapshot() Snapshot { return g.pool().data }

// Snapshot takes the data lock long enough to copy the collections.
func (p *EntryPool) Snapshot() Snapshot {
	g := p.Lock()
	defer g.Unlock()
	return g.Snapshot()
}

// TrySnapshot is Snapshot without blocking.
func (p *EntryPool) TrySnapshot() (Snapshot, bool) {
	g, ok := p.TryLock()
	if !ok {
		return Snapshot{}, false
	}
	defer g.Unlock()
	return g.Snapshot(), true
}
