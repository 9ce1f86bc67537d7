package entrypool

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/anpopa/tkmviewer-sub000/internal/action"
	"github.com/anpopa/tkmviewer-sub000/internal/model"
	"github.com/anpopa/tkmviewer-sub000/internal/store"
)

func (p *EntryPool) openDatabaseFile(a *action.Action) {
	path, ok := a.Arg(0)
	if !ok || path == "" {
		p.finish(a, action.StatusFailed, fmt.Errorf("%w: missing database path", ErrInvalidArgs))
		return
	}

	st, err := store.Open(path)
	if err != nil {
		st, path = nil, ""
	}

	// Collections decoded from the previous file are dropped with it.
	p.mu.Lock()
	old := p.store
	p.store = st
	p.path = path
	p.data = Snapshot{}
	p.mu.Unlock()

	if old != nil {
		if cerr := old.Close(); cerr != nil {
			p.log.Warn().Err(cerr).Msg("Fail to close previous database")
		}
	}
	p.publishCounts(Snapshot{})

	if err != nil {
		p.finish(a, action.StatusFailed, err)
		return
	}
	p.log.Info().Str("path", path).Msg("Database opened")
	p.finish(a, action.StatusComplete, nil)
}

func (p *EntryPool) loadSessions(a *action.Action) {
	if p.store == nil {
		p.installSessions(nil)
		p.finish(a, action.StatusFailed, ErrNoDatabase)
		return
	}

	sessions, warnings, err := p.store.Sessions(p.ctx)
	p.metrics.EnrichmentFailed(len(warnings))
	p.installSessions(sessions)

	if err != nil {
		p.finish(a, action.StatusFailed, err)
		return
	}
	p.finish(a, action.StatusComplete, nil)
}

func (p *EntryPool) installSessions(sessions []*model.SessionEntry) {
	p.mu.Lock()
	p.data.Sessions = sessions
	p.mu.Unlock()
	p.metrics.SetEntries(model.VariantSession, len(sessions))
}

// loadArgs parses LoadData arguments: hash, start and an optional end.
func loadArgs(a *action.Action) (hash string, start int64, end int64, hasEnd bool, err error) {
	hash, ok := a.Arg(0)
	if !ok {
		return "", 0, 0, false, fmt.Errorf("%w: missing session hash", ErrInvalidArgs)
	}
	raw, ok := a.Arg(1)
	if !ok {
		return "", 0, 0, false, fmt.Errorf("%w: missing start time", ErrInvalidArgs)
	}
	start, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", 0, 0, false, fmt.Errorf("%w: start time %q", ErrInvalidArgs, raw)
	}
	if raw, ok = a.Arg(2); ok {
		end, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return "", 0, 0, false, fmt.Errorf("%w: end time %q", ErrInvalidArgs, raw)
		}
		hasEnd = true
	}
	return hash, start, end, hasEnd, nil
}

func (p *EntryPool) loadData(a *action.Action) {
	hash, start, end, hasEnd, err := loadArgs(a)
	if err != nil {
		p.finish(a, action.StatusFailed, err)
		return
	}
	if p.store == nil {
		p.finish(a, action.StatusFailed, ErrNoDatabase)
		return
	}

	src := p.settings.TimeSource()
	sessions := markActive(p.data.Sessions, hash)

	var last uint64
	for _, s := range sessions {
		if s.Active {
			last = s.LastTimestamp(src)
		}
	}

	window := model.Window{Start: start, End: end}
	if !hasEnd {
		window = model.ResolveWindow(start, p.settings.TimeInterval(), last)
	}
	r := store.Range{Hash: hash, Source: src, Start: window.Start, End: window.End}

	p.log.Debug().Str("hash", hash).Stringer("source", src).
		Int64("start", window.Start).Int64("end", window.End).Msg("Loading data")

	next, err := p.decodeAll(r)
	next.Sessions = sessions

	p.mu.Lock()
	p.data = next
	p.mu.Unlock()
	p.publishCounts(next)

	if err != nil {
		p.finish(a, action.StatusFailed, err)
		return
	}
	p.finish(a, action.StatusComplete, nil)
}

// decodeAll runs every data decoder for r. Collections that fail stay nil;
// their errors are joined.
func (p *EntryPool) decodeAll(r store.Range) (Snapshot, error) {
	var (
		s    Snapshot
		errs []error
		err  error
	)
	keep := func(e error) {
		if e != nil {
			errs = append(errs, e)
		}
	}

	s.ProcInfo, err = p.store.ProcInfoEntries(p.ctx, r)
	keep(err)
	s.CtxInfo, err = p.store.CtxInfoEntries(p.ctx, r)
	keep(err)
	s.ProcAcct, err = p.store.ProcAcctEntries(p.ctx, r)
	keep(err)
	s.ProcEvent, err = p.store.ProcEventEntries(p.ctx, r)
	keep(err)
	s.CPUStat, err = p.store.CPUStatEntries(p.ctx, r)
	keep(err)
	s.MemInfo, err = p.store.MemInfoEntries(p.ctx, r)
	keep(err)
	s.Pressure, err = p.store.PressureEntries(p.ctx, r)
	keep(err)
	s.BuddyInfo, err = p.store.BuddyInfoEntries(p.ctx, r)
	keep(err)
	s.Wireless, err = p.store.WirelessEntries(p.ctx, r)
	keep(err)
	s.DiskStat, err = p.store.DiskStatEntries(p.ctx, r)
	keep(err)

	return s, errors.Join(errs...)
}

// markActive returns copies of sessions with only the one matching hash
// flagged active. Installed entries are never modified in place.
func markActive(sessions []*model.SessionEntry, hash string) []*model.SessionEntry {
	if sessions == nil {
		return nil
	}
	out := make([]*model.SessionEntry, len(sessions))
	for i, s := range sessions {
		c := *s
		c.Active = s.Hash == hash
		out[i] = &c
	}
	return out
}

func (p *EntryPool) terminate(a *action.Action) {
	p.mu.Lock()
	old := p.store
	p.store = nil
	p.path = ""
	p.data = Snapshot{}
	p.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			p.log.Warn().Err(err).Msg("Fail to close database")
		}
	}
	p.publishCounts(Snapshot{})
	p.finish(a, action.StatusComplete, nil)
	close(p.done)
}

func (p *EntryPool) publishCounts(s Snapshot) {
	if p.metrics == nil {
		return
	}
	for _, v := range model.Variants {
		n, _ := s.Count(v)
		p.metrics.SetEntries(v, n)
	}
}
