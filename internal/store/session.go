package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/anpopa/tkmviewer-sub000/internal/model"
)

func setSession(e *model.SessionEntry, col, val string) {
	switch col {
	case "Id":
		e.ID = parseInt(val)
	case "Name":
		e.Name = val
	case "Hash":
		e.Hash = val
	case "CoreCount":
		e.CoreCount = parseInt(val)
	case "Device":
		e.DeviceID = parseInt(val)
	}
}

// Sessions returns every recorded session. Each one is enriched with its
// first/last sample times and its device name; enrichment failures leave
// zero values and are returned as warnings, not as the error.
func (s *Store) Sessions(ctx context.Context) ([]*model.SessionEntry, []error, error) {
	const op = "SessionGetAll"

	out, err := scanRows(ctx, s, sessionsQuery, nil, true, setSession)
	if err != nil {
		s.logQueryError(op, err)
		return nil, nil, &QueryError{Op: op, Err: err}
	}

	var warnings []error
	for i, e := range out {
		e.Index = i
		if err := s.sessionBounds(ctx, e); err != nil {
			warnings = append(warnings, err)
		}
		if err := s.sessionDevice(ctx, e); err != nil {
			warnings = append(warnings, err)
		}
	}
	return out, warnings, nil
}

func (s *Store) sessionBounds(ctx context.Context, e *model.SessionEntry) error {
	var b [6]any
	err := s.db.QueryRowContext(ctx, sessionBoundsQuery, e.Hash).
		Scan(&b[0], &b[1], &b[2], &b[3], &b[4], &b[5])
	if err != nil {
		s.log.Warn().Str("session", e.Name).Str("hash", e.Hash).Err(err).
			Msg("Fail to update time intervals")
		return fmt.Errorf("session %s time bounds: %w", e.Hash, err)
	}

	ts := func(v any) uint64 {
		text, _ := columnText(v)
		return parseUint(text)
	}
	e.First = model.Timestamps{System: ts(b[0]), Monotonic: ts(b[1]), Receive: ts(b[2])}
	e.Last = model.Timestamps{System: ts(b[3]), Monotonic: ts(b[4]), Receive: ts(b[5])}
	return nil
}

func (s *Store) sessionDevice(ctx context.Context, e *model.SessionEntry) error {
	var name any
	err := s.db.QueryRowContext(ctx, sessionDeviceQuery, e.Hash).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.log.Warn().Str("session", e.Name).Str("hash", e.Hash).Err(err).
			Msg("Fail to read device name")
		return fmt.Errorf("session %s device: %w", e.Hash, err)
	}
	e.Device, _ = columnText(name)
	return nil
}
