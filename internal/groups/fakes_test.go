package groups

import (
	"context"
	"database/sql"
	"fmt"
)

// callLog 按顺序记录协作者被调用的情况，用于断言策略分支与先后顺序。
type callLog struct {
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

type fakeStore struct {
	log    *callLog
	groups map[int64]Group
	err    error
	nextID int64
}

func newFakeStore(log *callLog, gs ...Group) *fakeStore {
	s := &fakeStore{log: log, groups: map[int64]Group{}, nextID: 100}
	for _, g := range gs {
		s.groups[g.ID] = g
	}
	return s
}

func (s *fakeStore) UpdateGroupCategory(_ context.Context, id int64, category string) error {
	s.log.add("store.UpdateGroupCategory(%d,%s)", id, category)
	if s.err != nil {
		return s.err
	}
	g, ok := s.groups[id]
	if !ok {
		return sql.ErrNoRows
	}
	g.Category = category
	s.groups[id] = g
	return nil
}

func (s *fakeStore) LoadGroup(_ context.Context, id int64) (Group, error) {
	g, ok := s.groups[id]
	if !ok {
		return Group{}, sql.ErrNoRows
	}
	return g, nil
}

func (s *fakeStore) InsertGroup(_ context.Context, g Group) (int64, error) {
	s.log.add("store.InsertGroup(%s)", g.Email)
	if s.err != nil {
		return 0, s.err
	}
	s.nextID++
	g.ID = s.nextID
	s.groups[g.ID] = g
	return g.ID, nil
}

func (s *fakeStore) SaveGroupSnapshot(_ context.Context, id int64, description string, category string) error {
	s.log.add("store.SaveGroupSnapshot(%d,%s)", id, category)
	if s.err != nil {
		return s.err
	}
	g, ok := s.groups[id]
	if !ok {
		return sql.ErrNoRows
	}
	g.Description = description
	g.Category = category
	s.groups[id] = g
	return nil
}

type fakeDirectory struct {
	log         *callLog
	description map[string]string
	pushed      map[string]string
	getErr      error
	pushErr     error
}

func newFakeDirectory(log *callLog) *fakeDirectory {
	return &fakeDirectory{log: log, description: map[string]string{}, pushed: map[string]string{}}
}

func (d *fakeDirectory) GroupDescription(_ context.Context, email string) (string, error) {
	d.log.add("directory.GroupDescription(%s)", email)
	if d.getErr != nil {
		return "", d.getErr
	}
	return d.description[email], nil
}

func (d *fakeDirectory) PushDescription(_ context.Context, email string, description string) error {
	d.log.add("directory.PushDescription(%s)", email)
	if d.pushErr != nil {
		return d.pushErr
	}
	d.pushed[email] = description
	d.description[email] = description
	return nil
}

type fakeToggles struct {
	t     Toggles
	err   error
	reads int
}

func (f *fakeToggles) Toggles(context.Context) (Toggles, error) {
	f.reads++
	return f.t, f.err
}

type fakeAudit struct {
	events []AuditEvent
}

func (a *fakeAudit) InsertGroupAudit(_ context.Context, ev AuditEvent) error {
	a.events = append(a.events, ev)
	return nil
}
