package lock

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/fulldump/btrievedb/btrieve"
)

// WholeFile is the position of a file lock. Record positions start at 1.
const WholeFile int64 = 0

// Resource is a lockable unit: a record of a file, or the whole file.
type Resource struct {
	File     string
	Position int64
}

func File(name string) Resource {
	return Resource{File: name, Position: WholeFile}
}

func Record(name string, position int64) Resource {
	return Resource{File: name, Position: position}
}

func (r Resource) String() string {
	if r.Position == WholeFile {
		return r.File
	}
	return fmt.Sprintf("%s#%d", r.File, r.Position)
}

// Owner identifies the session a lock belongs to.
type Owner struct {
	ID                     uint64
	ServiceAgentIdentifier int
	ClientIdentifier       int
}

// Holder describes one lock request. Explicit is the lock mode asked by a
// retrieve, LockModeNone for locks taken by transactions or writes.
type Holder struct {
	Owner       Owner
	Explicit    btrieve.LockMode
	Transaction bool
	WriteNoWait bool
}

type grant struct {
	owner       Owner
	explicit    btrieve.LockMode
	transaction bool
	writeNoWait bool
}

func (g *grant) merge(h Holder) {
	if h.Explicit != btrieve.LockModeNone {
		g.explicit = h.Explicit
	}
	g.transaction = g.transaction || h.Transaction
	g.writeNoWait = g.writeNoWait || h.WriteNoWait
}

func (g *grant) released() bool {
	return g.explicit == btrieve.LockModeNone && !g.transaction
}

type table struct {
	file    *grant
	records map[int64]*grant
}

type request struct {
	holder   Holder
	resource Resource
	since    time.Time
	done     chan error
}

// InUseError is returned when a lock is held by another session. It wraps
// StatusRecordInUse or StatusFileInUse.
type InUseError struct {
	Status   btrieve.StatusCode
	Resource Resource
	Owner    btrieve.LockOwner
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("lock %s held by client %d: %s", e.Resource, e.Owner.ClientIdentifier, e.Status)
}

func (e *InUseError) Unwrap() error {
	return e.Status
}

// OwnerOf returns the lock owner carried by err, if any.
func OwnerOf(err error) (*btrieve.LockOwner, bool) {
	var inUse *InUseError
	if errors.As(err, &inUse) {
		owner := inUse.Owner
		return &owner, true
	}
	return nil, false
}

// Manager keeps the record and file locks of every open file. Waiting
// requests are granted in arrival order as holders release.
type Manager struct {
	mutex   sync.Mutex
	timeout time.Duration
	tables  map[string]*table
	owners  map[uint64]map[Resource]*grant
	waiters []*request
	closed  bool
}

// New returns a lock manager. A zero timeout waits until the lock is granted
// or a deadlock is found.
func New(timeout time.Duration) *Manager {
	return &Manager{
		timeout: timeout,
		tables:  map[string]*table{},
		owners:  map[uint64]map[Resource]*grant{},
	}
}

func (m *Manager) table(file string) *table {
	t, ok := m.tables[file]
	if !ok {
		t = &table{records: map[int64]*grant{}}
		m.tables[file] = t
	}
	return t
}

// blockers lists the grants of other owners that conflict with a request
// of owner on resource.
func (m *Manager) blockers(owner uint64, resource Resource) []*grant {
	t, ok := m.tables[resource.File]
	if !ok {
		return nil
	}

	result := []*grant{}
	if t.file != nil && t.file.owner.ID != owner {
		result = append(result, t.file)
	}
	if resource.Position == WholeFile {
		for _, g := range t.records {
			if g.owner.ID != owner {
				result = append(result, g)
			}
		}
		return result
	}
	if g, ok := t.records[resource.Position]; ok && g.owner.ID != owner {
		result = append(result, g)
	}
	return result
}

func (m *Manager) inUse(resource Resource, g *grant) *InUseError {
	status := btrieve.StatusRecordInUse
	if resource.Position == WholeFile || m.tables[resource.File].file == g {
		status = btrieve.StatusFileInUse
	}
	level := 0
	if g.transaction {
		level = 1
	}
	isFile := m.tables[resource.File].file == g
	return &InUseError{
		Status:   status,
		Resource: resource,
		Owner: btrieve.LockOwner{
			ServiceAgentIdentifier: g.owner.ServiceAgentIdentifier,
			ClientIdentifier:       g.owner.ClientIdentifier,
			TransactionLevel:       level,
			SameProcess:            true,
			RecordLock:             !isFile,
			FileLock:               isFile,
			WriteNoWait:            g.writeNoWait,
			ExplicitLockMode:       g.explicit,
			PageLockType:           btrieve.PageLockTypeNone,
			Index:                  btrieve.IndexNone,
		},
	}
}

func (m *Manager) grant(h Holder, resource Resource) {
	held, ok := m.owners[h.Owner.ID]
	if !ok {
		held = map[Resource]*grant{}
		m.owners[h.Owner.ID] = held
	}
	if g, ok := held[resource]; ok {
		g.merge(h)
		return
	}

	g := &grant{owner: h.Owner}
	g.merge(h)
	held[resource] = g

	t := m.table(resource.File)
	if resource.Position == WholeFile {
		t.file = g
	} else {
		t.records[resource.Position] = g
	}
}

func (m *Manager) release(owner uint64, resource Resource) {
	held := m.owners[owner]
	delete(held, resource)
	if len(held) == 0 {
		delete(m.owners, owner)
	}

	t, ok := m.tables[resource.File]
	if !ok {
		return
	}
	if resource.Position == WholeFile {
		t.file = nil
	} else {
		delete(t.records, resource.Position)
	}
	if t.file == nil && len(t.records) == 0 {
		delete(m.tables, resource.File)
	}
}

// process grants every waiting request that no longer conflicts.
func (m *Manager) process() {
	pending := m.waiters[:0]
	for _, r := range m.waiters {
		if len(m.blockers(r.holder.Owner.ID, r.resource)) > 0 {
			pending = append(pending, r)
			continue
		}
		m.grant(r.holder, r.resource)
		glog.V(2).Infof("lock %s granted to client %d after %v", r.resource, r.holder.Owner.ClientIdentifier, time.Since(r.since))
		r.done <- nil
	}
	for i := len(pending); i < len(m.waiters); i++ {
		m.waiters[i] = nil
	}
	m.waiters = pending
}

func (m *Manager) dequeue(r *request) bool {
	for i, w := range m.waiters {
		if w == r {
			m.waiters = append(m.waiters[:i], m.waiters[i+1:]...)
			return true
		}
	}
	return false
}

// Acquire locks resource for h.Owner. Locks already held by the same owner
// are granted again, merging the holder flags. When the resource is held by
// another owner Acquire fails with an InUseError, unless wait is set: then it
// blocks until the lock is granted, the timeout expires or waiting would
// close a cycle, which fails with StatusDeadLock.
func (m *Manager) Acquire(h Holder, resource Resource, wait bool) error {
	m.mutex.Lock()

	if m.closed {
		m.mutex.Unlock()
		return btrieve.StatusMKDEShuttingDown
	}

	blockers := m.blockers(h.Owner.ID, resource)
	if len(blockers) == 0 {
		m.grant(h, resource)
		m.mutex.Unlock()
		return nil
	}

	if !wait {
		err := m.inUse(resource, blockers[0])
		m.mutex.Unlock()
		return err
	}

	r := &request{
		holder:   h,
		resource: resource,
		since:    time.Now(),
		done:     make(chan error, 1),
	}
	m.waiters = append(m.waiters, r)

	if cycle := m.cycle(h.Owner.ID); cycle != nil {
		m.dequeue(r)
		m.mutex.Unlock()
		glog.V(2).Infof("deadlock on %s, client %d chosen as victim, cycle %v", resource, h.Owner.ClientIdentifier, cycle)
		return fmt.Errorf("wait for %s: %w", resource, btrieve.StatusDeadLock)
	}
	glog.V(2).Infof("client %d waits for %s", h.Owner.ClientIdentifier, resource)
	m.mutex.Unlock()

	if m.timeout <= 0 {
		return <-r.done
	}

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case err := <-r.done:
		return err
	case <-timer.C:
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if !m.dequeue(r) {
		// granted while the timer fired
		return <-r.done
	}
	if blockers := m.blockers(h.Owner.ID, resource); len(blockers) > 0 {
		return m.inUse(resource, blockers[0])
	}
	return fmt.Errorf("wait for %s: %w", resource, btrieve.StatusLockError)
}

// Check fails with an InUseError when another owner holds a lock that
// conflicts with resource. It takes no lock.
func (m *Manager) Check(owner uint64, resource Resource) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if blockers := m.blockers(owner, resource); len(blockers) > 0 {
		return m.inUse(resource, blockers[0])
	}
	return nil
}

// holds reports whether owner holds resource.
func (m *Manager) holds(owner uint64, resource Resource) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	_, ok := m.owners[owner][resource]
	return ok
}

// Unlock drops the explicit lock of owner on resource. Locks also held by a
// running transaction stay until EndTransaction.
func (m *Manager) Unlock(owner uint64, resource Resource) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	g, ok := m.owners[owner][resource]
	if !ok || g.explicit == btrieve.LockModeNone {
		return false
	}
	g.explicit = btrieve.LockModeNone
	if g.released() {
		m.release(owner, resource)
		m.process()
	}
	return true
}

// UnlockAll drops every explicit lock of owner on file and returns how many
// were dropped.
func (m *Manager) UnlockAll(owner uint64, file string) int {
	return m.drop(owner, func(resource Resource, g *grant) bool {
		if resource.File != file || g.explicit == btrieve.LockModeNone {
			return false
		}
		g.explicit = btrieve.LockModeNone
		return true
	})
}

// EndTransaction drops the transaction part of every lock of owner.
func (m *Manager) EndTransaction(owner uint64) int {
	return m.drop(owner, func(resource Resource, g *grant) bool {
		if !g.transaction {
			return false
		}
		g.transaction = false
		g.writeNoWait = false
		return true
	})
}

// ReleaseFile releases every lock of owner on file.
func (m *Manager) ReleaseFile(owner uint64, file string) int {
	return m.drop(owner, func(resource Resource, g *grant) bool {
		if resource.File != file {
			return false
		}
		g.explicit = btrieve.LockModeNone
		g.transaction = false
		return true
	})
}

// ReleaseAll releases every lock of owner.
func (m *Manager) ReleaseAll(owner uint64) int {
	return m.drop(owner, func(resource Resource, g *grant) bool {
		g.explicit = btrieve.LockModeNone
		g.transaction = false
		return true
	})
}

func (m *Manager) drop(owner uint64, f func(resource Resource, g *grant) bool) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	n := 0
	for resource, g := range m.owners[owner] {
		if !f(resource, g) {
			continue
		}
		n++
		if g.released() {
			m.release(owner, resource)
		}
	}
	if n > 0 {
		m.process()
	}
	return n
}

// Count returns how many explicit locks owner holds on file.
func (m *Manager) Count(owner uint64, file string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	n := 0
	for resource, g := range m.owners[owner] {
		if resource.File == file && g.explicit != btrieve.LockModeNone {
			n++
		}
	}
	return n
}

// explicit returns the explicitly locked resources of owner on file in
// position order, with the lock mode of each.
func (m *Manager) explicit(owner uint64, file string) map[int64]btrieve.LockMode {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	result := map[int64]btrieve.LockMode{}
	for resource, g := range m.owners[owner] {
		if resource.File == file && g.explicit != btrieve.LockModeNone {
			result[resource.Position] = g.explicit
		}
	}
	return result
}

// Lock is one row of the lock table listing.
type Lock struct {
	File             string           `json:"file"`
	Position         int64            `json:"position"`
	FileLock         bool             `json:"file_lock"`
	ClientIdentifier int              `json:"client_identifier"`
	ServiceAgent     int              `json:"service_agent_identifier"`
	ExplicitLockMode btrieve.LockMode `json:"explicit_lock_mode"`
	Transaction      bool             `json:"transaction"`
	Waiters          int              `json:"waiters"`
}

// Locks lists every granted lock ordered by file and position.
func (m *Manager) Locks() []Lock {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	waiting := map[Resource]int{}
	for _, r := range m.waiters {
		waiting[r.resource]++
	}

	result := []Lock{}
	for _, held := range m.owners {
		for resource, g := range held {
			result = append(result, Lock{
				File:             resource.File,
				Position:         resource.Position,
				FileLock:         resource.Position == WholeFile,
				ClientIdentifier: g.owner.ClientIdentifier,
				ServiceAgent:     g.owner.ServiceAgentIdentifier,
				ExplicitLockMode: g.explicit,
				Transaction:      g.transaction,
				Waiters:          waiting[resource],
			})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].File != result[j].File {
			return result[i].File < result[j].File
		}
		return result[i].Position < result[j].Position
	})
	return result
}

// waiting returns how many requests are blocked.
func (m *Manager) waiting() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.waiters)
}

// Close fails every waiting request and refuses new ones.
func (m *Manager) Close() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	for _, r := range m.waiters {
		r.done <- btrieve.StatusMKDEShuttingDown
	}
	m.waiters = nil
}
