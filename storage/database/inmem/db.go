package inmemdb

import (
	"sort"
	"sync"

	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
)

type (
	DB struct {
		sync.RWMutex
		txMutex sync.Mutex // held by a running transaction; writes outside it wait
		tables  tables
	}

	tables struct {
		seq           map[string]int
		users         map[int]user.User
		classes       map[int]classroom.Class
		enrollments   map[int]classroom.Enrollment
		assignments   map[int]classroom.Assignment
		submissions   map[int]classroom.Submission
		notifications map[int]classroom.Notification
	}
)

func Open() *DB {
	return &DB{tables: newTables()}
}

func newTables() tables {
	return tables{
		seq:           make(map[string]int),
		users:         make(map[int]user.User),
		classes:       make(map[int]classroom.Class),
		enrollments:   make(map[int]classroom.Enrollment),
		assignments:   make(map[int]classroom.Assignment),
		submissions:   make(map[int]classroom.Submission),
		notifications: make(map[int]classroom.Notification),
	}
}

// Reset drops all the data; used between tests.
func (db *DB) Reset() {
	defer db.lockWrite(false)()
	db.tables = newTables()
}

// lockWrite takes the write lock and returns its release func.
// Outside a transaction it first waits for any running one to end, so a rollback
// never discards another request's writes.
func (db *DB) lockWrite(inTx bool) (unlock func()) {
	if !inTx {
		db.txMutex.Lock()
	}
	db.Lock()
	return func() {
		db.Unlock()
		if !inTx {
			db.txMutex.Unlock()
		}
	}
}

func (db *DB) Close() error { return nil }

// nextID must be called with the write lock held.
func (db *DB) nextID(table string) int {
	db.tables.seq[table]++
	return db.tables.seq[table]
}

func (t tables) clone() tables {
	c := newTables()
	for k, v := range t.seq {
		c.seq[k] = v
	}
	for k, v := range t.users {
		v.PasswordHash = append([]byte(nil), v.PasswordHash...)
		c.users[k] = v
	}
	for k, v := range t.classes {
		c.classes[k] = v
	}
	for k, v := range t.enrollments {
		c.enrollments[k] = v
	}
	for k, v := range t.assignments {
		c.assignments[k] = v
	}
	for k, v := range t.submissions {
		c.submissions[k] = v
	}
	for k, v := range t.notifications {
		c.notifications[k] = v
	}
	return c
}

// sortedKeys returns the primary keys of a table in insertion order.
func sortedKeys[V any](table map[int]V) []int {
	ids := make([]int, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
