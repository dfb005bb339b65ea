package symbol

import "sync"

// Table maps interned names to IDs and back. Implementations must be safe
// for concurrent use, matching the teacher's own table (elps
// v2/pkg/symbol.Table), even though lumen's VM is single-threaded — the
// reader, compiler and REPL may run on different goroutines during
// interactive use (e.g. a REPL reading the next line while the VM thread
// finishes a long collection).
type Table interface {
	// Len returns the number of names interned so far.
	Len() int
	// Intern returns the ID for name, assigning a fresh one if name has
	// not been seen before.
	Intern(name string) ID
	// Peek returns the ID for name without interning it.
	Peek(name string) (ID, bool)
	// Name returns the interned name for id.
	Name(id ID) (string, bool)
}

// Default is the process-wide symbol table. Interpreter runtimes may
// construct their own private Table via NewTable for isolated test
// fixtures, but ordinary use goes through Default via Intern/Name so that
// gensym-produced and reader-produced symbols always compare equal when
// their names match.
var Default Table = NewTable()

// Intern interns name in Default.
func Intern(name string) ID { return Default.Intern(name) }

// Name looks up id in Default.
func Name(id ID) (string, bool) { return Default.Name(id) }

type table struct {
	mu     sync.Mutex
	byName map[string]ID
	byID   []string // byID[0] is unused, IDs start at 1
}

// NewTable returns a fresh, empty symbol table.
func NewTable() Table {
	return &table{
		byName: make(map[string]ID),
		byID:   []string{""},
	}
}

func (t *table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byID) - 1
}

func (t *table) Intern(name string) ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := ID(len(t.byID))
	t.byID = append(t.byID, name)
	t.byName[name] = id
	return id
}

func (t *table) Peek(name string) (ID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.byName[name]
	return id, ok
}

func (t *table) Name(id ID) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(id) <= 0 || int(id) >= len(t.byID) {
		return "", false
	}
	return t.byID[id], true
}
