// Package symbol interns identifier names into small bijective handles.
//
// A symbol is a (u32, string) pair behind a process-wide bidirectional
// map. Ids are assigned by drawing random uint32s and retrying on
// collision rather than counting up, which is why two interned symbols
// never compare as "close" even if interned back to back.
package symbol

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sasha-s/go-deadlock"
)

// Symb is a stable, process-lifetime handle to an interned name.
type Symb struct {
	id uint32
}

func (s Symb) String() string {
	return Name(s)
}

var (
	mu      deadlock.Mutex
	byName  = make(map[string]Symb)
	byID    = make(map[uint32]string)
	randGen = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// New interns name, returning the existing handle if name was seen before.
func New(name string) Symb {
	mu.Lock()
	defer mu.Unlock()
	if s, ok := byName[name]; ok {
		return s
	}
	var id uint32
	for {
		id = randGen.Uint32()
		if _, taken := byID[id]; !taken {
			break
		}
	}
	s := Symb{id: id}
	byName[name] = s
	byID[id] = name
	return s
}

// Name returns the interned text for s. Panics if s was never interned by
// this process — a symbol handle that exists at all must have come from New.
func Name(s Symb) string {
	mu.Lock()
	defer mu.Unlock()
	name, ok := byID[s.id]
	if !ok {
		panic(fmt.Sprintf("symbol: unknown handle %d", s.id))
	}
	return name
}

// Equal reports whether two handles name the same symbol.
func Equal(a, b Symb) bool {
	return a.id == b.id
}
