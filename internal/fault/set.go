package fault

// Set is a bitmask of ids, bit n standing for ID(n). Bits at or above Count
// are representable so that raw register values can be carried unchanged.
type Set uint32

const knownMask = Set(1)<<Count - 1

// SetOf builds a set from ids; ids outside the closed set are dropped.
func SetOf(ids ...ID) Set {
	var s Set
	for _, id := range ids {
		s = s.Add(id)
	}
	return s
}

func (s Set) Add(id ID) Set {
	if !id.Valid() {
		return s
	}
	return s | 1<<id
}

func (s Set) Has(id ID) bool {
	return id.Valid() && s&(1<<id) != 0
}

func (s Set) Empty() bool {
	return s == 0
}

// Known drops bits that do not name an id.
func (s Set) Known() Set {
	return s & knownMask
}

// Unknown returns only the bits that do not name an id.
func (s Set) Unknown() Set {
	return s &^ knownMask
}

// Len counts the known ids in s.
func (s Set) Len() int {
	n := 0
	for v := s.Known(); v != 0; v &= v - 1 {
		n++
	}
	return n
}

// IDs lists the known ids in s in ascending order.
func (s Set) IDs() []ID {
	out := make([]ID, 0, s.Len())
	for id := ID(0); id < Count; id++ {
		if s.Has(id) {
			out = append(out, id)
		}
	}
	return out
}
