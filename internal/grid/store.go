package grid

// Store is the sparse local view of checked indices. Absence means unchecked,
// which is the default for the whole domain; only checked indices are ever
// represented. The Store is not safe for concurrent use; the client mutates
// it exclusively from the Bubble Tea update loop, which serializes the local
// input path and the remote message path for free.
type Store struct {
	checked map[int]struct{}
}

// NewStore returns an empty store. State lives for the session only.
func NewStore() *Store {
	return &Store{checked: make(map[int]struct{})}
}

// MarkChecked records index as checked. Out-of-domain indices are ignored.
func (s *Store) MarkChecked(index int) {
	if index < 0 || index >= Domain {
		return
	}
	s.checked[index] = struct{}{}
}

// MarkUnchecked removes the entry for index. Unchecking deletes rather than
// storing false, so the store never holds an unchecked entry. Unchecking an
// already-unchecked index is a no-op.
func (s *Store) MarkUnchecked(index int) {
	delete(s.checked, index)
}

// IsChecked reports whether index is currently known to be checked.
func (s *Store) IsChecked(index int) bool {
	_, ok := s.checked[index]
	return ok
}

// Len returns the number of indices currently known to be checked.
func (s *Store) Len() int {
	return len(s.checked)
}

// MergeRange applies a range-query answer for [start, end). states maps the
// indices the authority listed to their explicit bit: true adds, false
// deletes. Listed indices outside [start, end) are ignored; a response is
// authoritative only for the sub-range it was asked about. Indices inside the
// range but absent from states keep their previously known state; the wire
// format cannot distinguish "known unchecked" from "never reported", so we
// deliberately leave them alone. Applying the same answer twice is a no-op.
func (s *Store) MergeRange(start, end int, states map[int]bool) {
	for index, checked := range states {
		if index < start || index >= end {
			continue
		}
		if checked {
			s.MarkChecked(index)
		} else {
			s.MarkUnchecked(index)
		}
	}
}
