package model

import "sort"

// AdminSet is the fixed set of staff ids allowed to run admin commands and
// reply to forwarded messages.
type AdminSet map[int64]struct{}

func NewAdminSet(ids ...int64) AdminSet {
	s := make(AdminSet, len(ids))
	for _, id := range ids {
		if id != 0 {
			s[id] = struct{}{}
		}
	}
	return s
}

func (s AdminSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in ascending order.
func (s AdminSet) IDs() []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
