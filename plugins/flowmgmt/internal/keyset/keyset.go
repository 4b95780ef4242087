// Copyright (c) 2020 Cisco and/or its affiliates.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at:
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package keyset implements the ordered key set backing FlowEntryInfo.Keys,
// kept sorted rather than a plain map since addFlowInternal needs a
// lock-step diff of two key sets rather than plain membership tests.
package keyset

import "sort"

import "github.com/tungstenfabric/fdm/plugins/flowmgmt/api"

// OrderedSet is a sorted, duplicate-free slice of FlowMgmtKey.
type OrderedSet struct {
	keys []api.FlowMgmtKey
}

// New returns an empty OrderedSet.
func New() *OrderedSet {
	return &OrderedSet{}
}

// FromSlice builds an OrderedSet out of an unordered slice, sorting and
// de-duplicating it in the process. Used to assemble a flow's new key set
// out of the per-index key extraction contributions.
func FromSlice(keys []api.FlowMgmtKey) *OrderedSet {
	s := &OrderedSet{keys: append([]api.FlowMgmtKey(nil), keys...)}
	sort.Slice(s.keys, func(i, j int) bool { return s.keys[i].Less(s.keys[j]) })
	out := s.keys[:0]
	for i, k := range s.keys {
		if i == 0 || !out[len(out)-1].Equal(k) {
			out = append(out, k)
		}
	}
	s.keys = out
	return s
}

// Keys returns the sorted, de-duplicated key slice. Callers must not
// mutate it.
func (s *OrderedSet) Keys() []api.FlowMgmtKey {
	if s == nil {
		return nil
	}
	return s.keys
}

// Len returns the number of keys in the set.
func (s *OrderedSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

func (s *OrderedSet) search(k api.FlowMgmtKey) int {
	return sort.Search(len(s.keys), func(i int) bool { return !s.keys[i].Less(k) })
}

// Has reports whether k is a member of the set.
func (s *OrderedSet) Has(k api.FlowMgmtKey) bool {
	i := s.search(k)
	return i < len(s.keys) && s.keys[i].Equal(k)
}

// Insert adds k to the set, a no-op if already present.
func (s *OrderedSet) Insert(k api.FlowMgmtKey) {
	i := s.search(k)
	if i < len(s.keys) && s.keys[i].Equal(k) {
		return
	}
	s.keys = append(s.keys, api.FlowMgmtKey{})
	copy(s.keys[i+1:], s.keys[i:])
	s.keys[i] = k
}

// Remove deletes k from the set, a no-op if absent.
func (s *OrderedSet) Remove(k api.FlowMgmtKey) {
	i := s.search(k)
	if i < len(s.keys) && s.keys[i].Equal(k) {
		s.keys = append(s.keys[:i], s.keys[i+1:]...)
	}
}

// Clone returns a deep copy safe for independent mutation.
func (s *OrderedSet) Clone() *OrderedSet {
	if s == nil {
		return New()
	}
	return &OrderedSet{keys: append([]api.FlowMgmtKey(nil), s.keys...)}
}

// Diff walks oldKeys and newKeys (both must already be sorted, e.g. via
// FromSlice/Keys) in lock-step, exactly as addFlowInternal's incremental
// delta requires:
//   - a key only in newKeys is passed to onlyInNew (Add)
//   - a key only in oldKeys is passed to onlyInOld (Delete)
//   - a key in both is passed to inBoth (still an Add, to refresh
//     mutable-flag-derived counters such as VN direction).
func Diff(oldKeys, newKeys []api.FlowMgmtKey, onlyInNew, onlyInOld, inBoth func(api.FlowMgmtKey)) {
	i, j := 0, 0
	for i < len(oldKeys) && j < len(newKeys) {
		switch c := oldKeys[i].Compare(newKeys[j]); {
		case c < 0:
			onlyInOld(oldKeys[i])
			i++
		case c > 0:
			onlyInNew(newKeys[j])
			j++
		default:
			inBoth(newKeys[j])
			i++
			j++
		}
	}
	for ; i < len(oldKeys); i++ {
		onlyInOld(oldKeys[i])
	}
	for ; j < len(newKeys); j++ {
		onlyInNew(newKeys[j])
	}
}
