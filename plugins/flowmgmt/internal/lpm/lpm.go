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

// Package lpm implements the per-VRF longest-prefix-match sub-index: an
// ordered set of (ip, plen) per VRF supporting the covering-route lookup
// that drives synthetic re-add on route insertion.
//
// Cover descends through every candidate prefix length shorter than the
// query, not just the immediate predecessor length, so a route table with
// gaps (10.0.0.0/8 present, nothing between /9 and /23, a query at /24)
// still finds its true cover instead of stopping at the first missing
// length. DESIGN.md records this descent as a deliberate design choice.
package lpm

import (
	"net"

	"github.com/google/btree"
)

type point struct {
	ip   string
	plen uint8
}

func (p *point) Less(than btree.Item) bool {
	o := than.(*point)
	if p.ip != o.ip {
		return p.ip < o.ip
	}
	return p.plen < o.plen
}

// Index tracks, per VRF, the set of (ip, plen) pairs currently present in
// one address family's route index.
type Index struct {
	trees map[uint32]*btree.BTree
}

// New returns an empty per-VRF LPM index.
func New() *Index {
	return &Index{trees: make(map[uint32]*btree.BTree)}
}

func (idx *Index) treeFor(vrfID uint32) *btree.BTree {
	t, ok := idx.trees[vrfID]
	if !ok {
		t = btree.New(32)
		idx.trees[vrfID] = t
	}
	return t
}

// Insert records (vrfID, ip, plen). ip must already be canonicalized to
// its subnet address for plen, the same canonicalization
// api.Inet4RouteKey/Inet6RouteKey apply.
func (idx *Index) Insert(vrfID uint32, ip net.IP, plen uint8) {
	idx.treeFor(vrfID).ReplaceOrInsert(&point{ip: ip.String(), plen: plen})
}

// Remove deletes (vrfID, ip, plen), dropping the per-VRF tree once it is
// empty so HasVRF reports false promptly.
func (idx *Index) Remove(vrfID uint32, ip net.IP, plen uint8) {
	t, ok := idx.trees[vrfID]
	if !ok {
		return
	}
	t.Delete(&point{ip: ip.String(), plen: plen})
	if t.Len() == 0 {
		delete(idx.trees, vrfID)
	}
}

// Cover returns the longest prefix strictly shorter than plen, in the
// same VRF, that contains ip, or ok=false if none exists.
func (idx *Index) Cover(vrfID uint32, ip net.IP, plen uint8, bits int) (coverIP net.IP, coverPlen uint8, ok bool) {
	if plen == 0 {
		return nil, 0, false
	}
	t, exists := idx.trees[vrfID]
	if !exists {
		return nil, 0, false
	}
	for l := int(plen) - 1; l >= 0; l-- {
		masked := ip.Mask(net.CIDRMask(l, bits))
		if item := t.Get(&point{ip: masked.String(), plen: uint8(l)}); item != nil {
			return masked, uint8(l), true
		}
	}
	return nil, 0, false
}

// HasVRF reports whether any (ip, plen) is currently recorded for vrfID.
func (idx *Index) HasVRF(vrfID uint32) bool {
	t, ok := idx.trees[vrfID]
	return ok && t.Len() > 0
}
