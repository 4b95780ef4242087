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

// Package tree implements the generic per-key dependency index: an ordered
// Key -> Entry map where Entry holds the set of flows currently depending
// on the keyed object plus a small state machine. Kind-specific behavior
// (key extraction, counters, VRF gating, LPM bookkeeping) is plugged in
// via a Spec, keeping the set of object kinds a closed, tagged-variant
// dispatch table rather than an open inheritance hierarchy.
package tree

import (
	"sync"

	"github.com/google/btree"
	"github.com/ligato/cn-infra/logging"

	"github.com/tungstenfabric/fdm/plugins/flowmgmt/api"
)

// OperState is the small per-entry oper-database observation state.
type OperState int

const (
	Invalid OperState = iota
	OperAddSeen
	OperDelSeen
)

// Entry is a DependencyEntry: the set of flows depending on one key, plus
// its oper-state, last-seen gen_id, an optional weak DBEntry reference and
// a kind-specific extension slot (VN counters, VRF back-reference slots).
type Entry struct {
	Key       api.FlowMgmtKey
	Flows     map[api.FlowHandle]api.Flow
	OperState OperState
	GenID     uint64
	DBEntry   api.DBEntry
	Ext       interface{}
}

func newEntry(key api.FlowMgmtKey) *Entry {
	return &Entry{Key: key, Flows: make(map[api.FlowHandle]api.Flow)}
}

// NewEntry is the exported form of newEntry, used by kind Specs whose
// AllocateEntry only needs to attach an Ext on top of the bare shape.
func NewEntry(key api.FlowMgmtKey) *Entry {
	return newEntry(key)
}

// Less implements btree.Item, ordering entries by their key.
func (e *Entry) Less(than btree.Item) bool {
	return e.Key.Less(than.(*Entry).Key)
}

// CanDeleteBase is the base can_delete(): flows empty and no ADD seen
// without a matching DEL/erase yet.
func (e *Entry) CanDeleteBase() bool {
	return len(e.Flows) == 0 && e.OperState != OperAddSeen
}

// Spec plugs kind-specific behavior into an otherwise generic Tree via a
// table of optional callback fields; a nil field falls back to default
// behavior.
type Spec struct {
	Kind api.Kind
	Name string

	// AllocateEntry builds a new Entry for key, optionally attaching a
	// kind-specific Ext (VN counters, VRF slots). If nil, a bare Entry is
	// used.
	AllocateEntry func(key api.FlowMgmtKey) *Entry

	// OnFlowAdd runs after a flow is associated with entry via Add,
	// isNewFlow indicating whether this is the flow's first association
	// with this exact key. ctx carries whatever the caller passed to Add
	// (VN direction memo; nil for kinds that don't need one).
	OnFlowAdd func(t *Tree, entry *Entry, flow api.Flow, isNewFlow bool, ctx interface{})

	// OnFlowDelete runs after a flow is dissociated from entry via Delete.
	OnFlowDelete func(t *Tree, entry *Entry, flow api.Flow, ctx interface{})

	// CanDelete overrides CanDeleteBase for kinds with extra deletability
	// conditions (VRF scope gating). If nil, CanDeleteBase is used.
	CanDelete func(entry *Entry) bool

	// OnOperEntryAdd runs kind-specific side effects when an entry
	// transitions to OperAddSeen (LPM insert + synthetic re-add of the
	// cover, DB-entry attach for routes).
	OnOperEntryAdd func(t *Tree, entry *Entry, req *api.Request)

	// OnOperEntryDelete runs kind-specific side effects before an entry
	// transitions to OperDelSeen (LPM removal).
	OnOperEntryDelete func(t *Tree, entry *Entry)

	// HasVRFFlows overrides the default "false" answer for kinds that
	// track a vrf_id discriminator (routes, bridge routes).
	HasVRFFlows func(t *Tree, vrfID uint32) bool

	// OnErase runs immediately before an entry is physically removed from
	// the tree in tryDelete, regardless of which oper-state got it there
	// (VRF's vrf_id -> key side map cleanup).
	OnErase func(t *Tree, entry *Entry)

	// Locked marks a kind whose Tree must serialize concurrent access
	// with a mutex because it is queried off the manager's own goroutine
	// (only KindVN, for its externally-readable counters).
	Locked bool
}

// Tree is the generic dependency index for one object kind.
type Tree struct {
	spec      *Spec
	bt        *btree.BTree
	mu        sync.Mutex
	responses api.ResponseSink
	vrfs      api.VRFNotifier
	log       logging.Logger
}

// New constructs a Tree for the given kind Spec.
func New(spec *Spec, responses api.ResponseSink, vrfs api.VRFNotifier, log logging.Logger) *Tree {
	return &Tree{
		spec:      spec,
		bt:        btree.New(32),
		responses: responses,
		vrfs:      vrfs,
		log:       log,
	}
}

// Kind returns the object kind this tree indexes.
func (t *Tree) Kind() api.Kind { return t.spec.Kind }

// Responses exposes the response sink for kind-specific hooks.
func (t *Tree) Responses() api.ResponseSink { return t.responses }

// VRFs exposes the VRF notifier for kind-specific hooks.
func (t *Tree) VRFs() api.VRFNotifier { return t.vrfs }

// Log exposes the logger for kind-specific hooks.
func (t *Tree) Log() logging.Logger { return t.log }

func (t *Tree) lock() {
	if t.spec.Locked {
		t.mu.Lock()
	}
}

func (t *Tree) unlock() {
	if t.spec.Locked {
		t.mu.Unlock()
	}
}

// locate finds or lazily creates the entry for key.
func (t *Tree) locate(key api.FlowMgmtKey) *Entry {
	probe := &Entry{Key: key}
	if item := t.bt.Get(probe); item != nil {
		return item.(*Entry)
	}
	var entry *Entry
	if t.spec.AllocateEntry != nil {
		entry = t.spec.AllocateEntry(key)
	} else {
		entry = newEntry(key)
	}
	t.bt.ReplaceOrInsert(entry)
	return entry
}

// find returns the entry for key, or nil if absent, without creating one.
func (t *Tree) find(key api.FlowMgmtKey) *Entry {
	if item := t.bt.Get(&Entry{Key: key}); item != nil {
		return item.(*Entry)
	}
	return nil
}

// Find is the exported, locked form of find, used by callers outside the
// tree's own operations (Manager.VNFlowCounters,
// Registry.SignalRouteTableDeleted).
func (t *Tree) Find(key api.FlowMgmtKey) *Entry {
	t.lock()
	defer t.unlock()
	return t.find(key)
}

// Add associates flow with key, creating the entry if necessary. Returns
// true iff flow was newly inserted for this key. ctx is forwarded to
// Spec.OnFlowAdd verbatim; pass nil for kinds that ignore it.
func (t *Tree) Add(key api.FlowMgmtKey, flow api.Flow, ctx interface{}) bool {
	t.lock()
	defer t.unlock()
	entry := t.locate(key)
	_, existed := entry.Flows[flow.Handle()]
	entry.Flows[flow.Handle()] = flow
	if t.spec.OnFlowAdd != nil {
		t.spec.OnFlowAdd(t, entry, flow, !existed, ctx)
	}
	return !existed
}

// Delete dissociates flow from key and tries to erase the entry if it
// becomes deletable. Returns true iff the flow had actually been present.
func (t *Tree) Delete(key api.FlowMgmtKey, flow api.Flow, ctx interface{}) bool {
	t.lock()
	defer t.unlock()
	entry := t.find(key)
	if entry == nil {
		// Transient non-event: delete for a key unknown to this index.
		t.log.Warnf("flowmgmt: delete of unknown %s key %s", t.spec.Kind, key)
		return false
	}
	_, had := entry.Flows[flow.Handle()]
	delete(entry.Flows, flow.Handle())
	if had && t.spec.OnFlowDelete != nil {
		t.spec.OnFlowDelete(t, entry, flow, ctx)
	}
	t.tryDelete(entry)
	return had
}

// canDelete evaluates the (possibly overridden) deletability predicate.
func (t *Tree) canDelete(entry *Entry) bool {
	if t.spec.CanDelete != nil {
		return t.spec.CanDelete(entry)
	}
	return entry.CanDeleteBase()
}

// tryDelete erases the entry (emitting FREE_DBENTRY first if a DEL was
// observed) once it becomes deletable.
func (t *Tree) tryDelete(entry *Entry) bool {
	if !t.canDelete(entry) {
		return false
	}
	if entry.OperState == OperDelSeen {
		t.freeNotify(entry)
	}
	if t.spec.OnErase != nil {
		t.spec.OnErase(t, entry)
	}
	t.bt.Delete(entry)
	return true
}

// RetryDelete re-attempts tryDelete for key if its entry still exists,
// used by RETRY_DELETE_VRF and by route indexes after a delete makes a
// VRF newly eligible for teardown.
func (t *Tree) RetryDelete(key api.FlowMgmtKey) {
	t.lock()
	defer t.unlock()
	entry := t.find(key)
	if entry == nil {
		return
	}
	t.tryDelete(entry)
}

// freeNotify emits FREE_DBENTRY for entry's key if the kind produces one.
func (t *Tree) freeNotify(entry *Entry) {
	if !t.spec.Kind.ProducesFreeDBEntry() {
		return
	}
	dbEntry := entry.DBEntry
	if dbEntry == nil {
		dbEntry = entry.Key.DBEntry
	}
	t.responses.Enqueue(api.Response{
		Tag:     api.FreeDBEntry,
		DBEntry: dbEntry,
		GenID:   entry.GenID,
	})
}

// OperEntryAdd locates the entry, marks it OperAddSeen, runs kind-specific
// side effects, then re-notifies every dependent flow with a revaluation.
func (t *Tree) OperEntryAdd(req *api.Request, key api.FlowMgmtKey) {
	t.lock()
	defer t.unlock()
	entry := t.locate(key)
	entry.OperState = OperAddSeen
	if t.spec.OnOperEntryAdd != nil {
		t.spec.OnOperEntryAdd(t, entry, req)
	}
	t.notifyDependents(entry, req)
}

// OperEntryChange is a no-op if the entry is absent; otherwise, like
// OperEntryAdd, it runs the kind's OnOperEntryAdd hook and re-notifies
// dependents, so a changed DB-entry identity is picked up the same way a
// fresh one would be. It does not create an entry or change its oper-state.
func (t *Tree) OperEntryChange(req *api.Request, key api.FlowMgmtKey) {
	t.lock()
	defer t.unlock()
	entry := t.find(key)
	if entry == nil {
		return
	}
	if t.spec.OnOperEntryAdd != nil {
		t.spec.OnOperEntryAdd(t, entry, req)
	}
	t.notifyDependents(entry, req)
}

// OperEntryDelete handles an observed deletion: if the entry is absent,
// emit FREE_DBENTRY immediately (transient non-event) and return;
// otherwise mark OperDelSeen, record gen_id, re-notify dependents with a
// delete notice, then try to erase the entry.
func (t *Tree) OperEntryDelete(req *api.Request, key api.FlowMgmtKey) {
	t.lock()
	defer t.unlock()
	entry := t.find(key)
	if entry == nil {
		if t.spec.Kind.ProducesFreeDBEntry() {
			t.responses.Enqueue(api.Response{
				Tag:     api.FreeDBEntry,
				DBEntry: req.Entry,
				GenID:   req.GenID,
			})
		}
		return
	}
	if t.spec.OnOperEntryDelete != nil {
		t.spec.OnOperEntryDelete(t, entry)
	}
	entry.OperState = OperDelSeen
	entry.GenID = req.GenID
	if entry.DBEntry == nil {
		entry.DBEntry = req.Entry
	}
	t.notifyDelete(entry, req.Entry)
	t.tryDelete(entry)
}

// notifyDependents enqueues a revaluation for every flow depending on
// entry's key. A synthetic request (the LPM cover re-add) carries no real
// cause key of its own, so it is reported as REVALUATE_DBENTRY, naming only
// the DB entry that moved; an observed ADD/CHANGE reports REVALUATE_FLOW,
// naming the concrete key that changed.
func (t *Tree) notifyDependents(entry *Entry, req *api.Request) {
	if req.IsSynthetic() {
		for handle := range entry.Flows {
			t.responses.Enqueue(api.Response{
				Tag:          api.RevaluateDBEntry,
				Flow:         handle,
				CauseDBEntry: entry.DBEntry,
			})
		}
		return
	}
	for handle := range entry.Flows {
		t.responses.Enqueue(api.Response{
			Tag:          api.RevaluateFlow,
			Flow:         handle,
			CauseKey:     entry.Key,
			CauseDBEntry: req.Entry,
		})
	}
}

// notifyDelete enqueues DELETE_DBENTRY for every flow depending on
// entry's key.
func (t *Tree) notifyDelete(entry *Entry, dbEntry api.DBEntry) {
	for handle := range entry.Flows {
		t.responses.Enqueue(api.Response{
			Tag:          api.DeleteDBEntryResp,
			Flow:         handle,
			CauseKey:     entry.Key,
			CauseDBEntry: dbEntry,
		})
	}
}

// HasVRFFlows answers whether this index has any key for vrf_id, deferring
// to the kind-specific override when present (default: false, for kinds
// with no vrf_id discriminator).
func (t *Tree) HasVRFFlows(vrfID uint32) bool {
	if t.spec.HasVRFFlows == nil {
		return false
	}
	t.lock()
	defer t.unlock()
	return t.spec.HasVRFFlows(t, vrfID)
}

// Ascend calls fn for every entry in key order starting at pivot,
// stopping when fn returns false. Exposed for the kind-specific
// has_vrf_flows probes.
func (t *Tree) Ascend(pivot api.FlowMgmtKey, fn func(*Entry) bool) {
	t.bt.AscendGreaterOrEqual(&Entry{Key: pivot}, func(item btree.Item) bool {
		return fn(item.(*Entry))
	})
}

// Len returns the number of entries currently stored (test/diagnostic use).
func (t *Tree) Len() int {
	t.lock()
	defer t.unlock()
	return t.bt.Len()
}
