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

package trees

import (
	"github.com/tungstenfabric/fdm/plugins/flowmgmt/api"
	"github.com/tungstenfabric/fdm/plugins/flowmgmt/internal/tree"
)

// vnCounters is the Ext attached to every VN entry: the running ingress and
// egress flow counts, plus the last direction memoized per flow so a
// re-add whose direction flipped without touching membership can be
// reconciled instead of double-counted.
type vnCounters struct {
	Ingress uint32
	Egress  uint32
	memo    map[api.FlowHandle]api.FlowDirMemo
}

// Counters returns the VN entry's current ingress/egress flow counts, or
// (0, 0) if the VN has no entry (never seen a flow).
func Counters(ext interface{}) (ingress, egress uint32) {
	c, ok := ext.(*vnCounters)
	if !ok {
		return 0, 0
	}
	return c.Ingress, c.Egress
}

// contribution maps a flow's current direction memo to the (ingress,
// egress) it contributes: a local flow counts on both sides, otherwise it
// counts on whichever side its ingress flag names.
func contribution(m api.FlowDirMemo) (ingress, egress int) {
	switch {
	case m.Local:
		return 1, 1
	case m.Ingress:
		return 1, 0
	default:
		return 0, 1
	}
}

func vnAllocateEntry(key api.FlowMgmtKey) *tree.Entry {
	e := tree.NewEntry(key)
	e.Ext = &vnCounters{memo: make(map[api.FlowHandle]api.FlowDirMemo)}
	return e
}

// vnOnFlowAdd reconciles the VN's ingress/egress counters against the
// flow's previous contribution (none, for a brand new association) and its
// current one, so any combination of new-insertion, direction flip, or
// local/non-local transition on re-add nets out to the same totals a full
// recount over all flows would produce. Fresh insertion and an ingress
// flip on a non-local re-add both fall out of this same delta as special
// cases, along with the local/non-local transition neither of those two
// alone would cover.
func vnOnFlowAdd(t *tree.Tree, entry *tree.Entry, flow api.Flow, isNewFlow bool, ctx interface{}, logChurn bool) {
	memo, ok := ctx.(api.FlowDirMemo)
	if !ok {
		return
	}
	c := entry.Ext.(*vnCounters)
	oldIn, oldEg := 0, 0
	if prev, had := c.memo[flow.Handle()]; had {
		oldIn, oldEg = contribution(prev)
	}
	newIn, newEg := contribution(memo)
	c.Ingress = uint32(int(c.Ingress) + newIn - oldIn)
	c.Egress = uint32(int(c.Egress) + newEg - oldEg)
	c.memo[flow.Handle()] = memo
	if logChurn && (newIn != oldIn || newEg != oldEg) {
		t.Log().Debugf("flowmgmt: vn %s counters now ingress=%d egress=%d", entry.Key, c.Ingress, c.Egress)
	}
}

func vnOnFlowDelete(t *tree.Tree, entry *tree.Entry, flow api.Flow, ctx interface{}, logChurn bool) {
	c := entry.Ext.(*vnCounters)
	prev, had := c.memo[flow.Handle()]
	if !had {
		return
	}
	oldIn, oldEg := contribution(prev)
	c.Ingress -= uint32(oldIn)
	c.Egress -= uint32(oldEg)
	delete(c.memo, flow.Handle())
	if logChurn {
		t.Log().Debugf("flowmgmt: vn %s counters now ingress=%d egress=%d", entry.Key, c.Ingress, c.Egress)
	}
}

func vnSpec(logChurn bool) *tree.Spec {
	return &tree.Spec{
		Kind:          api.KindVN,
		Name:          "vn",
		AllocateEntry: vnAllocateEntry,
		OnFlowAdd: func(t *tree.Tree, entry *tree.Entry, flow api.Flow, isNewFlow bool, ctx interface{}) {
			vnOnFlowAdd(t, entry, flow, isNewFlow, ctx, logChurn)
		},
		OnFlowDelete: func(t *tree.Tree, entry *tree.Entry, flow api.Flow, ctx interface{}) {
			vnOnFlowDelete(t, entry, flow, ctx, logChurn)
		},
		OnOperEntryAdd: func(t *tree.Tree, entry *tree.Entry, req *api.Request) { entry.DBEntry = req.Entry },
		// The VN tree is queried by VNFlowCounters off the manager's own
		// processing goroutine (metrics/monitoring readers), the only kind
		// that needs it.
		Locked: true,
	}
}

// ExtractVNKeys returns the single key a flow depends on for its virtual
// network, if any.
func ExtractVNKeys(ff api.FlowFields, out []api.FlowMgmtKey) []api.FlowMgmtKey {
	if ff.VN == nil {
		return out
	}
	return append(out, api.VNKey(ff.VN.Key()))
}
