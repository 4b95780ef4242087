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

package flowmgmt

import (
	"github.com/tungstenfabric/fdm/plugins/flowmgmt/api"
	"github.com/tungstenfabric/fdm/plugins/flowmgmt/internal/keyset"
	"github.com/tungstenfabric/fdm/plugins/flowmgmt/trees"
)

// dispatch routes one Request to the index its Key/Kind names, or to the
// flow-level handlers for ADD_FLOW/DELETE_FLOW. Always runs on the single
// processing goroutine.
func (m *Manager) dispatch(req *api.Request) {
	switch req.Tag {
	case api.AddFlow:
		m.addFlowInternal(req.Flow)
	case api.DeleteFlow:
		m.deleteFlowInternal(req.Flow)
	case api.AddDBEntry:
		m.registry.Tree(req.Key.Tag).OperEntryAdd(req, req.Key)
	case api.ChangeDBEntry:
		m.registry.Tree(req.Key.Tag).OperEntryChange(req, req.Key)
	case api.DeleteDBEntry:
		m.registry.Tree(req.Key.Tag).OperEntryDelete(req, req.Key)
	case api.RetryDeleteVRF:
		m.RetryDeleteVRF(req.VRFID)
	default:
		m.Log.Fatalf("%v: %d", api.ErrUnknownRequestTag, req.Tag)
	}
}

// addFlowInternal handles an incremental ADD_FLOW: read the flow's current
// fields, compute its new key set, diff it against the key set recorded
// from the last ADD_FLOW for this flow, and apply exactly the delta to
// every affected index.
func (m *Manager) addFlowInternal(flow api.Flow) {
	handle := flow.Handle()
	fi, exists := m.flows[handle]
	if !exists {
		fi = newFlowEntryInfo()
		m.flows[handle] = fi
	}
	fi.EventCount++

	var fields api.FlowFields
	flow.ReadFields(func(f api.FlowFields) { fields = f })
	fi.LocalFlow = fields.Local
	fi.Ingress = fields.Ingress
	ctx := fi.dirMemo()

	oldKeys := fi.Keys.Clone().Keys()
	newKeys := keyset.FromSlice(trees.ExtractAll(fields)).Keys()

	keyset.Diff(oldKeys, newKeys,
		func(add api.FlowMgmtKey) {
			m.registry.Tree(add.Tag).Add(add, flow, ctx)
			fi.Keys.Insert(add)
		},
		func(del api.FlowMgmtKey) {
			m.registry.Tree(del.Tag).Delete(del, flow, ctx)
			fi.Keys.Remove(del)
		},
		func(both api.FlowMgmtKey) {
			// Still an Add: refreshes VN counters when direction flags
			// changed without the key set itself changing.
			m.registry.Tree(both.Tag).Add(both, flow, ctx)
		},
	)
}

// deleteFlowInternal handles DELETE_FLOW: drop the flow from every key it
// was registered against, drop its FlowEntryInfo, and release the
// Manager's own reference via FREE_FLOW_REF.
func (m *Manager) deleteFlowInternal(flow api.Flow) {
	handle := flow.Handle()
	fi, ok := m.flows[handle]
	if !ok {
		return
	}
	ctx := fi.dirMemo()
	for _, key := range fi.Keys.Clone().Keys() {
		if !m.registry.Tree(key.Tag).Delete(key, flow, ctx) {
			m.Log.Fatalf("%v: flow=%d key=%s", api.ErrMissingKeyOnDelete, handle, key)
		}
	}
	delete(m.flows, handle)
	m.Enqueue(api.Response{Tag: api.FreeFlowRef, Flow: handle})
}
