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

// Route table indices for VrfEntry.RouteTablesDeleted / SignalRouteTableDeleted.
const (
	RouteTableInet4 = iota
	RouteTableInet6
	RouteTableBridge
	numRouteTables
)

// VrfEntry is the Ext attached to every VRF entry: three slots, one per
// address-family/bridge route table this VRF owns, each set once that
// table's own managed-delete has completed. A VRF is only ever eligible for
// FREE once all three have fired and none of the three route indexes still
// reports a live key for it.
type VrfEntry struct {
	RouteTablesDeleted [numRouteTables]bool
}

func (r *Registry) vrfCanDelete(entry *tree.Entry) bool {
	if !entry.CanDeleteBase() {
		return false
	}
	ext, ok := entry.Ext.(*VrfEntry)
	if !ok {
		return false
	}
	for _, deleted := range ext.RouteTablesDeleted {
		if !deleted {
			return false
		}
	}
	return !r.HasVRFFlows(entry.Key.VRFID)
}

func (r *Registry) vrfSpec() *tree.Spec {
	return &tree.Spec{
		Kind: api.KindVRF,
		Name: "vrf",
		AllocateEntry: func(key api.FlowMgmtKey) *tree.Entry {
			e := tree.NewEntry(key)
			e.Ext = &VrfEntry{}
			return e
		},
		OnOperEntryAdd: func(t *tree.Tree, entry *tree.Entry, req *api.Request) {
			entry.DBEntry = req.Entry
			r.vrfByID[entry.Key.VRFID] = entry.Key
		},
		CanDelete: r.vrfCanDelete,
		OnErase: func(t *tree.Tree, entry *tree.Entry) {
			delete(r.vrfByID, entry.Key.VRFID)
		},
	}
}

// SignalRouteTableDeleted marks one of vrfID's three back-referenced route
// tables as torn down and asks the Manager to retry the VRF's deletion,
// since that may be the last gating condition still open.
func (r *Registry) SignalRouteTableDeleted(vrfID uint32, table int) {
	key, ok := r.vrfByID[vrfID]
	if !ok {
		return
	}
	entry := r.byKind[api.KindVRF].Find(key)
	if entry == nil {
		return
	}
	ext, ok := entry.Ext.(*VrfEntry)
	if !ok {
		return
	}
	ext.RouteTablesDeleted[table] = true
	r.vrfs.RetryDeleteVRF(vrfID)
}

// LookupVRFKey resolves a bare vrf_id to its stored key via the side map
// the VRF index maintains alongside the tree itself, used to service
// RETRY_DELETE_VRF requests that only carry the bare id.
func (r *Registry) LookupVRFKey(vrfID uint32) (api.FlowMgmtKey, bool) {
	k, ok := r.vrfByID[vrfID]
	return k, ok
}
