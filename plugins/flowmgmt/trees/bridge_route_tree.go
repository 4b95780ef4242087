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

// bridgeRouteSpec builds the BridgeRoute index: (vrf, mac) keys with no LPM
// (MAC lookups are exact-match), gating VRF deletion the same way the inet
// route indexes do.
func bridgeRouteSpec(vrfs api.VRFNotifier) *tree.Spec {
	return &tree.Spec{
		Kind: api.KindBridgeRoute,
		Name: "bridge",
		OnOperEntryAdd: func(t *tree.Tree, entry *tree.Entry, req *api.Request) {
			entry.DBEntry = req.Entry
		},
		OnOperEntryDelete: func(t *tree.Tree, entry *tree.Entry) {
			vrfs.RetryDeleteVRF(entry.Key.VRFID)
		},
		OnFlowDelete: func(t *tree.Tree, entry *tree.Entry, flow api.Flow, ctx interface{}) {
			vrfs.RetryDeleteVRF(entry.Key.VRFID)
		},
		// HasVRFFlows probes for the first key at or after (vrfID,
		// all-zero MAC), the same upper-bound-probe shape the inet route
		// indexes use with an all-zero address.
		HasVRFFlows: func(t *tree.Tree, vrfID uint32) bool {
			found := false
			t.Ascend(api.BridgeRouteKey(vrfID, api.ZeroMAC), func(e *tree.Entry) bool {
				found = e.Key.VRFID == vrfID
				return false
			})
			return found
		},
	}
}

// ExtractBridgeRouteKeys returns the bridge-route keys an L2 flow depends
// on: its source MAC against both the source and destination VRF's bridge
// tables.
func ExtractBridgeRouteKeys(ff api.FlowFields, out []api.FlowMgmtKey) []api.FlowMgmtKey {
	if ff.IsL3 || ff.SrcMAC == nil {
		return out
	}
	if ff.SourceVRF != nil {
		out = append(out, api.BridgeRouteKey(ff.SourceVRF.ID, ff.SrcMAC))
	}
	if ff.DestVRF != nil {
		out = append(out, api.BridgeRouteKey(ff.DestVRF.ID, ff.SrcMAC))
	}
	return out
}
