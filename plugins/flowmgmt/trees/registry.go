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

// Package trees wires the kind-specific dependency indexes on top of the
// generic tree.Tree, and provides the flow-side key extraction each kind
// contributes to a flow's dependency set.
package trees

import (
	"github.com/ligato/cn-infra/logging"

	"github.com/tungstenfabric/fdm/plugins/flowmgmt/api"
	"github.com/tungstenfabric/fdm/plugins/flowmgmt/internal/lpm"
	"github.com/tungstenfabric/fdm/plugins/flowmgmt/internal/tree"
)

// Registry owns one Tree per object kind plus the cross-kind state that a
// lone Tree can't hold on its own: the per-family LPM sub-indexes shared by
// the two route trees, the VRF vrf_id -> key side map, and the VRF scope
// gate that reads across all three per-VRF route indexes.
type Registry struct {
	byKind map[api.Kind]*tree.Tree

	inet4LPM *lpm.Index
	inet6LPM *lpm.Index

	vrfByID map[uint32]api.FlowMgmtKey
	vrfs    api.VRFNotifier
}

// NewRegistry constructs all ten kind indexes, wired to the given response
// sink and VRF notifier (normally the owning Manager). logVNCounterChurn
// turns on a Debugf line in the VN index every time its ingress/egress
// counters change.
func NewRegistry(responses api.ResponseSink, vrfs api.VRFNotifier, log logging.Logger, logVNCounterChurn bool) *Registry {
	r := &Registry{
		byKind:   make(map[api.Kind]*tree.Tree, 10),
		inet4LPM: lpm.New(),
		inet6LPM: lpm.New(),
		vrfByID:  make(map[uint32]api.FlowMgmtKey),
		vrfs:     vrfs,
	}
	build := func(spec *tree.Spec) *tree.Tree { return tree.New(spec, responses, vrfs, log) }

	r.byKind[api.KindInterface] = build(interfaceSpec())
	r.byKind[api.KindACL] = build(aclSpec())
	r.byKind[api.KindAceID] = build(aceIDSpec())
	r.byKind[api.KindVN] = build(vnSpec(logVNCounterChurn))
	r.byKind[api.KindNH] = build(nhSpec())
	r.byKind[api.KindInet4Route] = build(inet4RouteSpec(r.inet4LPM, vrfs))
	r.byKind[api.KindInet6Route] = build(inet6RouteSpec(r.inet6LPM, vrfs))
	r.byKind[api.KindBridgeRoute] = build(bridgeRouteSpec(vrfs))
	r.byKind[api.KindVRF] = build(r.vrfSpec())
	r.byKind[api.KindVM] = build(vmSpec())
	return r
}

// Tree returns the index for kind. Panics if kind is not one of the ten
// registered api.Kind values, a programming error.
func (r *Registry) Tree(kind api.Kind) *tree.Tree {
	t, ok := r.byKind[kind]
	if !ok {
		panic(api.ErrUnknownDBEntryKind)
	}
	return t
}

// HasVRFFlows reports whether any of the three per-VRF route indexes still
// has a live key for vrfID.
func (r *Registry) HasVRFFlows(vrfID uint32) bool {
	return r.byKind[api.KindInet4Route].HasVRFFlows(vrfID) ||
		r.byKind[api.KindInet6Route].HasVRFFlows(vrfID) ||
		r.byKind[api.KindBridgeRoute].HasVRFFlows(vrfID)
}

// extractors lists, per contributing kind, the FlowFields walker that
// produces that kind's keys for a flow. KindVRF and KindVM are absent: a
// flow never depends on either directly, only transitively through the
// route/bridge indexes that gate a VRF's deletion.
var extractors = []func(api.FlowFields, []api.FlowMgmtKey) []api.FlowMgmtKey{
	ExtractInterfaceKeys,
	ExtractACLKeys,
	ExtractAceIDKeys,
	ExtractVNKeys,
	ExtractNHKeys,
	ExtractInet4RouteKeys,
	ExtractInet6RouteKeys,
	ExtractBridgeRouteKeys,
}

// ExtractAll unions every contributing kind's key extraction for one flow's
// current fields, unsorted and possibly with duplicates; callers sort and
// dedup via keyset.FromSlice.
func ExtractAll(ff api.FlowFields) []api.FlowMgmtKey {
	var out []api.FlowMgmtKey
	for _, extract := range extractors {
		out = extract(ff, out)
	}
	return out
}
