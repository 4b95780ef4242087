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
	"net"

	"github.com/tungstenfabric/fdm/plugins/flowmgmt/api"
	"github.com/tungstenfabric/fdm/plugins/flowmgmt/internal/lpm"
	"github.com/tungstenfabric/fdm/plugins/flowmgmt/internal/tree"
)

func routeKeyOf(kind api.Kind, vrfID uint32, ip net.IP, plen uint8) api.FlowMgmtKey {
	if kind == api.KindInet4Route {
		return api.Inet4RouteKey(vrfID, ip, plen)
	}
	return api.Inet6RouteKey(vrfID, ip, plen)
}

// inetRouteSpec builds the Inet4Route/Inet6Route index: an ordered
// (vrf, subnet, plen) key space backed by a per-family lpm.Index, so a
// newly inserted more-specific route can re-notify whichever less-specific
// route previously served as the LPM match for it.
func inetRouteSpec(kind api.Kind, idx *lpm.Index, bits int, vrfs api.VRFNotifier) *tree.Spec {
	return &tree.Spec{
		Kind: kind,
		Name: kind.String(),
		OnOperEntryAdd: func(t *tree.Tree, entry *tree.Entry, req *api.Request) {
			if req.IsSynthetic() {
				// A synthetic re-add exists only to re-fire REVALUATE on the
				// covering entry; it must not itself trigger another round
				// of LPM insertion or cover lookup.
				return
			}
			entry.DBEntry = req.Entry
			ip := net.ParseIP(entry.Key.IP)
			idx.Insert(entry.Key.VRFID, ip, entry.Key.PrefixLen)
			if coverIP, coverPlen, ok := idx.Cover(entry.Key.VRFID, ip, entry.Key.PrefixLen, bits); ok {
				t.OperEntryAdd(api.NewSyntheticOperAdd(), routeKeyOf(kind, entry.Key.VRFID, coverIP, coverPlen))
			}
		},
		OnOperEntryDelete: func(t *tree.Tree, entry *tree.Entry) {
			idx.Remove(entry.Key.VRFID, net.ParseIP(entry.Key.IP), entry.Key.PrefixLen)
			vrfs.RetryDeleteVRF(entry.Key.VRFID)
		},
		OnFlowDelete: func(t *tree.Tree, entry *tree.Entry, flow api.Flow, ctx interface{}) {
			vrfs.RetryDeleteVRF(entry.Key.VRFID)
		},
		HasVRFFlows: func(t *tree.Tree, vrfID uint32) bool {
			found := false
			t.Ascend(api.FlowMgmtKey{Tag: kind, VRFID: vrfID}, func(e *tree.Entry) bool {
				found = e.Key.VRFID == vrfID
				return false
			})
			return found
		},
	}
}

func inet4RouteSpec(idx *lpm.Index, vrfs api.VRFNotifier) *tree.Spec {
	return inetRouteSpec(api.KindInet4Route, idx, net.IPv4len*8, vrfs)
}

func inet6RouteSpec(idx *lpm.Index, vrfs api.VRFNotifier) *tree.Spec {
	return inetRouteSpec(api.KindInet6Route, idx, net.IPv6len*8, vrfs)
}

func addrIs4(ip net.IP) bool { return ip != nil && ip.To4() != nil }

func extractInetKeys(ff api.FlowFields, out []api.FlowMgmtKey, is4 bool, keyFn func(vrfID uint32, ip net.IP, plen uint8) api.FlowMgmtKey) []api.FlowMgmtKey {
	if !ff.IsL3 {
		// An L2 flow still depends on one inet route: the source-VRF RPF
		// check keyed at L2RpfPlen.
		if ff.SourceVRF != nil && addrIs4(ff.SourceIP) == is4 {
			out = append(out, keyFn(ff.SourceVRF.ID, ff.SourceIP, ff.L2RpfPlen))
		}
		return out
	}
	if ff.SourceVRF != nil && addrIs4(ff.SourceIP) == is4 {
		out = append(out, keyFn(ff.SourceVRF.ID, ff.SourceIP, ff.SourcePlen))
		for _, plen := range ff.SourcePlenSet {
			out = append(out, keyFn(ff.SourceVRF.ID, ff.SourceIP, plen))
		}
	}
	if ff.DestVRF != nil && addrIs4(ff.DestIP) == is4 {
		out = append(out, keyFn(ff.DestVRF.ID, ff.DestIP, ff.DestPlen))
		for _, plen := range ff.DestPlenSet {
			out = append(out, keyFn(ff.DestVRF.ID, ff.DestIP, plen))
		}
	}
	return out
}

// ExtractInet4RouteKeys returns the IPv4 source/dest route keys (primary
// plen plus any additional plens the flow separately depends on) an L3
// flow depends on.
func ExtractInet4RouteKeys(ff api.FlowFields, out []api.FlowMgmtKey) []api.FlowMgmtKey {
	return extractInetKeys(ff, out, true, api.Inet4RouteKey)
}

// ExtractInet6RouteKeys is ExtractInet4RouteKeys for the IPv6 family.
func ExtractInet6RouteKeys(ff api.FlowFields, out []api.FlowMgmtKey) []api.FlowMgmtKey {
	return extractInetKeys(ff, out, false, api.Inet6RouteKey)
}
