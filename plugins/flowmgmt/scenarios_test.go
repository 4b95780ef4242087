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
	"testing"

	. "github.com/onsi/gomega"

	"github.com/tungstenfabric/fdm/plugins/flowmgmt/api"
	"github.com/tungstenfabric/fdm/plugins/flowmgmt/trees"
)

func TestSingleFlowAddDelete(t *testing.T) {
	RegisterTestingT(t)
	m, teardown := newTestManager()
	defer teardown()

	iface := &api.Interface{UUID: "if1"}
	vn := &api.VN{UUID: "vn1"}
	flow := newFakeFlow(1, api.FlowFields{Interface: iface, VN: vn, Local: true})

	m.AddFlow(flow)
	m.barrier()
	Expect(m.registry.Tree(api.KindInterface).Len()).To(Equal(1))
	Expect(m.registry.Tree(api.KindVN).Len()).To(Equal(1))
	ingress, egress := m.VNFlowCounters("vn1")
	Expect(ingress).To(Equal(uint32(1)))
	Expect(egress).To(Equal(uint32(1)))

	m.DeleteFlow(flow)
	m.barrier()
	Expect(m.registry.Tree(api.KindInterface).Len()).To(Equal(0))
	Expect(m.registry.Tree(api.KindVN).Len()).To(Equal(0))

	resps := drainResponses(m)
	Expect(countTag(resps, api.FreeFlowRef)).To(Equal(1))
}

func TestSyntheticReAddOnMoreSpecificRoute(t *testing.T) {
	RegisterTestingT(t)
	m, teardown := newTestManager()
	defer teardown()

	const vrfID = 5
	broad := api.Inet4RouteKey(vrfID, mustIP("10.0.0.0"), 8)
	m.AddDBEntry(broad, api.NewRouteEntry(api.KindInet4Route, vrfID, "10.0.0.0/8"))
	drainResponses(m)

	vrf := &api.VRF{ID: vrfID}
	flow := newFakeFlow(1, api.FlowFields{
		IsL3: true, SourceVRF: vrf, SourceIP: mustIP("10.0.0.0"), SourcePlen: 8,
	})
	m.AddFlow(flow)
	drainResponses(m)

	narrow := api.Inet4RouteKey(vrfID, mustIP("10.1.0.0"), 24)
	m.AddDBEntry(narrow, api.NewRouteEntry(api.KindInet4Route, vrfID, "10.1.0.0/24"))
	resps := drainResponses(m)

	Expect(countTag(resps, api.RevaluateDBEntry)).To(Equal(1))
	Expect(resps[0].CauseDBEntry).To(Equal(api.NewRouteEntry(api.KindInet4Route, vrfID, "10.0.0.0/8")))
	Expect(resps[0].Flow).To(Equal(flow.Handle()))
}

func TestDeferredFreeViaACL(t *testing.T) {
	RegisterTestingT(t)
	m, teardown := newTestManager()
	defer teardown()

	acl := &api.ACL{UUID: "acl1"}
	flow := newFakeFlow(1, api.FlowFields{MatchACLLists: [api.NumMatchACLLists]api.MatchACLEntry{{ACL: acl}}})
	m.AddFlow(flow)
	drainResponses(m)

	m.DeleteDBEntry(api.ACLKey("acl1"), 7)
	resps := drainResponses(m)
	Expect(countTag(resps, api.DeleteDBEntryResp)).To(Equal(1))
	Expect(countTag(resps, api.FreeDBEntry)).To(Equal(0))
	Expect(m.registry.Tree(api.KindACL).Len()).To(Equal(1))

	m.DeleteFlow(flow)
	resps = drainResponses(m)
	Expect(countTag(resps, api.FreeDBEntry)).To(Equal(1))
	for _, r := range resps {
		if r.Tag == api.FreeDBEntry {
			Expect(r.GenID).To(Equal(uint64(7)))
		}
	}
	Expect(m.registry.Tree(api.KindACL).Len()).To(Equal(0))
}

func TestVRFTeardownGating(t *testing.T) {
	RegisterTestingT(t)
	m, teardown := newTestManager()
	defer teardown()

	const vrfID = 9
	m.AddDBEntry(api.VRFKeyOf(vrfID), &api.VRF{ID: vrfID})
	drainResponses(m)

	m.DeleteDBEntry(api.VRFKeyOf(vrfID), 42)
	resps := drainResponses(m)
	Expect(countTag(resps, api.FreeDBEntry)).To(Equal(0))
	Expect(m.registry.Tree(api.KindVRF).Len()).To(Equal(1))

	m.NotifyRouteTableDeleted(vrfID, trees.RouteTableInet4)
	m.NotifyRouteTableDeleted(vrfID, trees.RouteTableInet6)
	m.barrier()
	Expect(m.registry.Tree(api.KindVRF).Len()).To(Equal(1))

	m.NotifyRouteTableDeleted(vrfID, trees.RouteTableBridge)
	resps = drainResponses(m)
	Expect(countTag(resps, api.FreeDBEntry)).To(Equal(1))
	Expect(m.registry.Tree(api.KindVRF).Len()).To(Equal(0))
}

func TestVNCounterDirectionFlip(t *testing.T) {
	RegisterTestingT(t)
	m, teardown := newTestManager()
	defer teardown()

	vn := &api.VN{UUID: "vn5"}
	flow := newFakeFlow(1, api.FlowFields{VN: vn, Ingress: true, Local: false})
	m.AddFlow(flow)
	m.barrier()
	ingress, egress := m.VNFlowCounters("vn5")
	Expect(ingress).To(Equal(uint32(1)))
	Expect(egress).To(Equal(uint32(0)))

	flow.update(api.FlowFields{VN: vn, Ingress: false, Local: false})
	m.AddFlow(flow)
	m.barrier()
	ingress, egress = m.VNFlowCounters("vn5")
	Expect(ingress).To(Equal(uint32(0)))
	Expect(egress).To(Equal(uint32(1)))

	flow.update(api.FlowFields{VN: vn, Ingress: false, Local: true})
	m.AddFlow(flow)
	m.barrier()
	ingress, egress = m.VNFlowCounters("vn5")
	Expect(ingress).To(Equal(uint32(1)))
	Expect(egress).To(Equal(uint32(1)))

	m.DeleteFlow(flow)
	m.barrier()
	ingress, egress = m.VNFlowCounters("vn5")
	Expect(ingress).To(Equal(uint32(0)))
	Expect(egress).To(Equal(uint32(0)))
}

func TestChangeDBEntryOneRevaluatePerEvent(t *testing.T) {
	RegisterTestingT(t)
	m, teardown := newTestManager()
	defer teardown()

	acl := &api.ACL{UUID: "aclX"}
	flow := newFakeFlow(1, api.FlowFields{MatchACLLists: [api.NumMatchACLLists]api.MatchACLEntry{{ACL: acl}}})
	m.AddFlow(flow)
	drainResponses(m)

	m.ChangeDBEntry(api.ACLKey("aclX"), acl)
	resps := drainResponses(m)
	Expect(countTag(resps, api.RevaluateFlow)).To(Equal(1))

	m.ChangeDBEntry(api.ACLKey("aclX"), acl)
	resps = drainResponses(m)
	Expect(countTag(resps, api.RevaluateFlow)).To(Equal(1))
}
