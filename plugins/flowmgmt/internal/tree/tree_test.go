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

package tree

import (
	"testing"

	. "github.com/onsi/gomega"
	"github.com/ligato/cn-infra/logging"
	_ "github.com/ligato/cn-infra/logging/logrus"

	"github.com/tungstenfabric/fdm/plugins/flowmgmt/api"
)

type stubFlow struct {
	handle api.FlowHandle
}

func (f *stubFlow) Handle() api.FlowHandle             { return f.handle }
func (f *stubFlow) ReadFields(fn func(api.FlowFields)) { fn(api.FlowFields{}) }

type stubSink struct {
	responses []api.Response
}

func (s *stubSink) Enqueue(r api.Response) { s.responses = append(s.responses, r) }

type stubVRFs struct {
	retried []uint32
}

func (s *stubVRFs) RetryDeleteVRF(vrfID uint32) { s.retried = append(s.retried, vrfID) }

func newTestTree(spec *Spec) (*Tree, *stubSink) {
	sink := &stubSink{}
	return New(spec, sink, &stubVRFs{}, logging.ForPlugin("tree-test")), sink
}

func TestAddDeleteRoundTrip(t *testing.T) {
	RegisterTestingT(t)
	tr, _ := newTestTree(&Spec{Kind: api.KindInterface, Name: "interface"})
	key := api.InterfaceKey("if1")
	flow := &stubFlow{handle: 1}

	Expect(tr.Add(key, flow, nil)).To(BeTrue())
	Expect(tr.Add(key, flow, nil)).To(BeFalse())
	Expect(tr.Len()).To(Equal(1))

	Expect(tr.Delete(key, flow, nil)).To(BeTrue())
	Expect(tr.Len()).To(Equal(0))
	Expect(tr.Delete(key, flow, nil)).To(BeFalse())
}

func TestOperEntryDeleteBeforeAddIsTransientFree(t *testing.T) {
	RegisterTestingT(t)
	tr, sink := newTestTree(&Spec{Kind: api.KindACL, Name: "acl"})
	key := api.ACLKey("acl1")

	tr.OperEntryDelete(&api.Request{GenID: 3}, key)
	Expect(len(sink.responses)).To(Equal(1))
	Expect(sink.responses[0].Tag).To(Equal(api.FreeDBEntry))
	Expect(sink.responses[0].GenID).To(Equal(uint64(3)))
	Expect(tr.Len()).To(Equal(0))
}

func TestZombieGuardKeepsEntryUntilFlowsDrain(t *testing.T) {
	RegisterTestingT(t)
	tr, sink := newTestTree(&Spec{Kind: api.KindACL, Name: "acl"})
	key := api.ACLKey("acl1")
	flow := &stubFlow{handle: 1}

	tr.Add(key, flow, nil)
	tr.OperEntryAdd(&api.Request{}, key)
	tr.OperEntryDelete(&api.Request{GenID: 9}, key)

	Expect(tr.Len()).To(Equal(1))
	// REVALUATE_FLOW from the add, DELETE_DBENTRY from the delete; no FREE
	// yet: flow still attached.
	Expect(len(sink.responses)).To(Equal(2))
	Expect(sink.responses[0].Tag).To(Equal(api.RevaluateFlow))
	Expect(sink.responses[1].Tag).To(Equal(api.DeleteDBEntryResp))

	tr.Delete(key, flow, nil)
	Expect(tr.Len()).To(Equal(0))
	Expect(len(sink.responses)).To(Equal(3))
	Expect(sink.responses[2].Tag).To(Equal(api.FreeDBEntry))
	Expect(sink.responses[2].GenID).To(Equal(uint64(9)))
}

func TestAceIDNeverProducesFree(t *testing.T) {
	RegisterTestingT(t)
	tr, sink := newTestTree(&Spec{Kind: api.KindAceID, Name: "ace-id"})
	key := api.AceIDKey("acl1", 4)

	tr.OperEntryAdd(&api.Request{}, key)
	tr.OperEntryDelete(&api.Request{GenID: 1}, key)
	Expect(len(sink.responses)).To(Equal(0))
	Expect(tr.Len()).To(Equal(0))
}
