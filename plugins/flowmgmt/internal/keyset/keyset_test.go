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

package keyset

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/tungstenfabric/fdm/plugins/flowmgmt/api"
)

func TestFromSliceSortsAndDedups(t *testing.T) {
	RegisterTestingT(t)
	s := FromSlice([]api.FlowMgmtKey{
		api.InterfaceKey("b"),
		api.InterfaceKey("a"),
		api.InterfaceKey("a"),
	})
	Expect(s.Len()).To(Equal(2))
	Expect(s.Keys()[0].Equal(api.InterfaceKey("a"))).To(BeTrue())
	Expect(s.Keys()[1].Equal(api.InterfaceKey("b"))).To(BeTrue())
}

func TestInsertRemoveHas(t *testing.T) {
	RegisterTestingT(t)
	s := New()
	k := api.ACLKey("acl1")
	Expect(s.Has(k)).To(BeFalse())
	s.Insert(k)
	Expect(s.Has(k)).To(BeTrue())
	s.Insert(k)
	Expect(s.Len()).To(Equal(1))
	s.Remove(k)
	Expect(s.Has(k)).To(BeFalse())
	Expect(s.Len()).To(Equal(0))
}

func TestDiffLockStep(t *testing.T) {
	RegisterTestingT(t)
	old := FromSlice([]api.FlowMgmtKey{api.InterfaceKey("a"), api.InterfaceKey("b")}).Keys()
	updated := FromSlice([]api.FlowMgmtKey{api.InterfaceKey("b"), api.InterfaceKey("c")}).Keys()

	var added, removed, kept []api.FlowMgmtKey
	Diff(old, updated,
		func(k api.FlowMgmtKey) { added = append(added, k) },
		func(k api.FlowMgmtKey) { removed = append(removed, k) },
		func(k api.FlowMgmtKey) { kept = append(kept, k) },
	)
	Expect(added).To(HaveLen(1))
	Expect(added[0].Equal(api.InterfaceKey("c"))).To(BeTrue())
	Expect(removed).To(HaveLen(1))
	Expect(removed[0].Equal(api.InterfaceKey("a"))).To(BeTrue())
	Expect(kept).To(HaveLen(1))
	Expect(kept[0].Equal(api.InterfaceKey("b"))).To(BeTrue())
}

func TestCloneIsIndependent(t *testing.T) {
	RegisterTestingT(t)
	s := New()
	s.Insert(api.InterfaceKey("a"))
	clone := s.Clone()
	s.Insert(api.InterfaceKey("b"))
	Expect(clone.Len()).To(Equal(1))
	Expect(s.Len()).To(Equal(2))
}
