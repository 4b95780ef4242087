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

package lpm

import (
	"net"
	"testing"

	. "github.com/onsi/gomega"
)

func TestCoverFindsGappedAncestor(t *testing.T) {
	RegisterTestingT(t)
	idx := New()
	idx.Insert(1, net.ParseIP("10.0.0.0"), 8)

	ip, plen, ok := idx.Cover(1, net.ParseIP("10.1.0.0"), 24, 32)
	Expect(ok).To(BeTrue())
	Expect(plen).To(Equal(uint8(8)))
	Expect(ip.Equal(net.ParseIP("10.0.0.0"))).To(BeTrue())
}

func TestCoverPrefersMoreSpecificAncestor(t *testing.T) {
	RegisterTestingT(t)
	idx := New()
	idx.Insert(1, net.ParseIP("10.0.0.0"), 8)
	idx.Insert(1, net.ParseIP("10.1.0.0"), 16)

	_, plen, ok := idx.Cover(1, net.ParseIP("10.1.2.0"), 24, 32)
	Expect(ok).To(BeTrue())
	Expect(plen).To(Equal(uint8(16)))
}

func TestCoverNoneWhenEmpty(t *testing.T) {
	RegisterTestingT(t)
	idx := New()
	_, _, ok := idx.Cover(1, net.ParseIP("10.1.0.0"), 24, 32)
	Expect(ok).To(BeFalse())
}

func TestCoverIsPerVRF(t *testing.T) {
	RegisterTestingT(t)
	idx := New()
	idx.Insert(1, net.ParseIP("10.0.0.0"), 8)
	_, _, ok := idx.Cover(2, net.ParseIP("10.1.0.0"), 24, 32)
	Expect(ok).To(BeFalse())
}

func TestRemoveDropsEmptyVRFTree(t *testing.T) {
	RegisterTestingT(t)
	idx := New()
	idx.Insert(1, net.ParseIP("10.0.0.0"), 8)
	Expect(idx.HasVRF(1)).To(BeTrue())
	idx.Remove(1, net.ParseIP("10.0.0.0"), 8)
	Expect(idx.HasVRF(1)).To(BeFalse())
}
