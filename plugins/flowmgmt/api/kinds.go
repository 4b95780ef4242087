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

package api

// Kind identifies the runtime type of a DB entry / dependency key. It is
// also used as the FlowMgmtKey tag, since every key targets exactly one
// object kind.
type Kind int

const (
	// KindInterface identifies a vRouter interface.
	KindInterface Kind = iota
	// KindACL identifies an access-control list.
	KindACL
	// KindAceID identifies a single ACE within an ACL, used only for
	// finer-grained REVALUATE fan-out (never a delete target on its own).
	KindAceID
	// KindVN identifies a virtual network.
	KindVN
	// KindNH identifies a next-hop.
	KindNH
	// KindInet4Route identifies an IPv4 unicast route.
	KindInet4Route
	// KindInet6Route identifies an IPv6 unicast route.
	KindInet6Route
	// KindBridgeRoute identifies a bridge (MAC) route.
	KindBridgeRoute
	// KindVRF identifies a VRF (forwarding table).
	KindVRF
	// KindVM identifies a virtual machine. Produces no FREE_DBENTRY.
	KindVM
)

// String gives a human-readable name for the kind, used in log fields and
// response messages.
func (k Kind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindACL:
		return "acl"
	case KindAceID:
		return "ace-id"
	case KindVN:
		return "vn"
	case KindNH:
		return "nh"
	case KindInet4Route:
		return "inet4"
	case KindInet6Route:
		return "inet6"
	case KindBridgeRoute:
		return "bridge"
	case KindVRF:
		return "vrf"
	case KindVM:
		return "vm"
	default:
		return "unknown"
	}
}

// ProducesFreeDBEntry reports whether a DELETE observed for this kind
// eventually results in a FREE_DBENTRY response once the entry is
// deletable. ACE_ID and VM entries are read-only w.r.t. the DB-entry
// lifecycle and never own a FREE_DBENTRY.
func (k Kind) ProducesFreeDBEntry() bool {
	return k != KindAceID && k != KindVM
}
