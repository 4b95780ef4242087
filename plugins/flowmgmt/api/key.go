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

import (
	"fmt"
	"net"
	"strings"
)

// FlowMgmtKey is a tagged value identifying one dependency target. Keys are
// clonable, value-equal and totally ordered over (tag, discriminators), as
// required for the lock-step diff performed in addFlowInternal and for the
// per-VRF LPM ordering.
//
// DBEntry carries a weak reference to the underlying DB object; it is
// deliberately excluded from Compare/Equal so that two keys referring to
// the same route/mac/object still collide in the index regardless of
// whether one of them happens to carry the DB entry and the other doesn't
// (transient lookup keys never carry one).
type FlowMgmtKey struct {
	Tag Kind

	// EntryKey is the DB-entry identity discriminator, used by
	// INTERFACE, ACL, ACE_ID (the ACL half), VN, NH, VRF and VM.
	EntryKey string
	// AceID is the ACE_ID's second discriminator.
	AceID uint32

	// VRFID, IP, PrefixLen are used by INET4/INET6 (subnet form) keys.
	VRFID     uint32
	IP        string
	PrefixLen uint8

	// MAC is used by BRIDGE keys, alongside VRFID.
	MAC string

	// DBEntry is left nil by every key constructor in this package; the
	// indexes record an object's DB entry on tree.Entry.DBEntry instead
	// (see the kinds' OnOperEntryAdd hooks), and tree.Tree falls back to
	// this field only when that one is nil.
	DBEntry DBEntry
}

// Compare implements the total order over (tag, discriminators). It never
// looks at DBEntry.
func (k FlowMgmtKey) Compare(o FlowMgmtKey) int {
	if k.Tag != o.Tag {
		return int(k.Tag) - int(o.Tag)
	}
	switch k.Tag {
	case KindInet4Route, KindInet6Route:
		if k.VRFID != o.VRFID {
			return cmpUint32(k.VRFID, o.VRFID)
		}
		if c := strings.Compare(k.IP, o.IP); c != 0 {
			return c
		}
		return int(k.PrefixLen) - int(o.PrefixLen)
	case KindBridgeRoute:
		if k.VRFID != o.VRFID {
			return cmpUint32(k.VRFID, o.VRFID)
		}
		return strings.Compare(k.MAC, o.MAC)
	case KindAceID:
		if c := strings.Compare(k.EntryKey, o.EntryKey); c != 0 {
			return c
		}
		return cmpUint32(k.AceID, o.AceID)
	default:
		return strings.Compare(k.EntryKey, o.EntryKey)
	}
}

// Less reports whether k sorts before o.
func (k FlowMgmtKey) Less(o FlowMgmtKey) bool { return k.Compare(o) < 0 }

// Equal reports value equality, ignoring the attached weak DBEntry.
func (k FlowMgmtKey) Equal(o FlowMgmtKey) bool { return k.Compare(o) == 0 }

// String renders the key for logs and REVALUATE/DELETE response payloads.
func (k FlowMgmtKey) String() string {
	switch k.Tag {
	case KindInet4Route, KindInet6Route:
		return fmt.Sprintf("%s{vrf=%d,%s/%d}", k.Tag, k.VRFID, k.IP, k.PrefixLen)
	case KindBridgeRoute:
		return fmt.Sprintf("%s{vrf=%d,mac=%s}", k.Tag, k.VRFID, k.MAC)
	case KindAceID:
		return fmt.Sprintf("%s{acl=%s,ace=%d}", k.Tag, k.EntryKey, k.AceID)
	default:
		return fmt.Sprintf("%s{%s}", k.Tag, k.EntryKey)
	}
}

func cmpUint32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// InterfaceKey builds a KindInterface key.
func InterfaceKey(uuid string) FlowMgmtKey {
	return FlowMgmtKey{Tag: KindInterface, EntryKey: uuid}
}

// ACLKey builds a KindACL key.
func ACLKey(uuid string) FlowMgmtKey {
	return FlowMgmtKey{Tag: KindACL, EntryKey: uuid}
}

// AceIDKey builds a KindAceID key for one ACE within an ACL.
func AceIDKey(aclUUID string, aceID uint32) FlowMgmtKey {
	return FlowMgmtKey{Tag: KindAceID, EntryKey: aclUUID, AceID: aceID}
}

// VNKey builds a KindVN key.
func VNKey(uuid string) FlowMgmtKey {
	return FlowMgmtKey{Tag: KindVN, EntryKey: uuid}
}

// NHKey builds a KindNH key.
func NHKey(index uint32) FlowMgmtKey {
	return FlowMgmtKey{Tag: KindNH, EntryKey: fmt.Sprintf("nh-%d", index)}
}

// VRFKeyOf builds a KindVRF key.
func VRFKeyOf(id uint32) FlowMgmtKey {
	return FlowMgmtKey{Tag: KindVRF, EntryKey: fmt.Sprintf("vrf-%d", id), VRFID: id}
}

// VMKey builds a KindVM key.
func VMKey(uuid string) FlowMgmtKey {
	return FlowMgmtKey{Tag: KindVM, EntryKey: uuid}
}

// Inet4RouteKey canonicalizes (vrf, ip, plen) to its subnet address and
// builds a KindInet4Route key.
func Inet4RouteKey(vrfID uint32, ip net.IP, plen uint8) FlowMgmtKey {
	return inetRouteKey(KindInet4Route, vrfID, ip, plen, net.IPv4len*8)
}

// Inet6RouteKey canonicalizes (vrf, ip, plen) to its subnet address and
// builds a KindInet6Route key.
func Inet6RouteKey(vrfID uint32, ip net.IP, plen uint8) FlowMgmtKey {
	return inetRouteKey(KindInet6Route, vrfID, ip, plen, net.IPv6len*8)
}

func inetRouteKey(kind Kind, vrfID uint32, ip net.IP, plen uint8, bits int) FlowMgmtKey {
	isV4 := ip != nil && ip.To4() != nil
	if ip == nil || isV4 != (bits == net.IPv4len*8) {
		panic(ErrNonAddressableRoute)
	}
	subnet := ip.Mask(net.CIDRMask(int(plen), bits))
	return FlowMgmtKey{Tag: kind, VRFID: vrfID, IP: subnet.String(), PrefixLen: plen}
}

// BridgeRouteKey builds a KindBridgeRoute key.
func BridgeRouteKey(vrfID uint32, mac net.HardwareAddr) FlowMgmtKey {
	return FlowMgmtKey{Tag: KindBridgeRoute, VRFID: vrfID, MAC: mac.String()}
}

// ZeroMAC is the all-zeros MAC used as the lower bound of an upper-bound
// probe for BridgeRouteTree.HasVRFFlows.
var ZeroMAC = net.HardwareAddr{0, 0, 0, 0, 0, 0}
