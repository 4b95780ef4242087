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

import "fmt"

// DBEntry is a control-plane object observed by the agent through its
// object database: an interface, VN, ACL, NH, route, VRF, or VM. FDM never
// owns these objects; it only tracks weak references to them, keyed by
// Key(), and forwards them back to the DB client on FREE_DBENTRY.
//
// Every concrete DBEntry also satisfies proto.Message so callers can
// operate on it uniformly the way a descriptor-based config store would;
// String() gives the FREE/REVALUATE response log lines a useful payload
// without a type switch.
type DBEntry interface {
	fmt.Stringer
	Reset()
	ProtoMessage()

	// Kind identifies the runtime type of the entry.
	Kind() Kind
	// Key is the stable DB-entry identity.
	Key() string
}

// base is embedded by every concrete DBEntry to satisfy proto.Message
// trivially, the same shape a protoc-generated message would have.
type base struct{}

func (*base) Reset()         {}
func (*base) ProtoMessage()  {}

// Interface is a vRouter interface DB entry.
type Interface struct {
	base
	UUID string
}

func (i *Interface) Kind() Kind    { return KindInterface }
func (i *Interface) Key() string   { return i.UUID }
func (i *Interface) String() string {
	return fmt.Sprintf("Interface{%s}", i.UUID)
}

// ACL is an access-control list DB entry.
type ACL struct {
	base
	UUID string
}

func (a *ACL) Kind() Kind    { return KindACL }
func (a *ACL) Key() string   { return a.UUID }
func (a *ACL) String() string {
	return fmt.Sprintf("ACL{%s}", a.UUID)
}

// VN is a virtual-network DB entry.
type VN struct {
	base
	UUID string
}

func (v *VN) Kind() Kind    { return KindVN }
func (v *VN) Key() string   { return v.UUID }
func (v *VN) String() string {
	return fmt.Sprintf("VN{%s}", v.UUID)
}

// NH is a next-hop DB entry.
type NH struct {
	base
	Index uint32
}

func (n *NH) Kind() Kind    { return KindNH }
func (n *NH) Key() string   { return fmt.Sprintf("nh-%d", n.Index) }
func (n *NH) String() string {
	return fmt.Sprintf("NH{%d}", n.Index)
}

// VRF is a VRF (forwarding table) DB entry.
type VRF struct {
	base
	ID uint32
}

func (v *VRF) Kind() Kind    { return KindVRF }
func (v *VRF) Key() string   { return fmt.Sprintf("vrf-%d", v.ID) }
func (v *VRF) String() string {
	return fmt.Sprintf("VRF{%d}", v.ID)
}

// VM is a virtual-machine DB entry. Read-only w.r.t. lifecycle, like
// KindAceID: it never produces a FREE_DBENTRY (see Kind.ProducesFreeDBEntry).
type VM struct {
	base
	UUID string
}

func (v *VM) Kind() Kind    { return KindVM }
func (v *VM) Key() string   { return v.UUID }
func (v *VM) String() string {
	return fmt.Sprintf("VM{%s}", v.UUID)
}

// RouteEntry is the DB payload attached to an inet4/inet6/bridge route key
// once a real ADD/CHANGE/DELETE_DBENTRY accompanies it.
type RouteEntry struct {
	base
	VRFID uint32
	kind  Kind
	label string
}

// NewRouteEntry constructs a RouteEntry DBEntry for the given kind
// (KindInet4Route, KindInet6Route or KindBridgeRoute) and human label
// (subnet or MAC string), used purely for identity/logging.
func NewRouteEntry(kind Kind, vrfID uint32, label string) *RouteEntry {
	return &RouteEntry{VRFID: vrfID, kind: kind, label: label}
}

func (r *RouteEntry) Kind() Kind  { return r.kind }
func (r *RouteEntry) Key() string { return fmt.Sprintf("%s-vrf%d-%s", r.kind, r.VRFID, r.label) }
func (r *RouteEntry) String() string {
	return fmt.Sprintf("Route{vrf=%d,%s}", r.VRFID, r.label)
}
