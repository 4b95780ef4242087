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
	"github.com/tungstenfabric/fdm/plugins/flowmgmt/api"
	"github.com/tungstenfabric/fdm/plugins/flowmgmt/internal/keyset"
)

// FlowEntryInfo is the per-flow bookkeeping the Manager keeps alongside
// every flow it has an ADD_FLOW for: the ordered set of keys the flow
// currently depends on, a diagnostic count of the ADD_FLOW events processed
// for it (nothing reads it back), and the direction flags
// last observed (used to reconcile the owning VN's counters on a re-add
// that changes direction without changing VN membership).
type FlowEntryInfo struct {
	Keys       *keyset.OrderedSet
	EventCount uint64
	LocalFlow  bool
	Ingress    bool
}

func newFlowEntryInfo() *FlowEntryInfo {
	return &FlowEntryInfo{Keys: keyset.New()}
}

// dirMemo returns the direction memo the tree layer needs for VN counter
// reconciliation, reflecting the most recently observed fields.
func (fi *FlowEntryInfo) dirMemo() api.FlowDirMemo {
	return api.FlowDirMemo{Local: fi.LocalFlow, Ingress: fi.Ingress}
}
