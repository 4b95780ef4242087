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
	"github.com/tungstenfabric/fdm/plugins/flowmgmt/api"
	"github.com/tungstenfabric/fdm/plugins/flowmgmt/internal/tree"
)

// vmSpec builds the VM index. No FlowFields discriminator maps to a VM
// today (flows never carry a VM reference directly), so this index is only
// ever populated by ADD/CHANGE/DELETE_DBENTRY(VM) and never by a flow's own
// key extraction; it exists for completeness of the object-kind set and to
// let VM DB churn flow through the same lifecycle accounting as every other
// kind.
func vmSpec() *tree.Spec {
	return &tree.Spec{
		Kind: api.KindVM,
		Name: "vm",
		OnOperEntryAdd: func(t *tree.Tree, entry *tree.Entry, req *api.Request) {
			entry.DBEntry = req.Entry
		},
	}
}
