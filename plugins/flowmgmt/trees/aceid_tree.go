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

// aceIDSpec builds the finer-grained companion to the ACL index: one entry
// per (acl, ace_id) pair actually matched, so an ACE-level change need only
// re-evaluate the flows that hit that specific ACE rather than every flow
// referencing the parent ACL. It never gates a DELETE_DBENTRY/FREE_DBENTRY
// pair of its own (api.Kind.ProducesFreeDBEntry is false for KindAceID);
// ACE identity lives and dies with its parent ACL.
func aceIDSpec() *tree.Spec {
	return &tree.Spec{Kind: api.KindAceID, Name: "ace-id"}
}

// ExtractAceIDKeys returns one key per distinct (acl, ace_id) pair matched
// across the flow's nine match-ACL lists.
func ExtractAceIDKeys(ff api.FlowFields, out []api.FlowMgmtKey) []api.FlowMgmtKey {
	var seen map[api.FlowMgmtKey]bool
	for _, m := range ff.MatchACLLists {
		if m.ACL == nil {
			continue
		}
		for _, aceID := range m.AceIDs {
			k := api.AceIDKey(m.ACL.Key(), aceID)
			if seen == nil {
				seen = make(map[api.FlowMgmtKey]bool)
			}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
