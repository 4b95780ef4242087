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

func aclSpec() *tree.Spec {
	return &tree.Spec{Kind: api.KindACL, Name: "acl"}
}

// ExtractACLKeys walks all nine match-ACL lists on the flow and returns one
// key per distinct ACL referenced, in any of them.
func ExtractACLKeys(ff api.FlowFields, out []api.FlowMgmtKey) []api.FlowMgmtKey {
	var seen map[string]bool
	for _, m := range ff.MatchACLLists {
		if m.ACL == nil {
			continue
		}
		if seen == nil {
			seen = make(map[string]bool, api.NumMatchACLLists)
		}
		if seen[m.ACL.Key()] {
			continue
		}
		seen[m.ACL.Key()] = true
		out = append(out, api.ACLKey(m.ACL.Key()))
	}
	return out
}
