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

func interfaceSpec() *tree.Spec {
	return &tree.Spec{Kind: api.KindInterface, Name: "interface"}
}

// ExtractInterfaceKeys returns the single key a flow depends on for the
// interface it arrived on, if any.
func ExtractInterfaceKeys(ff api.FlowFields, out []api.FlowMgmtKey) []api.FlowMgmtKey {
	if ff.Interface == nil {
		return out
	}
	return append(out, api.InterfaceKey(ff.Interface.Key()))
}
