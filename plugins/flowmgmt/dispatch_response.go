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
	"context"

	"github.com/ligato/cn-infra/logging"

	"github.com/tungstenfabric/fdm/plugins/flowmgmt/api"
)

// dispatchResponse routes one Response to the flow engine or DB client
// handler, mirroring dispatch's request-side routing. FreeFlowRef,
// RevaluateFlow, RevaluateDBEntry and DeleteDBEntryResp all name a flow and
// go to flowEngine; FreeDBEntry goes to dbClient.
func dispatchResponse(resp api.Response, flowEngine api.FlowEngineHandler, dbClient api.DBClientHandler, log logging.Logger) {
	switch resp.Tag {
	case api.FreeFlowRef:
		flowEngine.ReleaseFlow(resp.Flow)
	case api.RevaluateFlow:
		flowEngine.RevaluateFlow(resp.Flow, resp.CauseKey, resp.CauseDBEntry)
	case api.RevaluateDBEntry:
		flowEngine.RevaluateDBEntry(resp.Flow, resp.CauseDBEntry)
	case api.DeleteDBEntryResp:
		flowEngine.DeleteDBEntry(resp.Flow, resp.CauseDBEntry)
	case api.FreeDBEntry:
		dbClient.FreeDBEntry(resp.DBEntry, resp.GenID)
	default:
		log.Fatalf("flowmgmt: unknown response tag %d", resp.Tag)
	}
}

// RunResponseDispatch is the single consumer loop for the response queue:
// it belongs on the embedding agent's own flow-table task, pulling from
// Responses() and handing each one to dispatchResponse until either the
// context is canceled or the channel is closed by Close. Callers normally
// run this in its own goroutine, one per Manager.
func (m *Manager) RunResponseDispatch(ctx context.Context, flowEngine api.FlowEngineHandler, dbClient api.DBClientHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case resp, ok := <-m.respCh:
			if !ok {
				return
			}
			dispatchResponse(resp, flowEngine, dbClient, m.Log)
		}
	}
}
