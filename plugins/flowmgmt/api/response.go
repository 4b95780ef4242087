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

// ResponseTag identifies the payload shape of a Response.
type ResponseTag int

const (
	// RevaluateFlow asks the flow engine to re-evaluate a flow because one
	// of the keys it depends on changed; carries the causing key.
	RevaluateFlow ResponseTag = iota
	// RevaluateDBEntry asks the flow engine to re-evaluate a flow because a
	// DB entry it depends on changed, without a specific causing key. Only
	// the LPM synthetic re-add produces this: it re-fires the covering
	// route's dependents without a real request naming the changed key.
	RevaluateDBEntry
	// DeleteDBEntryResp tells the flow engine that a DB entry a flow
	// depends on has been deleted; the flow must stop depending on it.
	DeleteDBEntryResp
	// FreeDBEntry tells the DB client that an object may now be physically
	// freed; carries the gen_id observed on the DEL that triggered it.
	FreeDBEntry
	// FreeFlowRef releases the flow reference the Manager took on
	// DELETE_FLOW; must run on the flow-engine task, never inside an index
	// mutation.
	FreeFlowRef
)

func (t ResponseTag) String() string {
	switch t {
	case RevaluateFlow:
		return "REVALUATE_FLOW"
	case RevaluateDBEntry:
		return "REVALUATE_DBENTRY"
	case DeleteDBEntryResp:
		return "DELETE_DBENTRY"
	case FreeDBEntry:
		return "FREE_DBENTRY"
	case FreeFlowRef:
		return "FREE_FLOW_REF"
	default:
		return "UNKNOWN"
	}
}

// Response is one message posted to the Manager's response queue.
type Response struct {
	Tag ResponseTag

	Flow FlowHandle

	// CauseKey is set for RevaluateFlow and DeleteDBEntryResp: the key
	// whose change or deletion triggered the response.
	CauseKey FlowMgmtKey
	// CauseDBEntry is set for RevaluateFlow/RevaluateDBEntry/DeleteDBEntryResp:
	// the DB entry that changed.
	CauseDBEntry DBEntry

	// DBEntry, GenID are set for FreeDBEntry.
	DBEntry DBEntry
	GenID   uint64
}

// FlowEngineHandler is the flow engine's response handler: the sink for
// every response that names a flow (RevaluateFlow, RevaluateDBEntry,
// DeleteDBEntryResp, FreeFlowRef).
type FlowEngineHandler interface {
	// ReleaseFlow drops the Manager's own reference to flow, taken when it
	// was submitted for DELETE_FLOW.
	ReleaseFlow(flow FlowHandle)
	// RevaluateFlow re-evaluates flow because causeKey changed; causeDBEntry
	// is the DB entry now filed under causeKey, if any.
	RevaluateFlow(flow FlowHandle, causeKey FlowMgmtKey, causeDBEntry DBEntry)
	// RevaluateDBEntry re-evaluates flow because a DB entry it transitively
	// depends on changed, without a specific causing key.
	RevaluateDBEntry(flow FlowHandle, causeDBEntry DBEntry)
	// DeleteDBEntry tells flow it must stop depending on causeDBEntry.
	DeleteDBEntry(flow FlowHandle, causeDBEntry DBEntry)
}

// DBClientHandler is the DB client's free handler: the sink for FreeDBEntry.
type DBClientHandler interface {
	FreeDBEntry(entry DBEntry, genID uint64)
}

// ResponseSink is the narrow interface the internal indexes use to enqueue
// responses, without importing the Manager package (avoids an import
// cycle between plugins/flowmgmt and plugins/flowmgmt/trees).
type ResponseSink interface {
	Enqueue(Response)
}

// VRFNotifier lets the route/bridge indexes ask the Manager to retry a
// VRF's deletion once they can no longer see any flows for it, without
// importing the Manager package.
type VRFNotifier interface {
	RetryDeleteVRF(vrfID uint32)
}
