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

// Package flowmgmt coordinates the lifetime of flow-to-object dependencies
// for a virtual-switch agent: which flows depend on which interfaces,
// ACLs, VNs, next-hops, routes and VRFs, and when a control-plane DELETE
// for one of those objects may finally be turned into a physical free.
//
// Manager is the plugin entry point, embedding the same PluginName +
// PluginLogger dependency shape and Init/AfterInit/Close lifecycle every
// other plugin in this agent uses.
package flowmgmt

import (
	"context"
	"sync"

	"github.com/ligato/cn-infra/infra"
	"github.com/ligato/cn-infra/logging"

	"github.com/tungstenfabric/fdm/plugins/flowmgmt/api"
	"github.com/tungstenfabric/fdm/plugins/flowmgmt/trees"
)

// Deps lists the Manager's external dependencies, injected by whatever
// agent embeds this plugin.
type Deps struct {
	infra.PluginName
	Log logging.PluginLogger
}

// envelope carries one unit of work onto the Manager's single processing
// goroutine: either a Request from the public API, or an internal command
// (route-table-deleted signal) that doesn't fit the api.Request shape.
// done, when non-nil, is closed once the goroutine finishes the envelope;
// the public submit path never sets it, since posting to the queue must be
// non-blocking and return immediately. Only barrier (test-only) sets it.
type envelope struct {
	req  *api.Request
	fn   func()
	done chan struct{}
}

// Manager is the flow dependency manager plugin.
type Manager struct {
	Deps

	config *Config

	registry *trees.Registry

	reqCh  chan envelope
	respCh chan api.Response

	flows map[api.FlowHandle]*FlowEntryInfo

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SetConfig overrides the default Config; must be called before Init.
func (m *Manager) SetConfig(cfg *Config) { m.config = cfg }

// Init allocates the request/response queues and the kind registry. It
// does not start the processing goroutine; AfterInit does, once every
// plugin in the agent has had a chance to run its own Init.
func (m *Manager) Init() error {
	if m.config == nil {
		m.config = DefaultConfig()
	}
	m.reqCh = make(chan envelope, m.config.RequestQueueSize)
	m.respCh = make(chan api.Response, m.config.ResponseQueueSize)
	m.flows = make(map[api.FlowHandle]*FlowEntryInfo)
	m.registry = trees.NewRegistry(m, m, m.Log, m.config.LogVNCounterChurn)
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return nil
}

// AfterInit starts the single goroutine that owns every index and the
// flow registry; nothing else may touch them directly.
func (m *Manager) AfterInit() error {
	m.wg.Add(1)
	go m.run()
	return nil
}

// Close stops the processing goroutine and closes the response channel.
// Safe to call once Init has run, even if no flow or DB entry was ever
// submitted.
func (m *Manager) Close() error {
	m.cancel()
	m.wg.Wait()
	close(m.respCh)
	return nil
}

func (m *Manager) run() {
	defer m.wg.Done()
	for {
		select {
		case <-m.ctx.Done():
			return
		case e := <-m.reqCh:
			if e.fn != nil {
				e.fn()
			} else {
				m.dispatch(e.req)
			}
			if e.done != nil {
				close(e.done)
			}
		}
	}
}

// submit posts req to the request queue and returns immediately; the
// caller never learns when (or on what goroutine) it was actually
// processed. A producer never waits for its envelope to be processed; it
// waits only while the request channel is full (Config.RequestQueueSize).
func (m *Manager) submit(req *api.Request) {
	m.reqCh <- envelope{req: req}
}

func (m *Manager) submitFn(fn func()) {
	m.reqCh <- envelope{fn: fn}
}

// barrier blocks until every envelope submitted before it has been
// processed by the single goroutine. It exists purely so tests can make
// deterministic assertions right after a submit without waiting on wall
// clock time; production code must never call it, since it would
// reintroduce the blocking behavior the request queue is meant to avoid.
func (m *Manager) barrier() {
	done := make(chan struct{})
	m.reqCh <- envelope{fn: func() {}, done: done}
	<-done
}

// AddFlow submits ADD_FLOW for flow: extract its current dependency keys
// and register it against every one of them.
func (m *Manager) AddFlow(flow api.Flow) {
	m.submit(&api.Request{Tag: api.AddFlow, Flow: flow})
}

// DeleteFlow submits DELETE_FLOW for flow: drain every key it was
// registered against and release the Manager's own reference to it.
func (m *Manager) DeleteFlow(flow api.Flow) {
	m.submit(&api.Request{Tag: api.DeleteFlow, Flow: flow})
}

// AddDBEntry submits ADD_DBENTRY for the object filed under key.
func (m *Manager) AddDBEntry(key api.FlowMgmtKey, entry api.DBEntry) {
	m.submit(&api.Request{Tag: api.AddDBEntry, Key: key, Entry: entry})
}

// ChangeDBEntry submits CHANGE_DBENTRY for the object filed under key.
func (m *Manager) ChangeDBEntry(key api.FlowMgmtKey, entry api.DBEntry) {
	m.submit(&api.Request{Tag: api.ChangeDBEntry, Key: key, Entry: entry})
}

// DeleteDBEntry submits DELETE_DBENTRY for the object filed under key.
// genID is echoed back on the eventual FREE_DBENTRY.
func (m *Manager) DeleteDBEntry(key api.FlowMgmtKey, genID uint64) {
	m.submit(&api.Request{Tag: api.DeleteDBEntry, Key: key, GenID: genID})
}

// NotifyRouteTableDeleted signals that one of vrfID's three route tables
// has completed its own managed delete (see trees.RouteTableInet4/Inet6/
// Bridge), and retries the VRF's deletion.
func (m *Manager) NotifyRouteTableDeleted(vrfID uint32, table int) {
	m.submitFn(func() { m.registry.SignalRouteTableDeleted(vrfID, table) })
}

// RetryDeleteVRF implements api.VRFNotifier for the route/bridge indexes,
// and doubles as the RETRY_DELETE_VRF request handler: both call sites
// always run on the Manager's single processing goroutine already, so this
// runs synchronously rather than round-tripping through the queue.
func (m *Manager) RetryDeleteVRF(vrfID uint32) {
	key, ok := m.registry.LookupVRFKey(vrfID)
	if !ok {
		return
	}
	m.registry.Tree(api.KindVRF).RetryDelete(key)
}

// Enqueue implements api.ResponseSink for the kind indexes.
func (m *Manager) Enqueue(resp api.Response) {
	m.respCh <- resp
}

// Responses returns the channel every REVALUATE_FLOW, REVALUATE_DBENTRY,
// DELETE_DBENTRY, FREE_DBENTRY and FREE_FLOW_REF response is posted to.
// Closed once Close returns.
func (m *Manager) Responses() <-chan api.Response {
	return m.respCh
}

// VNFlowCounters returns the current ingress/egress flow counts for the VN
// identified by uuid. Safe to call concurrently with in-flight
// AddFlow/DeleteFlow calls: the VN index is the one index kept under its
// own lock precisely so this can be read off-task.
func (m *Manager) VNFlowCounters(uuid string) (ingress, egress uint32) {
	entry := m.registry.Tree(api.KindVN).Find(api.VNKey(uuid))
	if entry == nil {
		return 0, 0
	}
	return trees.Counters(entry.Ext)
}

// HasVRFFlows reports whether any of the three route indexes (inet4, inet6,
// bridge) still holds an entry for vrfID, whether or not that entry has
// flows attached. Unlike VNFlowCounters this is not safe
// to call concurrently with the processing goroutine; only the VN index
// carries the extra lock a metrics reader needs.
func (m *Manager) HasVRFFlows(vrfID uint32) bool {
	return m.registry.HasVRFFlows(vrfID)
}
