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
	"net"
	"sync"

	"github.com/ligato/cn-infra/logging"

	"github.com/tungstenfabric/fdm/plugins/flowmgmt/api"
)

// fakeFlow is a minimal api.Flow: a mutable FlowFields snapshot behind a
// mutex, exactly the shape ReadFields' contract requires.
type fakeFlow struct {
	handle api.FlowHandle

	mu     sync.Mutex
	fields api.FlowFields
}

func newFakeFlow(handle api.FlowHandle, fields api.FlowFields) *fakeFlow {
	return &fakeFlow{handle: handle, fields: fields}
}

func (f *fakeFlow) Handle() api.FlowHandle { return f.handle }

func (f *fakeFlow) ReadFields(fn func(api.FlowFields)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.fields)
}

func (f *fakeFlow) update(fields api.FlowFields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = fields
}

// newTestManager builds a fully initialized, running Manager, and returns a
// teardown func the caller must defer.
func newTestManager() (*Manager, func()) {
	m := &Manager{}
	m.Log = logging.ForPlugin("flowmgmt-test")
	if err := m.Init(); err != nil {
		panic(err)
	}
	if err := m.AfterInit(); err != nil {
		panic(err)
	}
	return m, func() { m.Close() }
}

// drainResponses waits for every request submitted so far to finish
// processing, then collects every response the Manager has queued as a
// result. The barrier call is what makes this deterministic: submit no
// longer blocks the caller, so without it a response could still be
// in-flight when the drain loop below hits an empty channel.
func drainResponses(m *Manager) []api.Response {
	m.barrier()
	var out []api.Response
	for {
		select {
		case r := <-m.Responses():
			out = append(out, r)
		default:
			return out
		}
	}
}

func countTag(resps []api.Response, tag api.ResponseTag) int {
	n := 0
	for _, r := range resps {
		if r.Tag == tag {
			n++
		}
	}
	return n
}

func mustIP(s string) net.IP {
	ip := net.ParseIP(s)
	if ip == nil {
		panic("bad test ip: " + s)
	}
	return ip
}
