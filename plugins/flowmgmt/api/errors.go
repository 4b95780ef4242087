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

import "errors"

// Programming-error sentinels: these indicate state corruption in a
// producer or in the manager itself. They are always fatal; the caller is
// expected to log at Fatal/Panic and abort, never to retry or degrade.
var (
	// ErrUnknownRequestTag is raised for a Request whose Tag is not one of
	// the RequestTag values the dispatcher handles.
	ErrUnknownRequestTag = errors.New("flowmgmt: unknown request tag")

	// ErrUnknownDBEntryKind is raised when Registry.Tree is asked for a
	// kind (a request's Key.Tag) that has no registered kind index.
	ErrUnknownDBEntryKind = errors.New("flowmgmt: unknown db-entry kind")

	// ErrMissingKeyOnDelete is raised when delete_flow_internal drains a
	// flow's key set but the target index has no entry for a key still
	// listed in FlowEntryInfo.Keys (bidirectional-consistency violation).
	ErrMissingKeyOnDelete = errors.New("flowmgmt: missing index entry for key on delete")

	// ErrNonAddressableRoute is raised when a route DB entry is neither
	// IPv4 nor IPv6 addressable.
	ErrNonAddressableRoute = errors.New("flowmgmt: route is neither IPv4 nor IPv6")
)
