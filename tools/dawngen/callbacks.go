// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawngen

import (
	"encoding/json"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// CallbackIdentity says how often the API may invoke a callback and so who
// releases the closure handed to it.
type CallbackIdentity string

const (
	// CallbackIdentityUnspecified is the zero value, used when the schema is
	// silent.
	CallbackIdentityUnspecified CallbackIdentity = ""

	// SingleUse callbacks are invoked at most once; the trampoline releases
	// the closure after invoking it.
	SingleUse CallbackIdentity = "single"

	// MultiUse callbacks may be invoked any number of times over the owning
	// object's lifetime; the trampoline never releases the closure.
	MultiUse CallbackIdentity = "multi"
)

func (id *CallbackIdentity) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch CallbackIdentity(s) {
	case SingleUse, MultiUse:
		*id = CallbackIdentity(s)
		return nil
	}
	return fmt.Errorf("unknown callback use %q", s)
}

// DefaultMultiUseCallbacks are the callback functions known to be invoked
// repeatedly. Schemas may instead declare "callback use" directly.
var DefaultMultiUseCallbacks = Names(
	"uncaptured error callback",
	"logging callback",
)

// CallbackRegistry assigns exactly one identity to every callback function
// and callback info of a schema.
type CallbackRegistry struct {
	identities map[Name]CallbackIdentity
	unmatched  []Name
}

// NewCallbackRegistry builds the registry. An explicit "callback use" on a
// callback function wins; otherwise membership in multiUse decides, and the
// fallback is SingleUse. Callback info records take the identity of their
// "callback" member.
func NewCallbackRegistry(schema *Schema, multiUse []Name) (*CallbackRegistry, error) {
	curated := make(map[Name]bool, len(multiUse))
	for _, name := range multiUse {
		curated[name] = false
	}

	r := &CallbackRegistry{identities: make(map[Name]CallbackIdentity)}
	var infos []Name
	for _, name := range schema.Names() {
		e, _ := schema.Lookup(name)
		switch e := e.(type) {
		case *CallbackFunction:
			id := e.Use
			if _, ok := curated[name]; ok {
				curated[name] = true
				if id == CallbackIdentityUnspecified {
					id = MultiUse
				}
			}
			if id == CallbackIdentityUnspecified {
				id = SingleUse
			}
			r.identities[name] = id
		case *CallbackInfo:
			infos = append(infos, name)
		}
	}

	for _, name := range infos {
		e, _ := schema.Lookup(name)
		info := e.(*CallbackInfo)
		cb, ok := CallbackMember(info)
		if !ok {
			return nil, entityError(name, fmt.Errorf("%w: no %q member", ErrMissingRequiredField, callbackMemberName))
		}
		target, _, err := schema.Resolve(cb.Type)
		if err != nil {
			return nil, entityError(name, fmt.Errorf("%s: %w", cb.Name, err))
		}
		id, ok := r.identities[target]
		if !ok {
			return nil, entityError(name, fmt.Errorf("%w: %q is not a callback function", ErrUnknownTypeReference, cb.Type))
		}
		r.identities[name] = id
	}

	for name, matched := range curated {
		if !matched {
			r.unmatched = append(r.unmatched, name)
		}
	}
	// Sort to account for map access nondeterminism.
	slices.SortFunc(r.unmatched, Name.Compare)
	return r, nil
}

// Identity gives the identity of a callback function or callback info. It
// panics for any other name, as every callback was assigned one up front.
func (r *CallbackRegistry) Identity(name Name) CallbackIdentity {
	id, ok := r.identities[name]
	if !ok {
		panic(fmt.Sprintf("no callback identity for %q", name))
	}
	return id
}

// Lookup is as Identity, but reports absence instead of panicking.
func (r *CallbackRegistry) Lookup(name Name) (CallbackIdentity, bool) {
	id, ok := r.identities[name]
	return id, ok
}

// Names gives every registered callback in sorted order.
func (r *CallbackRegistry) Names() []Name {
	names := maps.Keys(r.identities)
	slices.SortFunc(names, Name.Compare)
	return names
}

// Unmatched gives the multi-use names that matched no callback function.
// These usually point at a stale list.
func (r *CallbackRegistry) Unmatched() []Name {
	return slices.Clone(r.unmatched)
}

var (
	callbackMemberName = NewName("callback")
	modeMemberName     = NewName("mode")
)

// CallbackMember gives the "callback" member of a callback info.
func CallbackMember(info *CallbackInfo) (Record, bool) {
	return findRecord(info.Members, callbackMemberName)
}

// ModeMember gives the "mode" member of a callback info, if declared.
func ModeMember(info *CallbackInfo) (Record, bool) {
	return findRecord(info.Members, modeMemberName)
}

func findRecord(records []Record, name Name) (Record, bool) {
	for _, r := range records {
		if r.Name == name {
			return r, true
		}
	}
	return Record{}, false
}
