// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawngen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.webgpu.dev/dawn/tools/lib/logger"
)

// Keys of the top-level schema object that do not name entities.
var metadataKeys = map[string]struct{}{
	"_doc":      {},
	"_metadata": {},
	"_comment":  {},
}

// LoadSchema reads and decodes the schema file at the given path.
func LoadSchema(ctx context.Context, path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema: %w", err)
	}
	defer f.Close()
	s, err := DecodeSchema(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// DecodeSchema decodes a schema from its JSON form. A record that fails to
// decode is logged and dropped; only a malformed top-level object is an
// error.
func DecodeSchema(ctx context.Context, r io.Reader) (*Schema, error) {
	var top map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&top); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}

	entities := make(map[Name]Entity, len(top))
	for key, raw := range top {
		if _, ok := metadataKeys[key]; ok {
			continue
		}
		e, err := decodeEntity(raw)
		if err != nil {
			logger.Errorf(ctx, "dropping %q: %s", key, err)
			continue
		}
		name := NewName(key)
		if _, ok := entities[name]; ok {
			logger.Errorf(ctx, "dropping %q: duplicate of an earlier key", key)
			continue
		}
		entities[name] = e
	}
	logger.Debugf(ctx, "loaded %d entities", len(entities))
	return NewSchema(entities), nil
}

// fields is a record's key-value form. Keys are normalized so that the
// spaced spellings of dawn.json ("chain roots") and their snake_case
// counterparts ("chain_roots") are interchangeable.
type fields map[string]json.RawMessage

func newFields(raw json.RawMessage) (fields, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	f := make(fields, len(m))
	for k, v := range m {
		f[strings.ReplaceAll(k, "_", " ")] = v
	}
	return f, nil
}

// get decodes the given key into v, if present.
func (f fields) get(key string, v any) error {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}

// require is as get, but errors if the key is absent.
func (f fields) require(key string, v any) error {
	if _, ok := f[key]; !ok {
		return fmt.Errorf("%w: %q", ErrMissingRequiredField, key)
	}
	return f.get(key, v)
}

// getAll decodes several keys, stopping at the first error.
func (f fields) getAll(vs map[string]any) error {
	for key, v := range vs {
		if err := f.get(key, v); err != nil {
			return err
		}
	}
	return nil
}

func decodeEntity(raw json.RawMessage) (Entity, error) {
	f, err := newFields(raw)
	if err != nil {
		return nil, err
	}
	var category Category
	if err := f.require("category", &category); err != nil {
		return nil, err
	}

	switch category {
	case CategoryEnum:
		e := new(Enum)
		if err := f.getAll(map[string]any{
			"values":                   &e.Values,
			"tags":                     &e.Tags,
			"emscripten no enum table": &e.EmscriptenNoEnumTable,
		}); err != nil {
			return nil, err
		}
		return e, nil
	case CategoryBitmask:
		b := new(Bitmask)
		if err := f.getAll(map[string]any{
			"values": &b.Values,
			"tags":   &b.Tags,
		}); err != nil {
			return nil, err
		}
		return b, nil
	case CategoryStructure:
		s := new(Structure)
		if err := f.getAll(map[string]any{
			"extensible":  &s.Extensible,
			"chained":     &s.Chained,
			"chain roots": &s.ChainRoots,
			"tags":        &s.Tags,
		}); err != nil {
			return nil, err
		}
		if err := f.require("members", &s.Members); err != nil {
			return nil, err
		}
		return s, nil
	case CategoryObject:
		o := new(Object)
		if err := f.getAll(map[string]any{
			"methods":     &o.Methods,
			"no autolock": &o.NoAutolock,
			"tags":        &o.Tags,
		}); err != nil {
			return nil, err
		}
		return o, nil
	case CategoryNative:
		n := new(NativeType)
		if err := f.getAll(map[string]any{
			"is pointer":          &n.IsPointer,
			"is signed":           &n.IsSigned,
			"is nullable":         &n.IsNullable,
			"is nullable pointer": &n.IsNullablePointer,
			"wasm type":           &n.WasmType,
		}); err != nil {
			return nil, err
		}
		return n, nil
	case CategoryFunction:
		fn := new(Function)
		if err := f.getAll(map[string]any{
			"args":    &fn.Args,
			"returns": &fn.Returns,
			"tags":    &fn.Tags,
		}); err != nil {
			return nil, err
		}
		return fn, nil
	case CategoryFunctionPointer:
		fp := new(FunctionPointer)
		if err := f.getAll(map[string]any{
			"args":    &fp.Args,
			"returns": &fp.Returns,
			"tags":    &fp.Tags,
		}); err != nil {
			return nil, err
		}
		return fp, nil
	case CategoryCallbackFunction:
		cb := new(CallbackFunction)
		if err := f.getAll(map[string]any{
			"args":         &cb.Args,
			"tags":         &cb.Tags,
			"callback use": &cb.Use,
		}); err != nil {
			return nil, err
		}
		return cb, nil
	case CategoryCallbackInfo:
		info := new(CallbackInfo)
		if err := f.get("tags", &info.Tags); err != nil {
			return nil, err
		}
		if err := f.require("members", &info.Members); err != nil {
			return nil, err
		}
		return info, nil
	case CategoryAlias:
		a := new(Alias)
		if err := f.get("tags", &a.Tags); err != nil {
			return nil, err
		}
		if err := f.require("type", &a.Type); err != nil {
			return nil, err
		}
		return a, nil
	case CategoryConstant:
		c := new(Constant)
		if err := f.require("type", &c.Type); err != nil {
			return nil, err
		}
		var value json.RawMessage
		if err := f.require("value", &value); err != nil {
			return nil, err
		}
		// Values are usually C expressions given as strings, but plain
		// numerals appear too.
		if err := json.Unmarshal(value, &c.Value); err != nil {
			c.Value = string(value)
		}
		if err := f.get("cpp value", &c.CppValue); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown category %q", category)
	}
}
