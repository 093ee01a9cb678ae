// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package wgpu

/*
#cgo CFLAGS: -I${SRCDIR}
#include "stub.h"
*/
import "C"

// seenSTypes gives the tags of the chain last handed to Echo.
func seenSTypes() []SType {
	return append([]SType(nil), C.stubSeenSTypes[:C.stubSeenSTypeCount]...)
}

func valuesWereNull() bool {
	return bool(C.stubValuesWereNull)
}
