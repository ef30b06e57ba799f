// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	IDModeUUID     = "uuid"
	IDModeSequence = "sequence"
)

// NewUUIDGenerator returns an IDFunc producing random (version 4) UUIDs.
func NewUUIDGenerator() IDFunc {
	return uuid.NewString
}

// NewSequenceGenerator returns an IDFunc producing prefix1, prefix2, ...
// It is safe for concurrent use.
func NewSequenceGenerator(prefix string) IDFunc {
	var n atomic.Uint64
	return func() string {
		return prefix + strconv.FormatUint(n.Add(1), 10)
	}
}

// GeneratorFor selects a generator by mode name. The prefix only applies to
// the sequence mode.
func GeneratorFor(mode, prefix string) (IDFunc, error) {
	switch mode {
	case "", IDModeUUID:
		return NewUUIDGenerator(), nil
	case IDModeSequence:
		return NewSequenceGenerator(prefix), nil
	default:
		return nil, fmt.Errorf("unsupported id mode %q", mode)
	}
}
