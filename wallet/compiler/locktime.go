// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package compiler

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/txcompiler/wallet/txerror"
)

// BlockLockTime returns the lock time field for a block height.
func BlockLockTime(height uint32) (uint32, error) {
	if height >= txscript.LockTimeThreshold {
		return 0, txerror.Newf(txerror.ErrMalformed,
			"lock time height %d is not below %d", height,
			uint32(txscript.LockTimeThreshold))
	}
	return height, nil
}

// TimeLockTime returns the lock time field for a unix timestamp.
func TimeLockTime(seconds uint32) (uint32, error) {
	if seconds < txscript.LockTimeThreshold {
		return 0, txerror.Newf(txerror.ErrMalformed,
			"lock time %d is below the timestamp threshold %d",
			seconds, uint32(txscript.LockTimeThreshold))
	}
	return seconds, nil
}
