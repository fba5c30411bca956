// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txcompiler/internal/prompt"
	"github.com/btcsuite/txcompiler/internal/zero"
	"github.com/btcsuite/txcompiler/wallet/compiler"
)

// keyRing is a compiler.KeyRing whose keys can be cleared.
type keyRing interface {
	compiler.KeyRing
	Zero()
}

// singleKey spends every input with one key.
type singleKey struct {
	compiler.SingleKey
}

func (k singleKey) Zero() {
	zero.Bytes(k.SingleKey)
}

// parseOutPoint parses <txid>:<vout>.
func parseOutPoint(s string) (wire.OutPoint, error) {
	txid, vout, ok := strings.Cut(s, ":")
	if !ok {
		return wire.OutPoint{}, fmt.Errorf("outpoint %q is not "+
			"<txid>:<vout>", s)
	}
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return wire.OutPoint{}, err
	}
	index, err := strconv.ParseUint(vout, 10, 32)
	if err != nil {
		return wire.OutPoint{}, err
	}
	return wire.OutPoint{Hash: *hash, Index: uint32(index)}, nil
}

// readKeys parses a key file. Each line is either '<txid>:<vout> <key>' or,
// on its own, a single '<key>' used for every input. Empty lines and lines
// starting with '#' are skipped.
func readKeys(r io.Reader, params *chaincfg.Params) (keyRing, error) {
	keys := make(compiler.KeyMap)
	var single []byte

	fail := func(err error) (keyRing, error) {
		keys.Zero()
		zero.Bytes(single)
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch len(fields) {
		case 1:
			if single != nil || len(keys) > 0 {
				return fail(fmt.Errorf("line %d: a single key "+
					"must be the only key", lineNum))
			}
			key, err := prompt.ParsePrivateKey(fields[0], params)
			if err != nil {
				return fail(fmt.Errorf("line %d: %w", lineNum,
					err))
			}
			single = key

		case 2:
			if single != nil {
				return fail(fmt.Errorf("line %d: a single key "+
					"must be the only key", lineNum))
			}
			op, err := parseOutPoint(fields[0])
			if err != nil {
				return fail(fmt.Errorf("line %d: %w", lineNum,
					err))
			}
			if _, ok := keys[op]; ok {
				return fail(fmt.Errorf("line %d: duplicate key "+
					"for %v", lineNum, op))
			}
			key, err := prompt.ParsePrivateKey(fields[1], params)
			if err != nil {
				return fail(fmt.Errorf("line %d: %w", lineNum,
					err))
			}
			keys[op] = key

		default:
			return fail(fmt.Errorf("line %d: expected '<txid>:<vout> "+
				"<key>' or '<key>'", lineNum))
		}
	}
	if err := scanner.Err(); err != nil {
		return fail(err)
	}

	switch {
	case single != nil:
		return singleKey{compiler.SingleKey(single)}, nil
	case len(keys) > 0:
		return keys, nil
	default:
		return fail(fmt.Errorf("key file holds no keys"))
	}
}
