// Copyright (c) 2013-2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/btcsuite/txcompiler/internal/prompt"
	"github.com/btcsuite/txcompiler/netparams"
	"github.com/btcsuite/txcompiler/wallet/compiler"
	"github.com/btcsuite/txcompiler/wallet/planner"
	"github.com/btcsuite/txcompiler/wallet/txauthor"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// stdinName is the request file name that reads from stdin.
const stdinName = "-"

var cfg *config

func main() {
	// Work around defer not working after os.Exit.
	if err := txcompilerMain(); err != nil {
		os.Exit(1)
	}
}

// txcompilerMain is a work-around main function that is required since
// deferred functions (such as log flushing) are not called with calls to
// os.Exit. Instead, main runs this function and checks for a non-nil error,
// at which point any defers have already run, and if the error is non-nil,
// the program can be exited with an error exit status.
func txcompilerMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	tcfg, files, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = tcfg
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	// Show version at startup.
	log.Infof("Version %s (network %s)", version(), activeNet.Name)

	ctx, stop := interruptContext(context.Background())
	defer stop()

	strategy, err := txauthor.ParseStrategy(cfg.Strategy)
	if err != nil {
		return err
	}

	p := &processor{
		mode: cfg.Mode,
		defaults: &requestDefaults{
			feeRate:  cfg.FeeRate.SatPerVByte,
			strategy: strategy,
			params:   activeNet.Params,
		},
		net:  activeNet,
		psbt: cfg.PSBT,
	}

	keys, err := loadKeys(cfg, files)
	if err != nil {
		log.Errorf("Unable to load private keys: %v", err)
		return err
	}
	if keys != nil {
		defer keys.Zero()
		p.keys = keys
	}

	results, err := processRequests(ctx, files, cfg.Jobs, p.processFile)
	if err != nil {
		log.Errorf("Unable to process requests: %v", err)
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	var out interface{} = results
	if len(results) == 1 {
		out = results[0]
	}
	if err := enc.Encode(out); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed,
			len(results))
	}

	return nil
}

// loadKeys returns the keys to sign with, or nil when the mode signs
// nothing. Signing on mainnet asks for confirmation on a terminal.
func loadKeys(cfg *config, files []string) (keyRing, error) {
	switch {
	case cfg.Mode == modeSign:
	case cfg.Mode == modePlan && cfg.KeyFile != "":
	default:
		if cfg.KeyFile != "" {
			log.Warnf("Ignoring key file in %s mode", cfg.Mode)
		}
		return nil, nil
	}

	var keys keyRing
	if cfg.KeyFile != "" {
		f, err := os.Open(cleanAndExpandPath(cfg.KeyFile))
		if err != nil {
			return nil, err
		}
		defer f.Close()

		keys, err = readKeys(f, activeNet.Params)
		if err != nil {
			return nil, err
		}
	} else {
		if slices.Contains(files, stdinName) {
			return nil, fmt.Errorf("reading requests from stdin " +
				"requires a key file")
		}
		key, err := prompt.PrivateKey(
			bufio.NewReader(os.Stdin), activeNet.Params,
		)
		if err != nil {
			return nil, err
		}
		keys = singleKey{compiler.SingleKey(key)}
	}

	if activeNet.Net != netparams.MainNetParams.Net || cfg.NoConfirm ||
		!term.IsTerminal(int(os.Stdin.Fd())) {

		return keys, nil
	}

	ok, err := prompt.Confirm(bufio.NewReader(os.Stdin),
		"Sign mainnet transactions?")
	if err != nil || !ok {
		keys.Zero()
		if err == nil {
			err = fmt.Errorf("signing declined")
		}
		return nil, err
	}

	return keys, nil
}

// processRequests runs process on every request file, at most jobs at a
// time. Results keep the order of files. Only cancellation of ctx fails
// the batch, request errors are part of the results.
func processRequests(ctx context.Context, files []string, jobs int,
	process func(name string) *jsonResult) ([]*jsonResult, error) {

	results := make([]*jsonResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = process(name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// processor carries out one mode on requests.
type processor struct {
	mode     string
	defaults *requestDefaults
	net      *netparams.Params
	psbt     bool

	// keys is set in sign mode and optionally in plan mode.
	keys keyRing
}

// processFile reads and handles the request in the named file.
func (p *processor) processFile(name string) *jsonResult {
	var r io.Reader = os.Stdin
	if name != stdinName {
		f, err := os.Open(name)
		if err != nil {
			return &jsonResult{Request: name, Error: newJSONError(err)}
		}
		defer f.Close()
		r = f
	}

	result, err := p.process(name, r)
	if err != nil {
		log.Errorf("%s: %v", name, err)
		return &jsonResult{Request: name, Error: newJSONError(err)}
	}
	return result
}

// process decodes and handles one request.
func (p *processor) process(name string, r io.Reader) (*jsonResult, error) {
	req, err := decodeRequest(r)
	if err != nil {
		return nil, err
	}

	result := &jsonResult{Request: name}
	switch p.mode {
	case modePreImage:
		sreq, err := req.signingRequest(p.defaults)
		if err != nil {
			return nil, err
		}
		pre, err := compiler.PreImageHashes(sreq)
		if err != nil {
			return nil, err
		}
		result.PreImage, err = preImageResult(pre, p.net, p.psbt)
		if err != nil {
			return nil, err
		}
		log.Infof("%s: %d digests, fee %v (%v sat/vB)", name,
			len(pre.Digests), pre.PaidFee, int64(feeRateOf(
				pre.PaidFee, pre.Weight)))

	case modeCompile:
		sreq, err := req.signingRequest(p.defaults)
		if err != nil {
			return nil, err
		}
		sigs, err := req.signatureInputs()
		if err != nil {
			return nil, err
		}
		out, err := compiler.Compile(sreq, sigs)
		if err != nil {
			return nil, err
		}
		result.Compiled = compiledResult(out, p.net)
		log.Infof("%s: compiled tx %v, fee %v", name, out.TxID,
			out.PaidFee)

	case modeSign:
		sreq, err := req.signingRequest(p.defaults)
		if err != nil {
			return nil, err
		}
		out, err := compiler.Sign(sreq, p.keys)
		if err != nil {
			return nil, err
		}
		result.Compiled = compiledResult(out, p.net)
		log.Infof("%s: signed tx %v, fee %v", name, out.TxID,
			out.PaidFee)

	case modePlan:
		result.Plan, err = p.plan(name, req)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown mode %q", p.mode)
	}

	return result, nil
}

// plan lays out the commit and reveal transactions of a BRC20 transfer,
// signing them when keys are available.
func (p *processor) plan(name string, req *jsonRequest) (*jsonPlan, error) {
	breq, err := req.brc20Request(p.defaults)
	if err != nil {
		return nil, err
	}
	plan, err := planner.PlanBRC20(breq)
	if err != nil {
		return nil, err
	}

	result := planResult(plan)
	commitPre, err := compiler.PreImageHashes(plan.Commit)
	if err != nil {
		return nil, err
	}
	result.Commit, err = preImageResult(commitPre, p.net, p.psbt)
	if err != nil {
		return nil, err
	}
	revealPre, err := compiler.PreImageHashes(plan.Reveal)
	if err != nil {
		return nil, err
	}
	result.Reveal, err = preImageResult(revealPre, p.net, p.psbt)
	if err != nil {
		return nil, err
	}

	log.Infof("%s: commit %v of %v, reveal fee %v", name, plan.CommitTxID,
		plan.CommitValue, plan.RevealFee)

	if p.keys == nil {
		return result, nil
	}

	commit, err := compiler.Sign(plan.Commit, p.keys)
	if err != nil {
		return nil, err
	}
	if commit.TxID != plan.CommitTxID {
		return nil, fmt.Errorf("signed commit %v does not match the "+
			"planned commit %v, fund it with witness inputs only",
			commit.TxID, plan.CommitTxID)
	}
	reveal, err := compiler.Sign(plan.Reveal, p.keys)
	if err != nil {
		return nil, err
	}
	result.SignedCommit = compiledResult(commit, p.net)
	result.SignedReveal = compiledResult(reveal, p.net)

	return result, nil
}
