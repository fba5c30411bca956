// Copyright (c) 2015-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build !js

package prompt

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"golang.org/x/term"
)

// PrivateKey prompts the user for a private key. When stdin is a terminal
// the input is not echoed, otherwise a line is read from reader.
func PrivateKey(reader *bufio.Reader, params *chaincfg.Params) ([]byte,
	error) {

	fd := int(os.Stdin.Fd())
	for {
		var line []byte
		if term.IsTerminal(fd) {
			fmt.Print("Enter the private key to sign with: ")
			pass, err := term.ReadPassword(fd)
			if err != nil {
				return nil, err
			}
			fmt.Print("\n")
			line = pass
		} else {
			s, err := reader.ReadString('\n')
			if err != nil && s == "" {
				return nil, err
			}
			line = []byte(s)
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		key, err := ParsePrivateKey(string(line), params)
		for i := range line {
			line[i] = 0
		}
		if err != nil {
			if !term.IsTerminal(fd) {
				return nil, err
			}
			fmt.Println(err)
			continue
		}

		return key, nil
	}
}

// Confirm asks the user a yes/no question, defaulting to no.
func Confirm(reader *bufio.Reader, prefix string) (bool, error) {
	return promptListBool(reader, prefix, "no")
}

// promptList prompts the user with the given prefix, list of valid responses,
// and default list entry to use.  The function will repeat the prompt to the
// user until they enter a valid response.
func promptList(reader *bufio.Reader, prefix string, validResponses []string,
	defaultEntry string) (string, error) {

	// Setup the prompt according to the parameters.
	validStrings := strings.Join(validResponses, "/")
	var prompt string
	if defaultEntry != "" {
		prompt = fmt.Sprintf("%s (%s) [%s]: ", prefix, validStrings,
			defaultEntry)
	} else {
		prompt = fmt.Sprintf("%s (%s): ", prefix, validStrings)
	}

	// Prompt the user until one of the valid responses is given.
	for {
		fmt.Print(prompt)
		reply, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		reply = strings.TrimSpace(strings.ToLower(reply))
		if reply == "" {
			reply = defaultEntry
		}

		for _, validResponse := range validResponses {
			if reply == validResponse {
				return reply, nil
			}
		}
	}
}

// promptListBool prompts the user for a boolean (yes/no) with the given prefix.
// The function will repeat the prompt to the user until they enter a valid
// reponse.
func promptListBool(reader *bufio.Reader, prefix string,
	defaultEntry string) (bool, error) {

	// Setup the valid responses.
	valid := []string{"n", "no", "y", "yes"}
	response, err := promptList(reader, prefix, valid, defaultEntry)
	if err != nil {
		return false, err
	}
	return response == "yes" || response == "y", nil
}
