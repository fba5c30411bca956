// Copyright (c) 2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FileExists reports whether filePath names an existing file. A directory
// at filePath is an error since none of the files the tool reads can be one.
func FileExists(filePath string) (bool, error) {
	info, err := os.Stat(filePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil

	case err != nil:
		return false, err

	case info.IsDir():
		return false, fmt.Errorf("%s is a directory", filePath)
	}
	return true, nil
}
