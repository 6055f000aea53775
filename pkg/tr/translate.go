// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package tr wraps user-facing CLI strings so a translation table can be
// loaded without touching call sites. metasync ships only the identity
// table (English); operators may point METASYNC_LANG_FILE at a TOML file
// of "English string" = "translated string" pairs.
package tr

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
)

var (
	mu        sync.RWMutex
	langTable = map[string]string{}
)

// Initialize loads the translation table pointed to by METASYNC_LANG_FILE,
// if set. A missing or unset file is not an error; it leaves the identity
// table in place.
func Initialize() error {
	path := os.Getenv("METASYNC_LANG_FILE")
	if path == "" {
		return nil
	}
	fd, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer fd.Close() // nolint
	return LoadFrom(fd)
}

// LoadFrom decodes a TOML table of translations from r and merges it into
// the active table.
func LoadFrom(r io.Reader) error {
	table := map[string]string{}
	if _, err := toml.NewDecoder(r).Decode(&table); err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	for k, v := range table {
		langTable[k] = v
	}
	return nil
}

func translate(k string) string {
	mu.RLock()
	defer mu.RUnlock()
	if v, ok := langTable[k]; ok {
		return v
	}
	return k
}

// W translates a single literal string.
func W(k string) string {
	return translate(k)
}

// Fprintf writes a translated, formatted message to w.
func Fprintf(w io.Writer, format string, a ...any) (n int, err error) {
	return fmt.Fprintf(w, translate(format), a...)
}

// Sprintf formats a translated message.
func Sprintf(format string, a ...any) string {
	return fmt.Sprintf(translate(format), a...)
}
