// Package words loads and normalizes the word bank the match engine draws
// from. The engine itself never touches the filesystem; it receives the
// loaded slice.
package words

import (
	"encoding/json"
	"log"
	"os"
	"strings"

	"github.com/samber/lo"
)

// bankFile covers the three accepted JSON shapes: a bare list, {"words": []},
// or {"buckets": {"...": []}}.
type bankFile struct {
	Words   []string            `json:"words"`
	Buckets map[string][]string `json:"buckets"`
}

// DefaultBank is the built-in fallback used when no bank file is available or
// a room is constructed with an empty list.
func DefaultBank() []string {
	return []string{
		"space", "typing", "galaxy", "planet", "rocket", "comet",
		"meteor", "nebula", "socket", "vector", "engine",
	}
}

// Load reads the first bank file that exists among paths. A missing or
// malformed file is not fatal: the default bank is returned instead.
func Load(paths ...string) []string {
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		bank := parse(raw)
		if len(bank) == 0 {
			log.Printf("[Load] %s contained no usable words, trying next path", path)
			continue
		}
		log.Printf("[Load] loaded %d words from %s", len(bank), path)
		return bank
	}

	log.Printf("[Load] no word bank found, using built-in default (%d words)", len(DefaultBank()))
	return DefaultBank()
}

func parse(raw []byte) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return Normalize(list)
	}

	var file bankFile
	if err := json.Unmarshal(raw, &file); err != nil {
		log.Printf("[parse] unable to parse word bank: %v", err)
		return nil
	}
	if len(file.Words) > 0 {
		return Normalize(file.Words)
	}

	merged := lo.Flatten(lo.Values(file.Buckets))
	return Normalize(merged)
}

// Normalize lowercases, trims, and deduplicates the bank, dropping anything
// that is not purely alphabetic.
func Normalize(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, w := range in {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || !isAlpha(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func isAlpha(s string) bool {
	for _, ch := range s {
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}
