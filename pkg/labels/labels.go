// Package labels loads and serves the hash-to-name dictionaries used to
// render param field names. The codec itself never owns a dictionary; it
// takes a hash40.Table built here (or anywhere else) as an immutable
// snapshot.
package labels

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/skadi-tools/paramkit/pkg/hash40"
)

// Load reads a label dictionary in the community CSV form, one entry per
// line: "0x0102030405,field_name". Blank lines and lines starting with #
// are skipped. Lines holding only a name are hashed on the fly.
func Load(r io.Reader) (hash40.MapTable, error) {
	table := hash40.MapTable{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		hexPart, name, ok := strings.Cut(line, ",")
		if !ok {
			table.Add(line)
			continue
		}
		name = strings.TrimSpace(name)
		hexPart = strings.TrimSpace(hexPart)
		if !strings.HasPrefix(hexPart, "0x") {
			return nil, fmt.Errorf("labels: line %d: %q is not a hex hash", lineNo, hexPart)
		}
		v, err := strconv.ParseUint(hexPart[2:], 16, 64)
		if err != nil || v >= 1<<40 {
			return nil, fmt.Errorf("labels: line %d: %q is not a valid hash40", lineNo, hexPart)
		}
		table[hash40.Hash40(v)] = name
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("labels: read failed: %w", err)
	}
	return table, nil
}

// LoadFile reads a label dictionary from disk.
func LoadFile(path string) (hash40.MapTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
