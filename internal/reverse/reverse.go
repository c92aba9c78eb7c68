// Package reverse reconstructs a manifest fragment from an already-modded
// game directory, by reading weidu.log and weidu.conf.
package reverse

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/mleduque/modda/internal/manifest"
)

var logLinePattern = regexp.MustCompile(`^~([^~]+)~\s+#(\d+)\s+#(\d+)(?:\s*//\s*(.*))?$`)

type logEntry struct {
	tp2Path  string
	langIdx  int
	compIdx  int
	comment  string
	hasEntry bool
}

// ParseWeiduLog reads a weidu.log file and groups consecutive component
// installs by their originating tp2 path into manifest Modules, preserving
// installation order.
func ParseWeiduLog(path string) ([]manifest.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	entries, err := parseLogEntries(f)
	if err != nil {
		return nil, err
	}

	return groupByTP2(entries), nil
}

func parseLogEntries(f *os.File) ([]logEntry, error) {
	var entries []logEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		m := logLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		langIdx, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		compIdx, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		entries = append(entries, logEntry{
			tp2Path:  m[1],
			langIdx:  langIdx,
			compIdx:  compIdx,
			comment:  m[4],
			hasEntry: true,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading weidu.log: %w", err)
	}
	return entries, nil
}

// groupByTP2 folds consecutive entries sharing a tp2 path into one Module,
// preserving the order components first appeared in.
func groupByTP2(entries []logEntry) []manifest.Module {
	var modules []manifest.Module
	var current *manifest.Module
	var currentTP2 string

	for _, e := range entries {
		modName := modNameFromTP2(e.tp2Path)
		if current == nil || currentTP2 != e.tp2Path {
			modules = append(modules, manifest.Module{Name: modName})
			current = &modules[len(modules)-1]
			currentTP2 = e.tp2Path
		}

		selector := manifest.ComponentSelector{Index: e.compIdx, ComponentName: e.comment}
		current.Components.Selectors = append(current.Components.Selectors, selector)
	}
	return modules
}

// modNameFromTP2 derives a mod's canonical name from its tp2 path, e.g.
// "mymod/setup-mymod.tp2" -> "mymod".
func modNameFromTP2(tp2Path string) string {
	base := strings.ToLower(tp2Path)
	if idx := strings.LastIndexAny(base, "/\\"); idx >= 0 {
		base = base[idx+1:]
	}
	base = strings.TrimSuffix(base, ".tp2")
	base = strings.TrimPrefix(base, "setup-")
	return base
}
