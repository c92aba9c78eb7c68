package weidu

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/mleduque/modda/internal/manifest"
)

var languageLinePattern = regexp.MustCompile(`^(\d+)\s*:\s*(.+)$`)

// Language is one entry weidu reports for a mod via --list-languages.
type Language struct {
	Index int
	Name  string
}

// ListLanguages runs `weidu --list-languages <tp2>` and parses the
// "<index>:<name>" lines it prints.
func ListLanguages(ctx context.Context, weiduPath, gameDir, tp2Path string) ([]Language, error) {
	cmd := exec.CommandContext(ctx, weiduPath, "--list-languages", tp2Path)
	cmd.Dir = gameDir
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("listing languages for %s: %w", tp2Path, err)
	}

	var langs []Language
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		m := languageLinePattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		langs = append(langs, Language{Index: idx, Name: strings.TrimSpace(m[2])})
	}
	return langs, nil
}

// ResolveLanguageIndex returns the index of the first available language
// that matches any of the preferences, in preference order. Each
// preference is either a `#rx#`-prefixed regex or a literal matched
// case-insensitively and diacritic-loosely.
func ResolveLanguageIndex(preferences []manifest.LangPreference, available []Language) (int, error) {
	for _, pref := range preferences {
		for _, lang := range available {
			if matchesPreference(pref, lang.Name) {
				return lang.Index, nil
			}
		}
	}
	return 0, fmt.Errorf("no language preference matched the mod's available languages")
}

func matchesPreference(pref manifest.LangPreference, candidate string) bool {
	if pref.IsRegex() {
		re, err := regexp.Compile(pref.Pattern())
		if err != nil {
			return false
		}
		return re.MatchString(candidate)
	}
	return foldDiacritics(string(pref)) == foldDiacritics(candidate)
}

// foldDiacritics lowercases and strips combining marks so "Francais" and
// "Français" compare equal, the same loose matching weidu's own language
// prompt tolerates from a human typing without special characters.
func foldDiacritics(s string) string {
	decomposed := norm.NFD.String(strings.ToLower(s))
	var b strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
