package reverse

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mleduque/modda/internal/manifest"
)

// ParseWeiduConf extracts lang_dir from a weidu.conf file.
func ParseWeiduConf(path string) (langDir string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(key) == "lang_dir" {
			return strings.Trim(strings.TrimSpace(value), `"`), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return "", nil
}

// langDirGuesses maps a lang_dir prefix to a plausible lang_preferences
// list, used to seed a generated manifest with something reasonable rather
// than leaving it empty.
var langDirGuesses = map[string][]manifest.LangPreference{
	"en": {"American English", "English"},
	"fr": {"Francais", "French"},
	"es": {"Castilian Spanish", "Spanish"},
	"de": {"German"},
	"it": {"Italian"},
	"pl": {"Polish"},
	"ru": {"Russian"},
}

// GuessLangPreferences picks a lang_preferences list from langDir's
// two-letter prefix (e.g. "en_US" -> "en"). Returns nil if no guess
// applies; the caller should leave lang_preferences for the user to fill
// in by hand in that case.
func GuessLangPreferences(langDir string) []manifest.LangPreference {
	prefix, _, _ := strings.Cut(langDir, "_")
	return langDirGuesses[strings.ToLower(prefix)]
}
