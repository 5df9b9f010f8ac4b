package resumes

import (
	"regexp"
	"strconv"
	"strings"
)

const copyPrefix = "Copy of "

var numberedSuffix = regexp.MustCompile(`^(.*\S)\s+\((\d+)\)$`)

func normalizeTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// suggestTitle returns title unchanged when free, otherwise "root (n)" with the
// smallest free n >= 2. taken holds normalized titles.
func suggestTitle(title string, taken map[string]struct{}) (string, bool) {
	title = strings.TrimSpace(title)
	if _, ok := taken[normalizeTitle(title)]; !ok {
		return title, true
	}
	root := title
	if m := numberedSuffix.FindStringSubmatch(title); m != nil {
		root = m[1]
	}
	for n := 2; ; n++ {
		candidate := root + " (" + strconv.Itoa(n) + ")"
		if _, ok := taken[normalizeTitle(candidate)]; !ok {
			return candidate, false
		}
	}
}

func takenTitles(refs []TitleRef, excludeID string) map[string]struct{} {
	taken := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if excludeID != "" && ref.ID == excludeID {
			continue
		}
		taken[normalizeTitle(ref.Title)] = struct{}{}
	}
	return taken
}
