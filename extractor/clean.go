package extractor

import (
	"regexp"
	"strings"
	"unicode"
)

// Tuned thresholds for the fragment-rejoin heuristics. These are empirical
// values pinned against the model's observed tokenizer artifacts; do not
// derive them from anything else.
const (
	maxFragmentLen  = 3
	maxShortSecond  = 2
	minEntityLength = 2
)

// Classes whose values contain no internal spaces by definition (IDs, hashes,
// addresses, filenames).
var spaceFreeClasses = map[string]struct{}{
	"VULID": {}, "SHA1": {}, "SHA2": {}, "MD5": {},
	"FILE": {}, "URL": {}, "EMAIL": {}, "IP": {}, "DOM": {},
}

// Classes where a two-part CamelCase split is almost always a single compound
// name ("Power Sploit" is PowerSploit, "Hyper Bro" is HyperBro).
var compoundClasses = map[string]struct{}{
	"TOOL": {}, "MAL": {}, "APT": {}, "ENCR": {},
}

var (
	subwordMarkerRE = regexp.MustCompile(`^[Ġ▁#]+`)
	whitespaceRE    = regexp.MustCompile(`\s+`)

	// IOB tag labels from the training scheme that occasionally leak into the
	// decoded entity text instead of arriving as metadata.
	leakedTagRE = regexp.MustCompile(
		`(?i)\s*[BI]-(?:SecTeam|Sec|HackOrg|Org|Mal|Tool|Act|Apt|Time|Loc|` +
			`Idty|Encr|File|Prot|VulName|VulId|Os|Sha2|Sha1|Md5|Url|Ip|Dom|Email)\s*`)

	trailingDashRE = regexp.MustCompile(`[–—]+$`)
	possessiveRE   = regexp.MustCompile(`\s*'s?$`)
	expSuffixRE    = regexp.MustCompile(`\s*-?\s*Exp$`)
)

const outerPunctCutset = "\"'`.,;:!?()[]{}|\\/@#$%^&*+=~<>- "

// cleanStep is one pure rewrite in the repair pipeline. Steps run in order
// and later steps assume the earlier ones already ran.
type cleanStep struct {
	name  string
	apply func(word, class string) string
}

var cleanSteps = []cleanStep{
	{"strip-subword-markers", stripSubwordMarkers},
	{"strip-leaked-tags", stripLeakedTags},
	{"rejoin-fragments", rejoinFragments},
	{"collapse-duplication", collapseDuplication},
	{"drop-isolated-letters", dropIsolatedLetters},
	{"trim-outer-punctuation", trimOuterPunctuation},
	{"strip-possessive", stripPossessive},
	{"strip-exp-suffix", stripExpSuffix},
	{"normalize-space", normalizeSpace},
}

// CleanEntityText repairs the surface text of a merged mention: sub-word
// marker removal, leaked-tag stripping, fragment rejoining, duplication
// collapse and punctuation trimming. The result may be empty; validity is
// judged by IsValidEntity downstream, not here.
func CleanEntityText(text, entityClass string) string {
	for _, step := range cleanSteps {
		text = step.apply(text, entityClass)
	}
	return text
}

// stripSubwordMarkers removes byte-pair "word start" and "##" continuation
// markers the tokenizer leaves in decoded text, then collapses whitespace.
func stripSubwordMarkers(word, _ string) string {
	word = subwordMarkerRE.ReplaceAllString(word, "")
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(word, " "))
}

// stripLeakedTags removes literal B-/I- label tokens embedded in the text.
func stripLeakedTags(word, _ string) string {
	return strings.TrimSpace(leakedTagRE.ReplaceAllString(word, " "))
}

// rejoinFragments undoes tokenizer over-fragmentation. Structurally
// space-free classes lose all internal whitespace; for the rest, short
// trailing fragments are concatenated back onto the head word.
func rejoinFragments(word, class string) string {
	if _, ok := spaceFreeClasses[class]; ok {
		return strings.Join(strings.Fields(word), "")
	}
	parts := strings.Fields(word)
	switch {
	case len(parts) >= 3 && allShortFragments(parts[1:]):
		// "PR OM ET HI UM" -> "PROMETHIUM"
		return strings.Join(parts, "")
	case len(parts) == 2:
		p0, p1 := parts[0], parts[1]
		first, _ := firstRune(p1)
		switch {
		case unicode.IsLower(first):
			// Mid-word split: "Turkmen istan" -> "Turkmenistan"
			return p0 + p1
		case runeLen(p1) <= maxShortSecond:
			// Short second fragment: "C 2" -> "C2"
			return p0 + p1
		case isUpperWord(p0) && isUpperWord(p1):
			return p0 + p1
		default:
			if _, ok := compoundClasses[class]; ok {
				// "Power Sploit" -> "PowerSploit"
				return p0 + p1
			}
		}
	}
	return word
}

// collapseDuplication drops exact back-to-back self repetition, first
// character-wise ("abcdabcd" -> "abcd") then token-wise ("GandCrab GandCrab"
// -> "GandCrab"). A genuine entity whose halves happen to be identical is
// collapsed too; that is a known limitation of the heuristic.
func collapseDuplication(word, _ string) string {
	word = normalizeSpace(word, "")
	runes := []rune(word)
	if len(runes) >= 4 && len(runes)%2 == 0 {
		mid := len(runes) / 2
		left := strings.TrimSpace(string(runes[:mid]))
		right := strings.TrimSpace(string(runes[mid:]))
		if left == right {
			word = left
		}
	}
	parts := strings.Fields(word)
	if len(parts) >= 2 && len(parts)%2 == 0 {
		half := len(parts) / 2
		if equalTokens(parts[:half], parts[half:]) {
			word = strings.Join(parts[:half], " ")
		}
	}
	return word
}

// dropIsolatedLetters removes single uppercase-letter tokens that have
// neighbors on both sides. A letter that is the whole string, or leads or
// trails it, stays ("C2" and a lone "A" are never touched).
func dropIsolatedLetters(word, _ string) string {
	parts := strings.Fields(word)
	if len(parts) <= 2 {
		return word
	}
	kept := parts[:1]
	for i := 1; i < len(parts)-1; i++ {
		if isIsolatedUpper(parts[i]) {
			continue
		}
		kept = append(kept, parts[i])
	}
	kept = append(kept, parts[len(parts)-1])
	return strings.Join(kept, " ")
}

func trimOuterPunctuation(word, _ string) string {
	word = strings.Trim(word, outerPunctCutset)
	return strings.TrimSpace(trailingDashRE.ReplaceAllString(word, ""))
}

func stripPossessive(word, _ string) string {
	return strings.TrimSpace(possessiveRE.ReplaceAllString(word, ""))
}

// stripExpSuffix removes the stray trailing "Exp" fragment inherited from
// the training label scheme.
func stripExpSuffix(word, _ string) string {
	return strings.TrimSpace(expSuffixRE.ReplaceAllString(word, ""))
}

func normalizeSpace(word, _ string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(word, " "))
}

func allShortFragments(parts []string) bool {
	for _, p := range parts {
		if runeLen(p) > maxFragmentLen {
			return false
		}
	}
	return true
}

// isUpperWord mirrors Python's str.isupper: at least one cased rune and no
// lowercase runes ("C2" counts as uppercase).
func isUpperWord(s string) bool {
	hasCased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			hasCased = true
		}
	}
	return hasCased
}

func isIsolatedUpper(token string) bool {
	r, size := firstRune(token)
	return size == len(token) && r >= 'A' && r <= 'Z'
}

func firstRune(s string) (rune, int) {
	for _, r := range s {
		return r, len(string(r))
	}
	return 0, 0
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
