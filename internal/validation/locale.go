package validation

import "strings"

// LocaleProfile describes the regional variety a language's courses are
// written in. Languages with a profile get an extra dialect scorer.
type LocaleProfile struct {
	Code     string
	Dialect  string
	Region   string
	Features []string
}

var localeProfiles = map[string]LocaleProfile{
	"sq": {
		Code:    "sq",
		Dialect: "Gheg",
		Region:  "Kosovo",
		Features: []string{
			"Definite articles: Gheg often uses shorter forms",
			"Verb endings: Gheg preserves archaic forms absent from the standard language",
			"Vocabulary: Kosovo Albanian includes specific regional terms",
			"Pronunciation: Gheg phonological features such as nasal vowels",
			"Loanwords: Turkish and regional loanwords are more common in Kosovo",
		},
	},
}

// ProfileFor returns the locale profile of a language code.
func ProfileFor(code string) (LocaleProfile, bool) {
	p, ok := localeProfiles[strings.ToLower(strings.TrimSpace(code))]
	return p, ok
}
