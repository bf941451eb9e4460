// File path: internal/search/stopwords.go
package search

// Keyword extraction tables. These are hand-curated, bilingual
// (English/Vietnamese) configuration data; the scoring engine itself is
// language-agnostic and swapping these tables retargets it.

// defaultStopwords are tokens that carry no retrieval signal in either
// supported language.
var defaultStopwords = map[string]struct{}{
	// English
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "is": {},
	"are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "do": {},
	"does": {}, "did": {}, "have": {}, "has": {}, "had": {}, "will": {},
	"would": {}, "can": {}, "could": {}, "should": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "who": {}, "why": {}, "how": {}, "this": {},
	"that": {}, "these": {}, "those": {}, "with": {}, "about": {}, "for": {},
	"from": {}, "into": {}, "you": {}, "your": {}, "our": {}, "their": {},
	"want": {}, "need": {}, "like": {}, "please": {}, "tell": {}, "show": {},
	"give": {}, "learn": {}, "know": {}, "course": {}, "lesson": {},
	"explain": {}, "describe": {}, "understand": {}, "mean": {}, "means": {},

	// Vietnamese
	"tôi": {}, "bạn": {}, "muốn": {}, "học": {}, "là": {}, "của": {},
	"và": {}, "các": {}, "những": {}, "cho": {}, "với": {}, "không": {},
	"có": {}, "được": {}, "này": {}, "đó": {}, "gì": {}, "như": {},
	"thế": {}, "nào": {}, "làm": {}, "sao": {}, "về": {}, "trong": {},
	"khi": {}, "một": {}, "để": {}, "biết": {}, "xin": {}, "hãy": {},
	"giúp": {}, "khóa": {}, "bài": {}, "giảng": {}, "em": {}, "anh": {},
	"chị": {}, "mình": {}, "ạ": {}, "nhé": {}, "giải": {}, "thích": {},
	"hiểu": {},
}

// shortTokenAllowlist keeps technical acronyms that would otherwise fall
// under the minimum token length. Entries must survive the tokenizer: it
// splits on every non-letter/non-digit rune, so symbol-bearing names like
// "c#" can never reach this table.
var shortTokenAllowlist = map[string]struct{}{
	"ai": {}, "ui": {}, "ux": {}, "js": {}, "ts": {}, "db": {}, "os": {},
	"ml": {}, "qa": {}, "vr": {}, "ar": {}, "go": {}, "3d": {},
}
