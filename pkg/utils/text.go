// Package utils provides shared utilities for text, math, and logging.
package utils

import (
	"strings"
	"unicode"
)

// stopwords filtered out of search-relevant token streams. Covers English and
// Russian function words since vaults are commonly mixed-language.
var stopwords = map[string]struct{}{
	// EN
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "to": {}, "of": {},
	"in": {}, "on": {}, "for": {}, "with": {}, "without": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "it": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "you": {}, "we": {}, "they": {}, "he": {}, "she": {}, "be": {}, "as": {},
	"at": {}, "by": {}, "from": {}, "has": {}, "have": {}, "but": {}, "not": {},
	// RU
	"и": {}, "в": {}, "во": {}, "на": {}, "к": {}, "ко": {}, "о": {}, "об": {},
	"от": {}, "до": {}, "из": {}, "у": {}, "по": {}, "за": {}, "при": {}, "без": {},
	"что": {}, "это": {}, "я": {}, "мы": {}, "ты": {}, "вы": {}, "он": {}, "она": {},
	"они": {}, "оно": {}, "как": {}, "про": {}, "для": {}, "с": {}, "со": {},
	"но": {}, "или": {}, "ли": {}, "же": {}, "бы": {}, "быть": {}, "есть": {},
	"не": {}, "ни": {}, "да": {}, "нет": {}, "тоже": {}, "еще": {}, "ещё": {},
	"уже": {}, "тут": {}, "там": {}, "так": {}, "этот": {}, "эта": {}, "эти": {},
	"тот": {}, "та": {}, "те": {},
}

// Tokenize lowercases text and splits it into terms of letters, digits, '_'
// and '-'. Everything else is a separator.
func Tokenize(text string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}

// SearchTerms tokenizes text and drops stopwords and single-rune terms,
// leaving the terms that carry retrieval signal.
func SearchTerms(text string) []string {
	toks := Tokenize(text)
	out := toks[:0]
	for _, tok := range toks {
		if len([]rune(tok)) < 2 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
