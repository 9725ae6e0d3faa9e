// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

// Package textnorm produces deterministic text forms for the pipeline.
//
// Two forms exist. Clean is the storage form: invalid UTF-8 repaired,
// format characters dropped, whitespace collapsed, wording and punctuation
// preserved. Key is the matching form used by clustering and every keyword
// rule: NFKC normalization, case folding, fullwidth-to-ASCII width folding,
// punctuation and symbol removal, whitespace collapse. Matching on Key
// makes all rule evaluation case-, width-, and punctuation-insensitive.
package textnorm

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pool of fresh transformer chains; order matters.
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Cf)), // strip format chars: ZWJ, ZWNJ, FEFF
			width.Fold,                         // map fullwidth forms to ASCII
		)
	},
}

// Clean tidies a scraped string for storage. Invalid UTF-8 bytes are
// dropped, format characters removed, and whitespace runs collapsed to a
// single space with edges trimmed.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.Cf, r) {
			continue
		}
		b.WriteRune(r)
	}
	return collapseSpaces(b.String())
}

// Key folds s into the canonical matching form.
func Key(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	ns = stripPunct(ns)
	return collapseSpaces(ns)
}

// stripPunct replaces punctuation and symbol runes with spaces so that
// adjacent tokens do not fuse.
func stripPunct(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// collapseSpaces converts whitespace runs to a single ASCII space and
// trims the edges.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
