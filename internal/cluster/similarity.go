// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

package cluster

import (
	"regexp"
	"strings"

	"github.com/zhiyuanplus/ai-policy-platform/internal/textnorm"
)

var (
	// Titles often quote the policy name in book marks: 关于印发《X》的通知.
	bookTitleRe = regexp.MustCompile(`《([^》]+)》`)

	// Trailing qualifiers such as （全文） or （征求意见稿） name the artifact,
	// not the policy.
	trailingParenRe = regexp.MustCompile(`[（(][^）)]*[）)]\s*$`)

	// Announcement boilerplate wrapping the policy name.
	wrapperRe = regexp.MustCompile(`^关于(.+)的(通知|公告|公示|意见|决定|批复|函|说明)$`)
)

// CoreTitle extracts the policy name from an artifact title. The quoted
// 《…》 form wins when present; otherwise trailing parenthesized qualifiers
// are stripped and announcement boilerplate unwrapped. The fallback is the
// title itself.
func CoreTitle(title string) string {
	if m := bookTitleRe.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}
	core := strings.TrimSpace(title)
	for {
		stripped := strings.TrimSpace(trailingParenRe.ReplaceAllString(core, ""))
		if stripped == core || stripped == "" {
			break
		}
		core = stripped
	}
	if m := wrapperRe.FindStringSubmatch(core); m != nil {
		if inner := strings.TrimSpace(m[1]); inner != "" {
			core = inner
		}
	}
	return core
}

// matchKey folds a title's core into the canonical comparison form.
func matchKey(title string) string {
	return textnorm.Key(CoreTitle(title))
}

// containmentScore is the similarity assigned when one core title fully
// contains the other, as with 《X》 and X解读. It sits above the same-source
// threshold and at the cross-source threshold.
const containmentScore = 0.95

// minContainmentRunes guards the containment shortcut against trivially
// short titles.
const minContainmentRunes = 4

// Similarity scores two match keys in [0,1] using the Dice coefficient over
// character bigrams, which needs no word segmentation and so behaves well
// on Chinese titles. Full containment of one key in the other (at least
// minContainmentRunes runes each) scores at least containmentScore.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ga, gb := bigrams(a), bigrams(b)
	shared := 0
	for g := range ga {
		if _, ok := gb[g]; ok {
			shared++
		}
	}
	dice := 2 * float64(shared) / float64(len(ga)+len(gb))

	la, lb := len([]rune(a)), len([]rune(b))
	if la >= minContainmentRunes && lb >= minContainmentRunes &&
		(strings.Contains(a, b) || strings.Contains(b, a)) && dice < containmentScore {
		return containmentScore
	}
	return dice
}

// bigrams returns the set of character bigrams of s, spaces removed. A
// single-rune string contributes itself.
func bigrams(s string) map[string]struct{} {
	rs := []rune(strings.ReplaceAll(s, " ", ""))
	set := make(map[string]struct{}, len(rs))
	if len(rs) == 1 {
		set[string(rs)] = struct{}{}
		return set
	}
	for i := 0; i+1 < len(rs); i++ {
		set[string(rs[i:i+2])] = struct{}{}
	}
	return set
}
