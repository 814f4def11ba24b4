package textnorm

import (
	"regexp"
	"strings"
)

var (
	lineEnds   = strings.NewReplacer("\r\n", "\n", "\r", "\n")
	dashes     = strings.NewReplacer("–", "-", "—", "-")
	quotes     = strings.NewReplacer("‘", "'", "’", "'", "“", `"`, "”", `"`)
	eqPadding  = regexp.MustCompile(`(?m)(^|[ \t])=+([ \t]|$)`)
	trailingWS = regexp.MustCompile(`[ \t]+\n`)
	multiNL    = regexp.MustCompile(`\n{2,}`)
	wrapHyphen = regexp.MustCompile(`(\p{L})-\n(\p{L})`)
	innerWS    = regexp.MustCompile(`[^\S\n]+`)
	multiWS    = regexp.MustCompile(`\s{2,}`)
)

// Normalize maps raw extracted page text to its canonical form. The rules run
// in a fixed order and the result is a fixpoint: normalizing already
// normalized text changes nothing. Word wraps broken by a hyphen are rejoined
// after blank-line collapse so a wrap across a former blank line is healed in
// the same pass.
func Normalize(s string) string {
	s = lineEnds.Replace(s)
	for {
		next := eqPadding.ReplaceAllString(s, "$1$2")
		if next == s {
			break
		}
		s = next
	}
	s = dashes.Replace(s)
	s = trailingWS.ReplaceAllString(s, "\n")
	s = multiNL.ReplaceAllString(s, "\n")
	s = wrapHyphen.ReplaceAllString(s, "$1$2")
	s = quotes.Replace(s)
	s = innerWS.ReplaceAllString(s, " ")
	s = multiWS.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
