package table

import (
	"cmp"
	"errors"
	"math"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// comparator orders cell texts: numerically when both sides start with a
// number, by locale collation otherwise.
type comparator struct {
	coll *collate.Collator
}

func newComparator(locale string) *comparator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &comparator{coll: collate.New(tag)}
}

func (c *comparator) compare(a, b string) int {
	an, aok := parseLeadingFloat(a)
	bn, bok := parseLeadingFloat(b)
	if aok && bok {
		return cmp.Compare(an, bn)
	}
	return c.coll.CompareString(a, b)
}

// parseLeadingFloat reads the longest decimal literal at the start of s,
// so "85.5%" is 85.5 and "12 recipients" is 12. It reports false when s does
// not start with a number.
func parseLeadingFloat(s string) (float64, bool) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	start := i
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	const inf = "Infinity"
	if len(s)-i >= len(inf) && s[i:i+len(inf)] == inf {
		if neg {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	end := i

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}

	v, err := strconv.ParseFloat(s[start:end], 64)
	if err != nil {
		// Out of range literals still carry a usable ±Inf or 0.
		if !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
	}
	return v, true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}
