// Package dates turns free-text date expressions into ISO calendar dates.
package dates

import (
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/rs/zerolog/log"
)

const ISOLayout = "2006-01-02"

var explicitLayouts = []string{
	ISOLayout,
	"02.01.2006",
	"2.1.2006",
	"02/01/2006",
	"2/1/2006",
}

// casual covers the relative words guests use most that the English rule
// set does not know. It is consulted before the rule set, which would read
// "day after tomorrow" as tomorrow.
var casual = []struct {
	phrase string
	days   int
}{
	{"day after tomorrow", 2},
	{"pojutrze", 2},
	{"dzisiaj", 0},
	{"jutro", 1},
	{"dziś", 0},
	{"dzis", 0},
}

var (
	numericDate = regexp.MustCompile(`\b\d{1,4}[-./]\d{1,2}[-./]\d{1,4}\b`)

	// dateCue marks a rule-set match that names a day, not only a time of day.
	dateCue = regexp.MustCompile(`\b(today|tonight|tomorrow|yesterday|now|this|next|last|days?|weeks?|weekend|months?|years?|fortnight|` +
		`mon|tue|wed|thu|fri|sat|sun|jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)|\d(st|nd|rd|th)\b`)

	parser = newParser()
)

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ToISO resolves expr against anchor and returns the date as YYYY-MM-DD, or
// the empty string when nothing in expr reads as a date.
func ToISO(expr string, anchor time.Time) string {
	text := strings.ToLower(strings.TrimSpace(expr))
	if text == "" {
		return ""
	}

	// A numeric date that fits no layout is an impossible date, not a
	// phrase for the rule set to guess at.
	if token := numericDate.FindString(text); token != "" {
		for _, layout := range explicitLayouts {
			if t, err := time.ParseInLocation(layout, token, anchor.Location()); err == nil {
				return t.Format(ISOLayout)
			}
		}
		log.Debug().Str("expression", expr).Msg("numeric date is not a calendar date")
		return ""
	}

	if days, ok := casualOffset(text); ok {
		return anchor.AddDate(0, 0, days).Format(ISOLayout)
	}

	res, err := parser.Parse(text, anchor)
	if err != nil {
		log.Debug().Err(err).Str("expression", expr).Msg("date expression not understood")
		return ""
	}
	if res == nil {
		return ""
	}
	if !dateCue.MatchString(res.Text) {
		log.Debug().Str("expression", expr).Str("match", res.Text).Msg("date expression has no day")
		return ""
	}
	return res.Time.In(anchor.Location()).Format(ISOLayout)
}

func casualOffset(text string) (int, bool) {
	for _, c := range casual {
		if containsWord(text, c.phrase) {
			return c.days, true
		}
	}
	return 0, false
}

func containsWord(text, phrase string) bool {
	idx := strings.Index(text, phrase)
	for idx >= 0 {
		end := idx + len(phrase)
		if boundary(text, idx-1) && boundary(text, end) {
			return true
		}
		next := strings.Index(text[idx+1:], phrase)
		if next < 0 {
			return false
		}
		idx += next + 1
	}
	return false
}

func boundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	switch text[i] {
	case ' ', ',', '.', '!', '?', '\t', '\n':
		return true
	}
	return false
}
