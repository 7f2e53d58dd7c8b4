// Package pipeline implements the scan and target agents: query generation,
// market normalization, sector classification, strategy tagging, cross-agent
// deduplication, ranking and snapshot persistence.
package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// Query is one concrete search query plus the topic it was expanded from.
// Topic keeps the unexpanded template so downstream stages can attribute a
// resolved market back to the directive that produced it.
type Query struct {
	Text  string
	Topic string
}

// Calendar placeholders recognized in topic templates.
const (
	phMonth     = "{month}"
	phNextMonth = "{next_month}"
	phYear      = "{year}"
	phDate      = "{date}"
)

func monthName(t time.Time) string { return t.Month().String() }

func hasPlaceholder(s string) bool {
	return strings.Contains(s, phMonth) || strings.Contains(s, phNextMonth) ||
		strings.Contains(s, phYear) || strings.Contains(s, phDate)
}

// fillCalendar substitutes every calendar placeholder against base.
// monthBase feeds only the month placeholders so a shifted variant can move
// {month}/{next_month} forward while {year} and {date} stay on base.
func fillCalendar(template string, monthBase, base time.Time) string {
	out := template
	out = strings.ReplaceAll(out, phMonth, monthName(monthBase))
	out = strings.ReplaceAll(out, phNextMonth, monthName(monthBase.AddDate(0, 1, 0)))
	out = strings.ReplaceAll(out, phYear, fmt.Sprintf("%d", base.Year()))
	out = strings.ReplaceAll(out, phDate, fmt.Sprintf("%s %d", monthName(base), base.Day()))
	return out
}

// ExpandTemplates turns topic templates into concrete queries against now.
// Templates with a {month} placeholder additionally emit a variant shifted
// one month forward, so a directive straddling a month boundary still finds
// the contracts listed for the following month. Duplicate query texts are
// dropped, first occurrence wins.
func ExpandTemplates(templates []string, now time.Time) []Query {
	var out []Query
	seen := make(map[string]struct{})
	add := func(text, topic string) {
		if _, ok := seen[text]; ok {
			return
		}
		seen[text] = struct{}{}
		out = append(out, Query{Text: text, Topic: topic})
	}
	for _, tpl := range templates {
		if !hasPlaceholder(tpl) {
			add(tpl, tpl)
			continue
		}
		add(fillCalendar(tpl, now, now), tpl)
		if strings.Contains(tpl, phMonth) {
			add(fillCalendar(tpl, now.AddDate(0, 1, 0), now), tpl)
		}
	}
	return out
}

// BuiltinQueries is the fallback query set used when no directive source is
// configured. It covers a fixed macro/crypto watchlist and widens its calendar
// horizon as the month and year wind down: past mid-month the next month is
// added, and from October on the next year is added.
func BuiltinQueries(now time.Time) []Query {
	months := []time.Time{now}
	if now.Day() >= 15 {
		months = append(months, now.AddDate(0, 1, 0))
	}
	years := []int{now.Year()}
	if now.Month() >= time.October {
		years = append(years, now.Year()+1)
	}
	dates := []time.Time{now, now.AddDate(0, 0, 1), now.AddDate(0, 0, 2)}

	var templates []string
	for _, m := range months {
		name := monthName(m)
		templates = append(templates,
			fmt.Sprintf("What will Gold (GC) settle at in %s?", name),
			fmt.Sprintf("What will Gold (GC) hit__ by end of %s?", name),
			fmt.Sprintf("Fed decision in %s?", name),
			fmt.Sprintf("What price will Bitcoin hit in %s?", name),
		)
	}
	for _, y := range years {
		templates = append(templates, fmt.Sprintf("How many Fed rate cuts in %d?", y))
	}
	templates = append(templates, "Bitcoin all time high by ___?")
	for _, d := range dates {
		day := fmt.Sprintf("%s %d", monthName(d), d.Day())
		templates = append(templates,
			fmt.Sprintf("Bitcoin price on %s?", day),
			fmt.Sprintf("Bitcoin above ___ on %s?", day),
		)
	}

	var out []Query
	seen := make(map[string]struct{})
	for _, t := range templates {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, Query{Text: t, Topic: t})
	}
	return out
}
