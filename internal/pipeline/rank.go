package pipeline

import (
	"sort"
	"strings"

	"github.com/polyscout/polyscout/internal/config"
	"github.com/polyscout/polyscout/internal/domain"
)

// ComposeScanner builds the Scanner's bounded result list: a global baseline
// of the top-N candidates by 24h volume, distinct by event, then up to a few
// per-sector "gems" ranked by each sector's own metric, then one final re-sort
// by 24h volume so the output reads as a single ranked list. Stable sorts keep
// composition deterministic for a given input.
func ComposeScanner(candidates []Candidate, sectors []config.SectorRule, baselineSize, gemsPerSector int) []domain.Signal {
	byVol24 := make([]Candidate, len(candidates))
	copy(byVol24, candidates)
	sort.SliceStable(byVol24, func(i, j int) bool {
		return byVol24[i].Market.Volume24h > byVol24[j].Market.Volume24h
	})

	seen := make(map[string]struct{})
	var picked []Candidate
	for _, c := range byVol24 {
		if len(picked) >= baselineSize {
			break
		}
		if _, dup := seen[c.Signal.Slug]; dup {
			continue
		}
		seen[c.Signal.Slug] = struct{}{}
		picked = append(picked, c)
	}

	// Per-sector backfill: examine each sector's top few by its own sort
	// metric and add the ones the baseline missed.
	for _, rule := range sectors {
		inSector := filterSector(candidates, rule)
		sort.SliceStable(inSector, func(i, j int) bool {
			return sortMetric(rule, inSector[i]) > sortMetric(rule, inSector[j])
		})
		for i, c := range inSector {
			if i >= gemsPerSector {
				break
			}
			if _, dup := seen[c.Signal.Slug]; dup {
				continue
			}
			seen[c.Signal.Slug] = struct{}{}
			picked = append(picked, c)
		}
	}

	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].Market.Volume24h > picked[j].Market.Volume24h
	})

	out := make([]domain.Signal, len(picked))
	for i, c := range picked {
		out[i] = c.Signal
	}
	return out
}

func filterSector(candidates []Candidate, rule config.SectorRule) []Candidate {
	var out []Candidate
	for _, c := range candidates {
		if strings.Contains(c.Signal.Category, rule.Name) {
			out = append(out, c)
		}
	}
	return out
}

// ComposeTargeter orders the Targeter's signals by lifetime volume
// descending. Directive-driven results are few, so the list is not capped.
func ComposeTargeter(signals []domain.Signal) {
	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Volume > signals[j].Volume
	})
}
