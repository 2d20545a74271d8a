package analysis

import (
	"sort"
)

// RankBySelfSufficiency sorts a copy of cands by descending self-sufficiency.
// Ties go to the smaller battery, then the lower power rating. Rank starts at 1.
func RankBySelfSufficiency(cands []Candidate) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SelfSufficiencyRate != b.SelfSufficiencyRate {
			return a.SelfSufficiencyRate > b.SelfSufficiencyRate
		}
		if a.Battery.CapacityKWh != b.Battery.CapacityKWh {
			return a.Battery.CapacityKWh < b.Battery.CapacityKWh
		}
		return a.Battery.MaxDischargeKW < b.Battery.MaxDischargeKW
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
