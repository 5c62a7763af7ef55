package evaluation

import "strings"

const unknownAction = "UNKNOWN"

type Stats struct {
	TotalSamples int            `json:"total_samples"`
	Actions      map[string]int `json:"actions"`
}

type ChunkStats struct {
	Batch      int            `json:"batch"`
	BatchCount int            `json:"batch_count"`
	Size       int            `json:"size"`
	Actions    map[string]int `json:"actions"`
}

func ComputeStats(samples []Sample) Stats {
	return Stats{
		TotalSamples: len(samples),
		Actions:      actionHistogram(samples),
	}
}

func actionHistogram(samples []Sample) map[string]int {
	hist := make(map[string]int)
	for _, s := range samples {
		action := strings.ToUpper(strings.TrimSpace(s.Action))
		if action == "" {
			action = unknownAction
		}
		hist[action]++
	}
	return hist
}
