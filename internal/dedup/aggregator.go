// Package dedup replays a category's issue stream, collapses duplicates and
// computes the severity rollup. This is a deliberate second pass: rule
// checks stay independent and never coordinate to avoid double reporting.
package dedup

import (
	"sort"

	log "github.com/sirupsen/logrus"

	"bytemomo/remora/internal/domain"
	"bytemomo/remora/internal/stream"
)

// Aggregate reads the stream at path and produces the category result.
// The first occurrence of each (file, line, rule, message) key wins; later
// duplicates are dropped, not merged. Running it twice over an unchanged
// stream yields an identical result.
func Aggregate(path string) (domain.CategoryResult, error) {
	seen := make(map[string]struct{})
	result := domain.ZeroCategoryResult()
	dropped := 0

	err := stream.Replay(path, func(issue domain.Issue) error {
		key := issue.DedupKey()
		if _, dup := seen[key]; dup {
			dropped++
			return nil
		}
		seen[key] = struct{}{}
		result.Issues = append(result.Issues, issue)
		return nil
	})
	if err != nil {
		return domain.ZeroCategoryResult(), err
	}

	sortIssues(result.Issues)

	result.TotalIssues = len(result.Issues)
	for _, issue := range result.Issues {
		switch issue.Severity {
		case domain.SeverityHigh:
			result.HighSeverity++
		case domain.SeverityMedium:
			result.MediumSeverity++
		case domain.SeverityLow:
			result.LowSeverity++
		}
	}

	if dropped > 0 {
		log.WithFields(log.Fields{
			"stream":  path,
			"dropped": dropped,
			"kept":    result.TotalIssues,
		}).Debug("Collapsed duplicate issues")
	}
	return result, nil
}

var severityRank = map[domain.Severity]int{
	domain.SeverityHigh:   0,
	domain.SeverityMedium: 1,
	domain.SeverityLow:    2,
	domain.SeverityInfo:   3,
}

// sortIssues orders by severity, then location, so results are stable no
// matter how task completion interleaved the stream.
func sortIssues(issues []domain.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if severityRank[issues[i].Severity] != severityRank[issues[j].Severity] {
			return severityRank[issues[i].Severity] < severityRank[issues[j].Severity]
		}
		if issues[i].File != issues[j].File {
			return issues[i].File < issues[j].File
		}
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		return issues[i].Type < issues[j].Type
	})
}
