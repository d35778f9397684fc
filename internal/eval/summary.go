package eval

import "math"

// Summary aggregates all stored evaluations for the dashboard.
type Summary struct {
	TotalConversations int                `json:"total_conversations"`
	WithUserFeedback   int                `json:"with_user_feedback"`
	WithLLMEvaluation  int                `json:"with_llm_evaluation"`
	ThumbsUp           int                `json:"thumbs_up"`
	ThumbsDown         int                `json:"thumbs_down"`
	AverageLLMScore    float64            `json:"average_llm_score"`
	CategoryAverages   map[string]float64 `json:"category_averages"`
}

// Summarize computes the aggregate over all evaluation records. Means are
// simple arithmetic means over records that carry the relevant field;
// absent fields are excluded, not zeros. Thumbs-down is derived from the
// feedback count; a conversation with feedback is exactly one of up/down.
func Summarize(records []Record) Summary {
	s := Summary{
		TotalConversations: len(records),
		CategoryAverages:   make(map[string]float64, len(Categories)),
	}

	var overallSum float64
	categorySums := make(map[string]float64, len(Categories))

	for _, r := range records {
		if r.Feedback != nil {
			s.WithUserFeedback++
			if r.Feedback.ThumbsUp {
				s.ThumbsUp++
			}
		}
		if r.Judgment != nil {
			s.WithLLMEvaluation++
			overallSum += r.Judgment.OverallScore
			for _, cat := range Categories {
				categorySums[cat] += r.Judgment.Category(cat).Score
			}
		}
	}

	s.ThumbsDown = s.WithUserFeedback - s.ThumbsUp

	if s.WithLLMEvaluation > 0 {
		s.AverageLLMScore = round2(overallSum / float64(s.WithLLMEvaluation))
	}
	for _, cat := range Categories {
		if s.WithLLMEvaluation > 0 {
			s.CategoryAverages[cat] = round2(categorySums[cat] / float64(s.WithLLMEvaluation))
		} else {
			s.CategoryAverages[cat] = 0
		}
	}

	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
