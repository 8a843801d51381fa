package result

import "math"

// SessionResult is the decoded payload for one scored speaking session.
// It is treated as immutable once fetched: derived values (averages,
// display names) are computed on the fly and never written back.
type SessionResult struct {
	SessionInfo   *SessionInfo       `json:"session_info,omitempty"`
	UserInfo      *UserInfo          `json:"user_info,omitempty"`
	TopicInfo     *TopicInfo         `json:"topic_info,omitempty"`
	Conversations []ConversationTurn `json:"conversations,omitempty"`
	SessionScores *SessionScores     `json:"session_scores,omitempty"`
	Metadata      *Metadata          `json:"metadata,omitempty"`
}

// SessionStatus enumerates the lifecycle states reported by the scoring API.
type SessionStatus string

const (
	StatusPending    SessionStatus = "pending"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusFailed     SessionStatus = "failed"
)

// SessionInfo describes the session itself.
type SessionInfo struct {
	ID                   string        `json:"id"`
	Status               SessionStatus `json:"status"`
	SessionType          string        `json:"session_type,omitempty"`
	PartNumber           int           `json:"part_number,omitempty"`
	StartedAt            string        `json:"started_at,omitempty"`
	CompletedAt          string        `json:"completed_at,omitempty"`
	TotalDurationSeconds float64       `json:"total_duration_seconds,omitempty"`
	QuestionsAsked       int           `json:"questions_asked,omitempty"`
	QuestionsAnswered    int           `json:"questions_answered,omitempty"`
}

// UserInfo carries the display name fields for the test taker.
type UserInfo struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	FullName  string `json:"full_name,omitempty"`
}

// DisplayName returns the best available name for presentation.
func (u *UserInfo) DisplayName() string {
	if u == nil {
		return "N/A"
	}
	if u.FullName != "" {
		return u.FullName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "N/A"
}

// TopicInfo describes the speaking topic.
type TopicInfo struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// ConversationTurn is one question/answer/scoring unit. Order within
// SessionResult.Conversations is significant (question sequence).
type ConversationTurn struct {
	QuestionOrder        int               `json:"question_order,omitempty"`
	QuestionText         string            `json:"question_text,omitempty"`
	Transcript           string            `json:"transcript,omitempty"`
	AudioDurationSeconds float64           `json:"audio_duration_seconds,omitempty"`
	CreatedAt            string            `json:"created_at,omitempty"`
	IELTSScores          *IELTSScores      `json:"ielts_scores,omitempty"`
	WordAnalysis         *WordAnalysis     `json:"word_analysis,omitempty"`
	AIFeedback           []FeedbackItem    `json:"ai_feedback,omitempty"`
	DetailedAnalysis     *DetailedAnalysis `json:"detailed_analysis,omitempty"`
	HasIssues            bool              `json:"has_issues,omitempty"`
	IssueDescription     string            `json:"issue_description,omitempty"`
}

// IELTSScores holds the band scores for one answer. Pointers keep an
// absent score distinguishable from a genuine 0.
type IELTSScores struct {
	Overall       *float64 `json:"overall,omitempty"`
	Pronunciation *float64 `json:"pronunciation,omitempty"`
	Fluency       *float64 `json:"fluency,omitempty"`
	Vocabulary    *float64 `json:"vocabulary,omitempty"`
	Grammar       *float64 `json:"grammar,omitempty"`
	Coherence     *float64 `json:"coherence,omitempty"`
}

// OverallPerformance averages the populated positive band scores to one
// decimal place. Returns 0 when no scores are populated.
func (s *IELTSScores) OverallPerformance() float64 {
	if s == nil {
		return 0
	}
	var sum float64
	var n int
	for _, v := range []*float64{s.Overall, s.Pronunciation, s.Fluency, s.Vocabulary, s.Grammar, s.Coherence} {
		if v != nil && *v > 0 {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(sum/float64(n)*10) / 10
}

// WordAnalysis carries word-level statistics for one answer.
type WordAnalysis struct {
	WordCount              int     `json:"word_count,omitempty"`
	WordAccuracyPercentage float64 `json:"word_accuracy_percentage,omitempty"`
}

// FeedbackItem is one original/improved sentence pair suggested by the
// scoring model.
type FeedbackItem struct {
	Original string `json:"original"`
	Improved string `json:"improved"`
}

// DetailedAnalysis holds the auxiliary scoring the API attaches to an
// answer: CEFR level estimates and raw fluency metrics.
type DetailedAnalysis struct {
	AdditionalScores *AdditionalScores `json:"additional_scores,omitempty"`
}

// AdditionalScores maps auxiliary scales reported alongside IELTS bands.
type AdditionalScores struct {
	CEFR           *CEFRScores        `json:"cefr,omitempty"`
	FluencyMetrics map[string]float64 `json:"fluency_metrics,omitempty"`
}

// CEFRScores maps CEFR dimensions (e.g. "vocabulary") to level names
// (e.g. "B2").
type CEFRScores struct {
	Levels map[string]string `json:"levels,omitempty"`
}

// SessionScores holds the aggregate metrics for the whole session.
type SessionScores struct {
	OverallScore     *float64 `json:"overall_score,omitempty"`
	TotalWordsSpoken int      `json:"total_words_spoken,omitempty"`
}

// Metadata describes how and when the payload was generated upstream.
type Metadata struct {
	GeneratedAt     string `json:"generated_at,omitempty"`
	APIVersion      string `json:"api_version,omitempty"`
	ServedFromCache bool   `json:"served_from_cache,omitempty"`
}
