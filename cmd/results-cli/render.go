package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ieltsly/speaking-results/internal/result"
	"github.com/ieltsly/speaking-results/internal/service"
	"github.com/ieltsly/speaking-results/pkg/bands"
)

func renderJSON(res *result.SessionResult) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		os.Exit(1)
	}
}

func renderText(outcome *service.Outcome) {
	res := outcome.Result

	fmt.Printf("Session %s", outcome.SessionCode)
	if outcome.FromCache {
		fmt.Print(" (cached)")
	}
	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))

	if info := res.SessionInfo; info != nil {
		fmt.Printf("Status:    %s\n", info.Status)
		if info.SessionType != "" {
			fmt.Printf("Type:      %s", info.SessionType)
			if info.PartNumber > 0 {
				fmt.Printf(" (part %d)", info.PartNumber)
			}
			fmt.Println()
		}
		if info.TotalDurationSeconds > 0 {
			fmt.Printf("Duration:  %s\n", bands.FormatDuration(info.TotalDurationSeconds))
		}
		if info.QuestionsAsked > 0 {
			fmt.Printf("Questions: %d asked, %d answered\n", info.QuestionsAsked, info.QuestionsAnswered)
		}
	}
	fmt.Printf("Candidate: %s\n", res.UserInfo.DisplayName())
	if res.TopicInfo != nil && res.TopicInfo.Title != "" {
		fmt.Printf("Topic:     %s\n", res.TopicInfo.Title)
	}

	if scores := res.SessionScores; scores != nil && scores.OverallScore != nil {
		fmt.Printf("\nOverall band: %.1f — %s\n", *scores.OverallScore, bands.Description(*scores.OverallScore))
		if scores.TotalWordsSpoken > 0 {
			fmt.Printf("Words spoken: %d\n", scores.TotalWordsSpoken)
		}
	}

	for _, turn := range res.Conversations {
		fmt.Println()
		fmt.Printf("Q%d: %s\n", turn.QuestionOrder, turn.QuestionText)
		if turn.Transcript != "" {
			fmt.Printf("    %q\n", turn.Transcript)
		}
		renderScores(turn.IELTSScores)
		if wa := turn.WordAnalysis; wa != nil && wa.WordCount > 0 {
			fmt.Printf("    words: %d (%.0f%% accurate)\n", wa.WordCount, wa.WordAccuracyPercentage)
		}
		for _, fb := range turn.AIFeedback {
			fmt.Printf("    suggestion: %s -> %s\n", fb.Original, fb.Improved)
		}
		if turn.HasIssues && turn.IssueDescription != "" {
			fmt.Printf("    issue: %s\n", turn.IssueDescription)
		}
	}
}

func renderScores(s *result.IELTSScores) {
	if s == nil {
		return
	}
	parts := make([]string, 0, 6)
	add := func(label string, v *float64) {
		if v != nil && *v > 0 {
			parts = append(parts, fmt.Sprintf("%s %.1f", label, *v))
		}
	}
	add("fluency", s.Fluency)
	add("vocab", s.Vocabulary)
	add("grammar", s.Grammar)
	add("pronunciation", s.Pronunciation)
	add("coherence", s.Coherence)
	if len(parts) == 0 && s.Overall == nil {
		return
	}
	fmt.Printf("    bands: %.1f (%s)\n", s.OverallPerformance(), strings.Join(parts, ", "))
}
