package analytics

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatali-fataliyev/mood_ledger/internal/ledger"
	"gopkg.in/yaml.v3"
)

// Classifier maps free text to a mood. ledger.MoodNone means no mood
// could be inferred. Implementations must be pure.
type Classifier interface {
	Classify(text string) ledger.Mood
}

type MoodRule struct {
	Mood     ledger.Mood `yaml:"mood"`
	Keywords []string    `yaml:"keywords"`
}

type moodRulesFile struct {
	Moods []MoodRule `yaml:"moods"`
}

func DefaultMoodRules() []MoodRule {
	return []MoodRule{
		{Mood: ledger.Happy, Keywords: []string{"happy", "joyful", "cheerful", "delight", "wonderful", "celebrate", "reward", "treat"}},
		{Mood: ledger.Healing, Keywords: []string{"healing", "warm", "relax", "soothing", "comfort", "coffee", "dessert"}},
		{Mood: ledger.Destress, Keywords: []string{"destress", "pressure", "overtime", "exhausted", "all-nighter", "meltdown", "anxious", "takeout"}},
		{Mood: ledger.Prudent, Keywords: []string{"prudent", "restraint", "saving", "budget", "repayment", "rational", "frugal"}},
	}
}

// LoadMoodRules reads a YAML rules file of the form
//
//	moods:
//	  - mood: Happy
//	    keywords: [happy, reward]
func LoadMoodRules(path string) ([]MoodRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mood rules file: %w", err)
	}

	var file moodRulesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse mood rules file: %w", err)
	}

	if len(file.Moods) == 0 {
		return nil, fmt.Errorf("mood rules file %s has no moods", path)
	}
	for _, rule := range file.Moods {
		if !rule.Mood.IsValid() {
			return nil, fmt.Errorf("mood rules file %s: unknown mood %q", path, rule.Mood)
		}
	}
	return file.Moods, nil
}

// KeywordClassifier scores each mood by how many of its distinct keywords
// occur in the text.
type KeywordClassifier struct {
	rules []MoodRule
}

// NewKeywordClassifier keeps the rules in canonical mood order whatever
// order they are given in, merges rules for the same mood and drops
// duplicate or empty keywords.
func NewKeywordClassifier(rules []MoodRule) *KeywordClassifier {
	byMood := make(map[ledger.Mood][]string)
	seen := make(map[ledger.Mood]map[string]struct{})
	for _, rule := range rules {
		if !rule.Mood.IsValid() {
			continue
		}
		if seen[rule.Mood] == nil {
			seen[rule.Mood] = make(map[string]struct{})
		}
		for _, k := range rule.Keywords {
			if k == "" {
				continue
			}
			if _, dup := seen[rule.Mood][k]; dup {
				continue
			}
			seen[rule.Mood][k] = struct{}{}
			byMood[rule.Mood] = append(byMood[rule.Mood], k)
		}
	}

	ordered := make([]MoodRule, 0, len(ledger.Moods))
	for _, mood := range ledger.Moods {
		if len(byMood[mood]) == 0 {
			continue
		}
		ordered = append(ordered, MoodRule{Mood: mood, Keywords: byMood[mood]})
	}
	return &KeywordClassifier{rules: ordered}
}

func (c *KeywordClassifier) Classify(text string) ledger.Mood {
	best := ledger.MoodNone
	bestScore := 0
	for _, rule := range c.rules {
		score := 0
		for _, k := range rule.Keywords {
			if strings.Contains(text, k) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = rule.Mood, score
		}
	}
	return best
}

// Keywords lists every keyword in rule order.
func (c *KeywordClassifier) Keywords() []string {
	var out []string
	for _, rule := range c.rules {
		out = append(out, rule.Keywords...)
	}
	return out
}

func (c *KeywordClassifier) Rules() []MoodRule {
	out := make([]MoodRule, len(c.rules))
	for i, rule := range c.rules {
		out[i] = MoodRule{Mood: rule.Mood, Keywords: append([]string(nil), rule.Keywords...)}
	}
	return out
}

// MoodDistribution holds accumulated weight per mood.
type MoodDistribution map[ledger.Mood]float64

func newMoodDistribution() MoodDistribution {
	d := make(MoodDistribution, len(ledger.Moods))
	for _, m := range ledger.Moods {
		d[m] = 0
	}
	return d
}

// Dominant returns the mood with the highest weight, earliest canonical
// mood on ties, MoodNone when every weight is zero.
func (d MoodDistribution) Dominant() ledger.Mood {
	best := ledger.MoodNone
	bestWeight := 0.0
	for _, m := range ledger.Moods {
		if d[m] > bestWeight {
			best, bestWeight = m, d[m]
		}
	}
	return best
}

func (d MoodDistribution) Summary() string {
	return MoodSummary(d.Dominant())
}

var moodSummaries = map[ledger.Mood]string{
	ledger.MoodNone: "Your spending this month has been rational and steady.",
	ledger.Happy:    "This month you mostly spent for joy and rewards.",
	ledger.Healing:  "This month you leaned towards healing and relaxation; looking after your feelings matters.",
	ledger.Destress: "This month you mostly spent to relieve stress; try some healthier ways to unwind.",
	ledger.Prudent:  "This month you were prudent and restrained; staying rational is great.",
}

func MoodSummary(m ledger.Mood) string {
	if s, ok := moodSummaries[m]; ok {
		return s
	}
	return "Your spending this month has been balanced."
}

type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// topKeywords counts, per keyword, how many notes contain it and keeps the
// limit most frequent. Equal counts keep keyword order.
func topKeywords(notes []string, keywords []string, limit int) []KeywordCount {
	counts := make([]KeywordCount, 0, len(keywords))
	for _, k := range keywords {
		n := 0
		for _, note := range notes {
			if strings.Contains(note, k) {
				n++
			}
		}
		if n > 0 {
			counts = append(counts, KeywordCount{Keyword: k, Count: n})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}
