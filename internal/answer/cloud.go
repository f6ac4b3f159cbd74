package answer

import (
	"regexp"
	"strings"

	"github.com/portfolio-site/backend/internal/corpus"
)

var (
	cloudPattern      = regexp.MustCompile(`(cloud|devops|aws|kubernetes|docker|serverless)`)
	cloudSkillsPrefix = regexp.MustCompile(`(?i)^Cloud and DevOps:\s*`)
	trailingPeriod    = regexp.MustCompile(`\.$`)
)

// Cloud answers cloud and DevOps questions from three fixed chunks: the
// education overview (required), the teaching-assistant role and the
// cloud skills listing (both optional).
type Cloud struct {
	Corpus      *corpus.Corpus
	FirstPerson *FirstPerson
	EducationID string
	TeachingID  string
	SkillsID    string
}

func (c *Cloud) Name() string { return "cloud" }

// Answer ignores matches; the chunks it needs are looked up by id.
func (c *Cloud) Answer(query string, _ []corpus.Chunk) (string, bool) {
	if !IsCloudQuestion(query) {
		return "", false
	}
	edu, ok := c.Corpus.Get(c.EducationID)
	if !ok {
		return "", false
	}

	parts := []string{"Yes. " + FirstSentence(c.FirstPerson.Rewrite(edu.Content))}
	if ta, ok := c.Corpus.Get(c.TeachingID); ok {
		parts = append(parts, FirstSentence(c.FirstPerson.Rewrite(ta.Content)))
	}
	if skills, ok := c.Corpus.Get(c.SkillsID); ok {
		parts = append(parts, FormatCloudSkills(skills.Content))
	}
	return strings.Join(parts, " "), true
}

// IsCloudQuestion reports whether query mentions a cloud or DevOps keyword.
func IsCloudQuestion(query string) bool {
	return cloudPattern.MatchString(strings.ToLower(query))
}

// FormatCloudSkills turns "Cloud and DevOps: AWS, Docker." into
// "My cloud and DevOps stack includes AWS, Docker."
func FormatCloudSkills(text string) string {
	cleaned := strings.TrimSpace(cloudSkillsPrefix.ReplaceAllString(text, ""))
	return "My cloud and DevOps stack includes " + trailingPeriod.ReplaceAllString(cleaned, "") + "."
}
