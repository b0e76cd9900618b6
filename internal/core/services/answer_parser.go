package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

// answerParser recovers answers from raw model output.
// A parser that cannot handle the text returns an error and the next one is tried.
type answerParser interface {
	name() string
	parse(text string, count int) ([]string, error)
}

// defaultAnswerParsers is the parse chain: strict JSON, then numbered lines.
func defaultAnswerParsers() []answerParser {
	return []answerParser{jsonAnswerParser{}, lineAnswerParser{}}
}

// parseAnswers runs the chain and returns exactly count answers.
func parseAnswers(parsers []answerParser, text string, count int) []string {
	for _, p := range parsers {
		answers, err := p.parse(text, count)
		if err == nil {
			return answers
		}
		logger.Warn("Answer parser %s failed: %v", p.name(), err)
	}
	return padAnswers(nil, count, domain.UnparsedAnswer)
}

var fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// extractJSON returns the fenced json block if present,
// otherwise the text from the first brace to the end.
func extractJSON(text string) (string, bool) {
	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	start := strings.Index(text, "{")
	if start == -1 {
		return "", false
	}
	return text[start:], true
}

// jsonAnswerParser decodes {"answers": [...]}.
type jsonAnswerParser struct{}

func (jsonAnswerParser) name() string { return "json" }

func (jsonAnswerParser) parse(text string, count int) ([]string, error) {
	payload, ok := extractJSON(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object found", domain.ErrContractViolation)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrContractViolation, err)
	}
	raw, ok := obj["answers"]
	if !ok {
		return nil, fmt.Errorf("%w: answers missing", domain.ErrContractViolation)
	}

	var items []json.RawMessage
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, fmt.Errorf("%w: answers must be a list", domain.ErrContractViolation)
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: answers must be a list", domain.ErrContractViolation)
	}

	answers := make([]string, 0, len(items))
	for _, item := range items {
		answers = append(answers, answerText(item))
	}
	return padAnswers(answers, count, domain.NoInformationAnswer), nil
}

// answerText renders a JSON answer item; strings are unquoted, anything else is kept as JSON.
func answerText(item json.RawMessage) string {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(item))
}

var numberedLinePattern = regexp.MustCompile(`^\d+\.`)
var numberedPrefixPattern = regexp.MustCompile(`^\d+\.\s*`)

// inlineOrdinalPattern finds a numbered marker inside a line, as in "first. 2. second".
var inlineOrdinalPattern = regexp.MustCompile(`\s(\d+)\.\s`)

// skippedLinePrefixes mark noise and echoed prompt headers.
var skippedLinePrefixes = []string{"```", "{", "}", `"answers"`, "CONTEXT", "QUESTIONS"}

// lineAnswerParser reads numbered answers from prose. It never fails.
type lineAnswerParser struct{}

func (lineAnswerParser) name() string { return "lines" }

func (lineAnswerParser) parse(text string, count int) ([]string, error) {
	var answers []string
	var current string

	// flush closes the current answer, splitting it at inline markers
	// that carry the next expected number.
	flush := func() {
		for current != "" {
			head, tail, ok := splitAtOrdinal(current, len(answers)+2)
			if !ok {
				answers = append(answers, strings.TrimSpace(current))
				break
			}
			answers = append(answers, head)
			current = tail
		}
		current = ""
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || hasAnyPrefix(line, skippedLinePrefixes) {
			continue
		}

		switch {
		case numberedLinePattern.MatchString(line):
			flush()
			current = numberedPrefixPattern.ReplaceAllString(line, "")
		case current != "":
			current += " " + line
		default:
			current = line
		}
	}
	flush()

	return padAnswers(answers, count, domain.UnparsedAnswer), nil
}

// splitAtOrdinal splits s at the first inline marker numbered ordinal.
// Other numbers ("Clause 7. applies", "Section 2.1") are left in place.
func splitAtOrdinal(s string, ordinal int) (head, tail string, ok bool) {
	want := strconv.Itoa(ordinal)
	for _, m := range inlineOrdinalPattern.FindAllStringSubmatchIndex(s, -1) {
		if s[m[2]:m[3]] == want {
			return strings.TrimSpace(s[:m[0]]), strings.TrimSpace(s[m[1]:]), true
		}
	}
	return "", "", false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// padAnswers pads with filler or truncates so the result has exactly count entries.
func padAnswers(answers []string, count int, filler string) []string {
	if count < 0 {
		count = 0
	}
	result := make([]string, count)
	for i := range result {
		if i < len(answers) {
			result[i] = answers[i]
		} else {
			result[i] = filler
		}
	}
	return result
}
