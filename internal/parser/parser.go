package parser

import (
	"regexp"
	"strings"

	"github.com/Gopinath21052006/NeuroTrain/pkg/types"
)

// minCommandLength is the shortest trimmed input that gets classified at all.
const minCommandLength = 2

// Conjunction markers splitting a multi-step command into segments.
var (
	conjunctionMarkers = []string{"and then", "after that"}
	conjunctionSplitRe = regexp.MustCompile(`\b(?:and then|after that|then)\b`)
)

// Parser classifies free text into commands by scanning an ordered rule
// table. Classification is a pure function: identical input always yields an
// identical command.
type Parser struct{}

// New creates a new parser.
func New() *Parser {
	return &Parser{}
}

// Normalize lowercases and trims input text for matching.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Classify parses user text into a command. Inputs shorter than two
// characters after trimming come back as unknown with zero confidence; text
// containing a conjunction marker is split into a multi-step command;
// anything no rule matches falls back to chat.
func (p *Parser) Classify(text string) types.ParsedCommand {
	normalized := Normalize(text)
	if len(normalized) < minCommandLength {
		return types.ParsedCommand{
			Intent:       types.IntentUnknown,
			Action:       types.ActionNone,
			Parameters:   map[string]string{"original_text": text},
			OriginalText: text,
			Confidence:   0.0,
		}
	}

	if hasConjunction(normalized) {
		return p.classifyMulti(text, normalized)
	}

	return p.classifySingle(text, normalized)
}

// classifySingle runs the rule families in priority order and returns the
// first match, or the chat fallback.
func (p *Parser) classifySingle(original, normalized string) types.ParsedCommand {
	params := map[string]string{"original_text": original}

	for _, fam := range families {
		for _, r := range fam.rules {
			match := r.re.FindStringSubmatch(normalized)
			if match == nil {
				continue
			}
			if r.extract != nil && !r.extract(match, params) {
				continue
			}
			return types.ParsedCommand{
				Intent:       fam.intent,
				Action:       r.action,
				Parameters:   params,
				OriginalText: original,
				Confidence:   fam.confidence,
			}
		}
	}

	return types.ParsedCommand{
		Intent:       types.IntentChat,
		Action:       types.ActionProcessChat,
		Parameters:   params,
		OriginalText: original,
		Confidence:   ConfidenceChat,
	}
}

// classifyMulti splits the text on conjunction markers and classifies each
// segment independently. Only one level of splitting is performed.
func (p *Parser) classifyMulti(original, normalized string) types.ParsedCommand {
	segments := conjunctionSplitRe.Split(normalized, -1)

	var steps []types.ParsedCommand
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if len(seg) < minCommandLength {
			continue
		}
		steps = append(steps, p.classifySingle(seg, seg))
	}

	if len(steps) == 0 {
		return p.classifySingle(original, normalized)
	}

	confidence := steps[0].Confidence
	for _, step := range steps[1:] {
		if step.Confidence < confidence {
			confidence = step.Confidence
		}
	}

	return types.ParsedCommand{
		Intent:       types.IntentMulti,
		Action:       types.ActionNone,
		Parameters:   map[string]string{"original_text": original},
		OriginalText: original,
		Confidence:   confidence,
		Steps:        steps,
	}
}

func hasConjunction(normalized string) bool {
	for _, marker := range conjunctionMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}
