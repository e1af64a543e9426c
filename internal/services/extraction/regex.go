// Package extraction implements the swappable NLP strategies that turn raw
// source text into structured fields. The regex strategy is the default and
// needs no external calls; the Claude and Gemini strategies delegate to an
// LLM. The engine is indifferent to which strategy produced the fields.
package extraction

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/models"
)

// Clinical trial and regulatory patterns
var (
	nctPattern        = regexp.MustCompile(`(?i)\bNCT[0-9]{8,}\b`)
	phasePattern      = regexp.MustCompile(`(?i)phase\s*([IVX]+(?:\s*[-/]?\s*\d+)?|\d)`)
	enrollmentPattern = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*|\d+)\s*(?:participants?|patients?|subjects?|enrolled)\b`)
	pValuePattern     = regexp.MustCompile(`(?i)p(?:-|\s*)?(?:value)?\s*[=<>≤]\s*(\d+\.?\d*(?:e[-+]?\d+)?)`)
	efficacyPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)%\s*(?:improvement|reduction|response|survival|efficacy)`)

	approvalPattern  = regexp.MustCompile(`(?i)FDA\s*(?:granted|issued|approved|cleared)\s*(?:approval|clearance|authorization)?`)
	rejectionPattern = regexp.MustCompile(`(?i)(?:FDA\s*(?:rejected|denied)|complete\s*response\s*letter)`)
	endpointMet      = regexp.MustCompile(`(?i)(?:met|achieved)\s*(?:its\s*)?(?:primary|secondary)\s*endpoint`)
	endpointMissed   = regexp.MustCompile(`(?i)(?:missed|failed\s*to\s*meet)\s*(?:its\s*)?(?:primary|secondary)\s*endpoint`)

	drugPattern   = regexp.MustCompile(`(?i)(?:drug|therapy|treatment|candidate|vaccine|antibody)\s+([A-Z][A-Za-z0-9-]{2,})`)
	tickerPattern = regexp.MustCompile(`\(\s*(?:NYSE|NASDAQ)\s*:\s*([A-Z]{1,5})\s*\)`)
)

// companyPattern matches one well-known company mention in free text
type companyPattern struct {
	re      *regexp.Regexp
	company string
	ticker  string
}

var companyPatterns = []companyPattern{
	{regexp.MustCompile(`\bPfizer\b`), "Pfizer", "PFE"},
	{regexp.MustCompile(`\bMerck\b`), "Merck", "MRK"},
	{regexp.MustCompile(`\bJohnson\s*&\s*Johnson\b|\bJ&J\b`), "Johnson & Johnson", "JNJ"},
	{regexp.MustCompile(`\bAbbVie\b`), "AbbVie", "ABBV"},
	{regexp.MustCompile(`\bBristol[\s-]?Myers\s*Squibb\b|\bBMS\b`), "Bristol Myers Squibb", "BMY"},
	{regexp.MustCompile(`\bNovartis\b`), "Novartis", "NVS"},
	{regexp.MustCompile(`\bRoche\b`), "Roche", "RHHBY"},
	{regexp.MustCompile(`\bSanofi\b`), "Sanofi", "SNY"},
	{regexp.MustCompile(`\bAstraZeneca\b`), "AstraZeneca", "AZN"},
	{regexp.MustCompile(`\bGlaxoSmithKline\b|\bGSK\b`), "GlaxoSmithKline", "GSK"},
	{regexp.MustCompile(`\bAmgen\b`), "Amgen", "AMGN"},
	{regexp.MustCompile(`\bGilead(?:\s*Sciences)?\b`), "Gilead Sciences", "GILD"},
	{regexp.MustCompile(`\bRegeneron\b`), "Regeneron", "REGN"},
	{regexp.MustCompile(`\bModerna\b`), "Moderna", "MRNA"},
	{regexp.MustCompile(`\bBioNTech\b`), "BioNTech", "BNTX"},
	{regexp.MustCompile(`\bVertex\b`), "Vertex", "VRTX"},
	{regexp.MustCompile(`\bBiogen\b`), "Biogen", "BIIB"},
	{regexp.MustCompile(`\bEli\s*Lilly\b|\bLilly\b`), "Eli Lilly", "LLY"},
	{regexp.MustCompile(`\bMedtronic\b`), "Medtronic", "MDT"},
	{regexp.MustCompile(`\bAbbott(?:\s*Laboratories)?\b`), "Abbott Laboratories", "ABT"},
}

// RegexExtractor extracts structured fields with compiled patterns. Fast,
// deterministic and offline.
type RegexExtractor struct {
	logger arbor.ILogger
}

// NewRegexExtractor creates the default extraction strategy
func NewRegexExtractor(logger arbor.ILogger) *RegexExtractor {
	return &RegexExtractor{logger: logger}
}

// Mode identifies the strategy
func (e *RegexExtractor) Mode() string { return "regex" }

// Extract fills structured fields from raw text
func (e *RegexExtractor) Extract(ctx context.Context, text string) (models.ExtractedFields, error) {
	var fields models.ExtractedFields

	for _, cp := range companyPatterns {
		if cp.re.MatchString(text) {
			fields.Company = cp.company
			fields.Ticker = cp.ticker
			break
		}
	}
	if fields.Ticker == "" {
		if m := tickerPattern.FindStringSubmatch(text); m != nil {
			fields.Ticker = m[1]
		}
	}

	if m := drugPattern.FindStringSubmatch(text); m != nil {
		fields.Drug = m[1]
	}
	if m := phasePattern.FindStringSubmatch(text); m != nil {
		fields.Phase = strings.TrimSpace(m[1])
	}
	if m := nctPattern.FindString(text); m != "" {
		fields.Stats.NCTID = strings.ToUpper(m)
	}
	if m := enrollmentPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			fields.Stats.Enrollment = n
		}
	}
	if m := pValuePattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			fields.Stats.PValue = v
		}
	}
	if m := efficacyPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			fields.Stats.Efficacy = v
		}
	}

	fields.Outcome = classifyOutcome(text)
	return fields, nil
}

// classifyOutcome derives a coarse outcome label from the text
func classifyOutcome(text string) string {
	switch {
	case rejectionPattern.MatchString(text):
		return "rejected"
	case approvalPattern.MatchString(text):
		return "approved"
	case endpointMissed.MatchString(text):
		return "endpoint_missed"
	case endpointMet.MatchString(text):
		return "endpoint_met"
	}
	return ""
}
