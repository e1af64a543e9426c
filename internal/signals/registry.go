package signals

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// knownEntity is one entry of the built-in company registry
type knownEntity struct {
	Company  string
	Ticker   string
	Exchange string
}

// knownEntities covers the major pharmaceutical, biotech and medical-device
// companies. Tier 1 matches against this list exactly (after normalization);
// tier 2 matches it fuzzily.
var knownEntities = []knownEntity{
	// Major pharma
	{"Pfizer", "PFE", "NYSE"},
	{"Merck", "MRK", "NYSE"},
	{"Novartis", "NVS", "NYSE"},
	{"Roche", "RHHBY", "OTC"},
	{"Johnson & Johnson", "JNJ", "NYSE"},
	{"Bristol Myers Squibb", "BMY", "NYSE"},
	{"AbbVie", "ABBV", "NYSE"},
	{"AstraZeneca", "AZN", "NASDAQ"},
	{"Sanofi", "SNY", "NASDAQ"},
	{"GlaxoSmithKline", "GSK", "NYSE"},
	{"Eli Lilly", "LLY", "NYSE"},

	// Biotech
	{"Gilead Sciences", "GILD", "NASDAQ"},
	{"Moderna", "MRNA", "NASDAQ"},
	{"BioNTech", "BNTX", "NASDAQ"},
	{"Regeneron", "REGN", "NASDAQ"},
	{"Amgen", "AMGN", "NASDAQ"},
	{"Vertex", "VRTX", "NASDAQ"},
	{"Biogen", "BIIB", "NASDAQ"},
	{"Alnylam", "ALNY", "NASDAQ"},
	{"Novavax", "NVAX", "NASDAQ"},
	{"Illumina", "ILMN", "NASDAQ"},

	// Devices and diagnostics
	{"Medtronic", "MDT", "NYSE"},
	{"Abbott Laboratories", "ABT", "NYSE"},
	{"Thermo Fisher", "TMO", "NYSE"},
	{"Boston Scientific", "BSX", "NYSE"},
	{"Stryker", "SYK", "NYSE"},
	{"Intuitive Surgical", "ISRG", "NASDAQ"},
	{"DexCom", "DXCM", "NASDAQ"},
	{"Quest Diagnostics", "DGX", "NYSE"},
	{"Labcorp", "LH", "NYSE"},
}

// corporateSuffixes are stripped before any company-name comparison
var corporateSuffixes = []string{
	"incorporated", "inc", "corporation", "corp", "company", "co",
	"limited", "ltd", "plc", "ag", "sa", "nv", "holdings",
	"pharmaceuticals", "pharmaceutical", "pharma", "therapeutics",
	"biosciences", "sciences", "laboratories", "labs",
}

// normalizeCompany lowercases a company mention, removes punctuation and
// strips trailing corporate suffixes so "Pfizer Inc." and "pfizer" compare
// equal.
func normalizeCompany(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	lower = strings.ReplaceAll(lower, ",", " ")
	lower = strings.ReplaceAll(lower, ".", " ")

	words := strings.Fields(lower)
	for len(words) > 1 {
		last := words[len(words)-1]
		stripped := false
		for _, suffix := range corporateSuffixes {
			if last == suffix {
				words = words[:len(words)-1]
				stripped = true
				break
			}
		}
		if !stripped {
			break
		}
	}
	return strings.Join(words, " ")
}

// similarity returns a 0-1 string similarity score based on edit distance
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}

// manualLookup returns the ticker for an exact normalized registry match
func manualLookup(company string) (knownEntity, bool) {
	normalized := normalizeCompany(company)
	for _, entity := range knownEntities {
		if normalizeCompany(entity.Company) == normalized {
			return entity, true
		}
	}
	return knownEntity{}, false
}

// fuzzyLookup returns the best registry match at or above minSimilarity
func fuzzyLookup(company string, minSimilarity float64) (knownEntity, float64, bool) {
	normalized := normalizeCompany(company)

	var best knownEntity
	bestScore := 0.0
	for _, entity := range knownEntities {
		score := similarity(normalizeCompany(entity.Company), normalized)
		if score > bestScore {
			best = entity
			bestScore = score
		}
	}
	if bestScore >= minSimilarity {
		return best, bestScore, true
	}
	return knownEntity{}, bestScore, false
}
