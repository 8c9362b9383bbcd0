package normalize

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Rules holds the hand-curated dictionaries behind normalization and
// relevance scoring. They ship with compiled-in defaults and can be extended
// from a YAML rules file; treat them as configuration, not constants.
type Rules struct {
	// AgencyAbbreviations expands single tokens during agency normalization.
	AgencyAbbreviations map[string]string `yaml:"agency_abbreviations"`

	// TitleCodes maps known civil-service title codes to a relevance weight.
	// A code hit takes priority over keyword matching.
	TitleCodes map[string]float64 `yaml:"title_codes"`

	// Title keyword tiers, matched as substrings of the lowercased title text.
	TitleHighKeywords   []string `yaml:"title_high_keywords"`
	TitleMediumKeywords []string `yaml:"title_medium_keywords"`
	TitleLowKeywords    []string `yaml:"title_low_keywords"`

	// NoticeAgencyAbbreviations maps the short agency labels used by the
	// notice board to registry-style agency names, and vice versa.
	NoticeAgencyAbbreviations map[string]string `yaml:"notice_agency_abbreviations"`

	// AgencyStopwords are dropped before token-overlap agency comparison.
	AgencyStopwords []string `yaml:"agency_stopwords"`
}

// DefaultRules returns the built-in dictionaries.
func DefaultRules() Rules {
	return Rules{
		AgencyAbbreviations: map[string]string{
			"dept":     "department",
			"dpt":      "department",
			"admin":    "administration",
			"svcs":     "services",
			"svc":      "service",
			"auth":     "authority",
			"comm":     "commission",
			"cmsn":     "commission",
			"dev":      "development",
			"mgmt":     "management",
			"off":      "office",
			"ofc":      "office",
			"tech":     "technology",
			"telecomm": "telecommunications",
			"env":      "environmental",
			"pres":     "preservation",
			"nyc":      "new york city",
			"ny":       "new york",
			"bd":       "board",
			"cncl":     "council",
		},
		TitleCodes: map[string]float64{
			// Agency-head and executive-level codes.
			"10026": 1.0,
			"10031": 1.0,
			"94074": 1.0,
			"94367": 1.0,
			// Deputy / chief-of-staff band.
			"10033": 0.6,
			"10050": 0.6,
			"94497": 0.6,
			// Line titles that rarely indicate a principal-officer change.
			"10124": 0.2,
			"10251": 0.2,
			"12626": 0.2,
		},
		TitleHighKeywords: []string{
			"commissioner", "director", "chair", "chairperson", "president",
			"counsel", "administrator", "superintendent", "comptroller",
			"sheriff", "librarian", "trustee",
		},
		TitleMediumKeywords: []string{
			"deputy commissioner", "deputy director", "first deputy",
			"chief of staff", "assistant commissioner", "associate commissioner",
			"deputy counsel", "vice president",
		},
		TitleLowKeywords: []string{
			"manager", "analyst", "coordinator", "specialist", "assistant",
			"associate", "aide", "clerk", "secretary", "intern",
		},
		NoticeAgencyAbbreviations: map[string]string{
			"law":   "law department",
			"dob":   "department of buildings",
			"hpd":   "department of housing preservation and development",
			"dep":   "department of environmental protection",
			"dot":   "department of transportation",
			"doitt": "department of information technology and telecommunications",
			"dcas":  "department of citywide administrative services",
			"doi":   "department of investigation",
			"dohmh": "department of health and mental hygiene",
			"dsny":  "department of sanitation",
			"hra":   "human resources administration",
			"omb":   "office of management and budget",
			"nypd":  "police department",
			"fdny":  "fire department",
			"doe":   "department of education",
			"dcp":   "department of city planning",
			"dpr":   "department of parks and recreation",
			"sbs":   "department of small business services",
		},
		AgencyStopwords: []string{
			"of", "the", "and", "for",
			"department", "office", "agency", "commission", "board",
			"bureau", "division", "city", "new", "york",
		},
	}
}

// LoadRules reads a YAML rules file and merges it over the defaults.
// Entries in the file extend or override the built-in dictionaries; tiers
// given in the file replace the corresponding default list wholesale.
func LoadRules(path string) (Rules, error) {
	base := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		return base, eris.Wrapf(err, "normalize: read rules %s", path)
	}

	var override Rules
	if err := yaml.Unmarshal(data, &override); err != nil {
		return base, eris.Wrap(err, "normalize: parse rules")
	}

	for k, v := range override.AgencyAbbreviations {
		base.AgencyAbbreviations[k] = v
	}
	for k, v := range override.TitleCodes {
		base.TitleCodes[k] = v
	}
	for k, v := range override.NoticeAgencyAbbreviations {
		base.NoticeAgencyAbbreviations[k] = v
	}
	if len(override.TitleHighKeywords) > 0 {
		base.TitleHighKeywords = override.TitleHighKeywords
	}
	if len(override.TitleMediumKeywords) > 0 {
		base.TitleMediumKeywords = override.TitleMediumKeywords
	}
	if len(override.TitleLowKeywords) > 0 {
		base.TitleLowKeywords = override.TitleLowKeywords
	}
	if len(override.AgencyStopwords) > 0 {
		base.AgencyStopwords = override.AgencyStopwords
	}

	return base, nil
}
