package building

import "strings"

// statusTranslations maps BAG pand/verblijfsobject lifecycle statuses to
// English. Unknown statuses pass through untranslated.
var statusTranslations = map[string]string{
	"Pand in gebruik":                             "In use",
	"Pand in gebruik (niet ingemeten)":            "In use (not measured)",
	"Pand buiten gebruik":                         "Not in use",
	"Verbouwing pand":                             "Under renovation",
	"Sloopvergunning verleend":                    "Demolition permit granted",
	"Pand gesloopt":                               "Demolished",
	"Bouwvergunning verleend":                     "Building permit granted",
	"Bouw gestart":                                "Construction started",
	"Niet gerealiseerd pand":                      "Not realized",
	"Pand ten onrechte opgevoerd":                 "Erroneously registered",
	"Verblijfsobject in gebruik":                  "In use",
	"Verblijfsobject in gebruik (niet ingemeten)": "In use (not measured)",
	"Verblijfsobject buiten gebruik":              "Not in use",
	"Verblijfsobject gevormd":                     "Formed",
	"Niet gerealiseerd verblijfsobject":           "Not realized",
	"Verblijfsobject ingetrokken":                 "Withdrawn",
	"Verblijfsobject ten onrechte opgevoerd":      "Erroneously registered",
}

// useTranslations maps BAG gebruiksdoel values to English.
var useTranslations = map[string]string{
	"woonfunctie":             "Residential",
	"bijeenkomstfunctie":      "Assembly",
	"celfunctie":              "Cell/Detention",
	"gezondheidszorgfunctie":  "Healthcare",
	"industriefunctie":        "Industrial",
	"kantoorfunctie":          "Office",
	"logiesfunctie":           "Lodging",
	"onderwijsfunctie":        "Education",
	"sportfunctie":            "Sports",
	"winkelfunctie":           "Retail",
	"overige gebruiksfunctie": "Other",
}

// TranslateStatus renders a BAG status in English, passing unknown values
// through unchanged.
func TranslateStatus(status string) string {
	if status == "" {
		return ""
	}
	if en, ok := statusTranslations[status]; ok {
		return en
	}
	return status
}

// SplitIntendedUse splits a comma-joined gebruiksdoel string into the Dutch
// values and their English renderings.
func SplitIntendedUse(raw string) (nl, en []string) {
	nl = []string{}
	en = []string{}
	for _, part := range strings.Split(raw, ",") {
		doel := strings.TrimSpace(part)
		if doel == "" {
			continue
		}
		nl = append(nl, doel)
		if translated, ok := useTranslations[doel]; ok {
			en = append(en, translated)
		} else {
			en = append(en, doel)
		}
	}
	return nl, en
}
