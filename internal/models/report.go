package models

import "errors"

// Report types for defect/loss reports.
const (
	ReportTypeDefect = "Defekt"
	ReportTypeLoss   = "Verlust"
)

// MaterialCatalog is the fixed list of equipment categories a defect/loss
// report may name. The catalog mirrors the contents of the box; "Anderes"
// is the catch-all and must stay last.
var MaterialCatalog = []string{
	"Tischtennisbälle",
	"Tischtennisschläger",
	"Unihockeyball",
	"Tennisball",
	"Fussball Gr. 5",
	"Mini-Fussball Gr. 1",
	"Basketball Gr. 7",
	"Basketball Gr. 5",
	"Kinder-Volleyball",
	"Beachvolleyball",
	"Badmintonschläger",
	"Badminton-Federball",
	"Trainingshütchen",
	"Ballpumpe",
	"Plastikpfeife",
	"Schlitten Po-Rutscher",
	"Anderes",
}

// ValidMaterial reports whether material is in the catalog.
func ValidMaterial(material string) bool {
	for _, m := range MaterialCatalog {
		if m == material {
			return true
		}
	}
	return false
}

// DefectReport is one row of the defect/loss log. Field names match the
// CSV columns, which are the on-disk contract. Timestamp is RFC 3339 UTC
// and assigned by the server; User is the acting username, empty for
// anonymous submissions.
type DefectReport struct {
	Timestamp    string `json:"timestamp"`
	Name         string `json:"name"`
	Kontakt      string `json:"kontakt"`
	Datum        string `json:"datum"`
	Art          string `json:"art"`
	Material     string `json:"material"`
	Anzahl       int    `json:"anzahl"`
	Beschreibung string `json:"beschreibung"`
	User         string `json:"user"`
}

// Validate checks the caller-supplied fields of a defect report.
func (r *DefectReport) Validate() error {
	if r.Datum == "" {
		return errors.New("datum is required")
	}
	if r.Art != ReportTypeDefect && r.Art != ReportTypeLoss {
		return errors.New("art must be Defekt or Verlust")
	}
	if !ValidMaterial(r.Material) {
		return errors.New("unknown material category")
	}
	if r.Anzahl < 1 {
		return errors.New("anzahl must be at least 1")
	}
	return nil
}

// WishReport is one row of the material wish log.
type WishReport struct {
	Timestamp   string `json:"timestamp"`
	Name        string `json:"name"`
	Klasse      string `json:"klasse"`
	Wunsch      string `json:"wunsch"`
	Begruendung string `json:"begruendung"`
	User        string `json:"user"`
}
