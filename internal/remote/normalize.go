package remote

import (
	"strings"
	"time"
)

// The backend's payloads drift across extract versions: the same field
// arrives as nomComplet, nom or nom_complet depending on the endpoint. All
// known aliases are mapped to the canonical shapes here, once, on ingestion;
// the rest of the system never sees the raw wire names.

// Profile is the canonical view of a backend user record.
type Profile struct {
	Username    string
	DisplayName string
	AgencyCode  string
	Phone       string
	Email       string
	Portfolio   string
	Role        string
}

type profileDTO struct {
	NomUtilisateur  string `json:"nomUtilisateur"`
	NomUtilisateur2 string `json:"nom_utilisateur"`
	NomComplet      string `json:"nomComplet"`
	Nom             string `json:"nom"`
	NomComplet2     string `json:"nom_complet"`
	CodeAgence      string `json:"codeAgence"`
	Telephone       string `json:"telephone"`
	Email           string `json:"email"`
	PorteFeuille    string `json:"porteFeuille"`
	Portefeuille    string `json:"portefeuille"`
	Fonction        string `json:"fonction"`
}

func (d profileDTO) normalize() Profile {
	username := firstNonEmpty(d.NomUtilisateur, d.NomUtilisateur2)
	display := firstNonEmpty(d.NomComplet, d.Nom, d.NomComplet2)
	if display == "" {
		display = username
	}
	return Profile{
		Username:    username,
		DisplayName: display,
		AgencyCode:  strings.TrimSpace(d.CodeAgence),
		Phone:       strings.TrimSpace(d.Telephone),
		Email:       strings.TrimSpace(d.Email),
		Portfolio:   firstNonEmpty(d.PorteFeuille, d.Portefeuille),
		Role:        strings.TrimSpace(d.Fonction),
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// parseWireTime accepts the timestamp formats the backend is known to emit.
func parseWireTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	// Some extracts serialize without a zone designator.
	if ts, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return ts
	}
	return time.Time{}
}
