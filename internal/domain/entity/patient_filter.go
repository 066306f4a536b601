package entity

import "strings"

// PatientFilter narrows an in-memory patient listing by a free-text query.
// A patient matches when the query is a case-insensitive substring of its
// full name, medical record number or clinic.
type PatientFilter struct {
	Query string
}

func (f PatientFilter) Matches(p *Patient) bool {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}

	return strings.Contains(strings.ToLower(p.FullName), q) ||
		strings.Contains(strings.ToLower(p.MedicalRecord), q) ||
		strings.Contains(strings.ToLower(p.Clinic), q)
}

// FilterPatients returns the patients matching query, preserving order.
// An empty query returns the input unchanged.
func FilterPatients(patients []Patient, query string) []Patient {
	filter := PatientFilter{Query: query}
	if strings.TrimSpace(query) == "" {
		return patients
	}

	matched := make([]Patient, 0, len(patients))
	for i := range patients {
		if filter.Matches(&patients[i]) {
			matched = append(matched, patients[i])
		}
	}
	return matched
}
