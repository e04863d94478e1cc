package workflow

import (
	"strings"

	"bitbucket.org/oakarsoft/draftdesk_backend/models"
	"bitbucket.org/oakarsoft/draftdesk_backend/utils"
)

// DetectQueryVariables returns the distinct {{name}} placeholders of a
// report query, in first-appearance order.
func DetectQueryVariables(query string) []string {
	var names []string
	seen := make(map[string]struct{})

	for {
		start := strings.Index(query, "{{")
		if start < 0 {
			break
		}
		end := strings.Index(query[start:], "}}")
		if end < 0 {
			break
		}
		name := strings.TrimSpace(query[start+2 : start+end])
		query = query[start+end+2:]

		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// DetectVariables scans the report query and adds a draft variable for each
// placeholder not yet in the collection. Returns how many were added.
func (s *DraftSession) DetectVariables() (int, error) {
	if s.codec.kind != models.KindReportVariable {
		return 0, utils.NewValidationError("variable detection applies to report variable collections only")
	}

	existing := make(map[string]struct{}, len(s.entities))
	for _, e := range s.entities {
		existing[e.NaturalKey()] = struct{}{}
	}

	added := 0
	for _, name := range DetectQueryVariables(s.reportHeader.Query) {
		if _, ok := existing[name]; ok {
			continue
		}
		if err := s.Add(&models.ReportVariable{Name: name, Label: name, DataType: "string"}); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
