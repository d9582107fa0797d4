package utils

import (
	"strings"

	"hostel-complaint-api/models"
)

// Accepted spellings for each complaint status, as sent by older clients and query strings.
var complaintStatusSynonyms = map[models.ComplaintStatus][]string{
	models.StatusOpen:       {"open", "new", "pending"},
	models.StatusInProgress: {"in progress", "in_progress", "inprogress", "in-progress", "progress"},
	models.StatusResolved:   {"resolved", "done", "closed"},
	models.StatusRejected:   {"rejected", "declined"},
}

var complaintStatusAliases = buildComplaintStatusAliases()

func buildComplaintStatusAliases() map[string]models.ComplaintStatus {
	aliases := make(map[string]models.ComplaintStatus)
	for canonical, synonyms := range complaintStatusSynonyms {
		aliases[normalizeStatus(string(canonical))] = canonical
		for _, alias := range synonyms {
			aliases[normalizeStatus(alias)] = canonical
		}
	}
	return aliases
}

func normalizeStatus(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

// ParseComplaintStatus maps a loosely spelled status to its canonical value.
func ParseComplaintStatus(raw string) (models.ComplaintStatus, bool) {
	status, ok := complaintStatusAliases[normalizeStatus(raw)]
	return status, ok
}
