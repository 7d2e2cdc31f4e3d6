// internal/app/features/auditlog/types.go
package auditlog

import (
	"github.com/dalemusser/tutorhub/internal/app/store/audit"
	"github.com/dalemusser/tutorhub/internal/app/system/paging"
)

// categoryOption is a filter choice offered to the client.
type categoryOption struct {
	Value      string   `json:"value"`
	Label      string   `json:"label"`
	EventTypes []string `json:"eventTypes"`
}

type listResponse struct {
	Events     []audit.Event    `json:"events"`
	Categories []categoryOption `json:"categories"`
	paging.Page
}

func allCategories() []categoryOption {
	return []categoryOption{
		{
			Value: audit.CategoryAuth,
			Label: "Authentication",
			EventTypes: []string{
				audit.EventLoginSuccess,
				audit.EventLoginFailed,
				audit.EventLogout,
			},
		},
		{
			Value: audit.CategoryAdmin,
			Label: "Administration",
			EventTypes: []string{
				audit.EventStudentCreated,
				audit.EventStudentUpdated,
				audit.EventStudentDeleted,
				audit.EventStudentPaidFlag,
				audit.EventGroupCreated,
				audit.EventGroupUpdated,
				audit.EventGroupArchived,
				audit.EventGroupRestored,
				audit.EventPresenceToggled,
				audit.EventPaymentToggled,
				audit.EventBalanceReconciled,
				audit.EventBalanceEdited,
			},
		},
	}
}

// knownCategory reports whether c is empty or a category we emit.
func knownCategory(c string) bool {
	if c == "" {
		return true
	}
	for _, o := range allCategories() {
		if o.Value == c {
			return true
		}
	}
	return false
}
