package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/preamble.txt
	preambleRaw string

	//go:embed template/name_unknown.txt
	nameUnknownRaw string

	//go:embed template/name_known.txt
	nameKnownRaw string

	//go:embed template/reminder_en.txt
	reminderEnRaw string

	//go:embed template/reminder_es.txt
	reminderEsRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Preamble    string
	NameUnknown string
	NameKnown   string
	Reminders   map[string]string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Preamble:    strings.TrimSpace(preambleRaw),
		NameUnknown: strings.TrimSpace(nameUnknownRaw),
		NameKnown:   strings.TrimSpace(nameKnownRaw),
		Reminders: map[string]string{
			"en": strings.TrimSpace(reminderEnRaw),
			"es": strings.TrimSpace(reminderEsRaw),
		},
	}
}
