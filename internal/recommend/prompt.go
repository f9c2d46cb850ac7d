package recommend

import (
	"fmt"
	"strings"

	"github.com/wolfman30/lumiere-booking/internal/catalog"
)

const systemPrompt = "You are a helpful booking assistant for a wellness center."

// responseSchema is the structured answer requested from the model.
var responseSchema = &Schema{
	Type: SchemaObject,
	Properties: map[string]*Schema{
		"recommendedServiceId": {
			Type:        SchemaString,
			Nullable:    true,
			Description: "The ID of the recommended service, or null if no match found.",
		},
		"reasoning": {
			Type:        SchemaString,
			Description: "Short explanation for the user.",
		},
	},
}

// BuildPrompt renders the user's need and the full service list into the
// recommendation prompt.
func BuildPrompt(query string, services []catalog.Service) string {
	var list strings.Builder
	for i, svc := range services {
		if i > 0 {
			list.WriteString("\n")
		}
		fmt.Fprintf(&list, "ID: %s, Name: %s, Description: %s", svc.ID, svc.Name, svc.Description)
	}

	return fmt.Sprintf(`The user has the following problem or need: %q.

Here are the available services:
%s

Based on the user's need, select the single most appropriate service ID.
If none seem relevant, return null.`, query, list.String())
}
