package firewall

import (
	"strings"
)

// parseShowRule interprets the output of
// `netsh advfirewall firewall show rule name=...`.
// netsh exits nonzero and prints a "No rules match" message when the rule
// is absent; when present, an "Enabled:" field carries Yes or No.
func parseShowRule(out string) RuleState {
	if strings.Contains(out, "No rules match") {
		return StateAbsent
	}
	switch strings.ToLower(showRuleField(out, "Enabled")) {
	case "yes":
		return StateEnabled
	case "no":
		return StateDisabled
	}
	return StateUnknown
}

// showRuleField extracts the value of one "Label:  value" field from show
// rule output, or "" when missing.
func showRuleField(out, label string) string {
	for _, line := range strings.Split(out, "\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), label) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
