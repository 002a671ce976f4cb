package policy

import (
	"github.com/MKhiriev/go-offline-keeper/models"
)

// DraftStatus is the non-final status forced on financial documents written
// offline.
const DraftStatus = "draft"

// Transform rewrites a payload. It returns the payload to use and whether it
// changed anything. The input is never modified.
type Transform func(models.Payload) (models.Payload, bool)

// ForceDraft replaces a present "status" field with [DraftStatus]. Payloads
// without a status are returned untouched.
func ForceDraft(p models.Payload) (models.Payload, bool) {
	status, ok := p.Status()
	if !ok {
		return p, false
	}
	if s, isString := status.(string); isString && s == DraftStatus {
		return p, false
	}

	out := p.Clone()
	out[models.FieldStatus] = DraftStatus
	return out, true
}

// Rewrite describes one applied transform, for logging.
type Rewrite struct {
	Table    string
	Previous any
}

// SafetyGuard keeps financial documents from reaching the remote store in a
// final state through the offline write path. It is applied at enqueue time
// and again before every replay.
type SafetyGuard struct {
	rules map[string]Transform
}

// NewSafetyGuard returns a guard over the given policy table. A nil table
// selects [DefaultSafetyRules].
func NewSafetyGuard(rules map[string]Transform) *SafetyGuard {
	if rules == nil {
		rules = DefaultSafetyRules()
	}
	return &SafetyGuard{rules: rules}
}

// DefaultSafetyRules returns the finality-sensitive tables and their
// transforms.
func DefaultSafetyRules() map[string]Transform {
	return map[string]Transform{
		"invoices":        ForceDraft,
		"journal_entries": ForceDraft,
		"payments":        ForceDraft,
	}
}

// Sensitive reports whether table has a rule.
func (g *SafetyGuard) Sensitive(table string) bool {
	_, ok := g.rules[table]
	return ok
}

// Apply runs the rule registered for table, if any. The returned Rewrite is
// nil when the payload was left as is.
func (g *SafetyGuard) Apply(table string, payload models.Payload) (models.Payload, *Rewrite) {
	rule, ok := g.rules[table]
	if !ok {
		return payload, nil
	}

	previous, _ := payload.Status()
	out, changed := rule(payload)
	if !changed {
		return payload, nil
	}
	return out, &Rewrite{Table: table, Previous: previous}
}
