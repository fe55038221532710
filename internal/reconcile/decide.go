package reconcile

import "fmt"

// Action is the outcome kind of a decision.
type Action int

const (
	// ActionSkip leaves the document as it is.
	ActionSkip Action = iota
	// ActionKeep makes one equivalence class authoritative.
	ActionKeep
	// ActionDelete removes the document on every node.
	ActionDelete
	// ActionAsk defers to the operator.
	ActionAsk
)

func (a Action) String() string {
	switch a {
	case ActionKeep:
		return "keep"
	case ActionDelete:
		return "delete"
	case ActionAsk:
		return "ask"
	default:
		return "skip"
	}
}

// Decision is the outcome for one document. Class is meaningful only for
// ActionKeep and indexes the classes the decision was made from.
type Decision struct {
	Action Action
	Class  int
}

// Keep returns a decision to make class i authoritative.
func Keep(i int) Decision { return Decision{Action: ActionKeep, Class: i} }

// Delete returns a decision to delete the document.
func Delete() Decision { return Decision{Action: ActionDelete} }

// Skip returns a decision to leave the document unresolved.
func Skip() Decision { return Decision{Action: ActionSkip} }

// Ask returns a decision deferring to the operator.
func Ask() Decision { return Decision{Action: ActionAsk} }

func (d Decision) String() string {
	if d.Action == ActionKeep {
		return fmt.Sprintf("keep(%d)", d.Class)
	}
	return d.Action.String()
}

// Decide applies strategy s to classes, which must be ordered as Classes
// returns them. The result is ActionAsk only when nothing resolved the
// document and the fallback is ask (or s is nil).
func Decide(classes []Class, s *Strategy) Decision {
	if d, ok := decideByRule(classes, s); ok {
		return d
	}
	if s == nil || s.Fallback == FallbackAsk {
		return Ask()
	}
	return Skip()
}

func decideByRule(classes []Class, s *Strategy) (Decision, bool) {
	if s == nil || len(classes) == 0 {
		return Decision{}, false
	}
	n := Total(classes)
	top := classes[0]

	// A majority blocks the plurality and tie paths even when the rules
	// refuse to act on it.
	if 2*top.Count > n {
		if top.IsMissing() {
			if s.Delete.coversMajority() {
				return Delete(), true
			}
		} else if s.Keep.coversMajority() {
			return Keep(0), true
		}
		return Decision{}, false
	}

	if top.Count > classes[1].Count {
		if top.IsMissing() {
			if s.Delete == RulePlurality {
				return Delete(), true
			}
		} else if s.Keep == RulePlurality {
			return Keep(0), true
		}
		return Decision{}, false
	}

	// Tied for the lead. Only two cases resolve:
	//   exactly one tied delete, delete=plurality, keep is majority or never;
	//   exactly one tied keep, keep=plurality, delete is majority or never.
	keepTied, deleteTied, keepIndex := 0, 0, -1
	for i, c := range classes {
		if c.Count != top.Count {
			break
		}
		if c.IsMissing() {
			deleteTied++
		} else {
			keepTied++
			if keepIndex < 0 {
				keepIndex = i
			}
		}
	}
	if deleteTied == 1 && s.Delete == RulePlurality && s.Keep != RulePlurality {
		return Delete(), true
	}
	if keepTied == 1 && s.Keep == RulePlurality && s.Delete != RulePlurality {
		return Keep(keepIndex), true
	}
	return Decision{}, false
}
