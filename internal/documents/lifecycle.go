// Package documents implements the maker-checker lifecycle of client documents:
//
//	Draft -> PendingReview -> Approved -> Signed
//	           |
//	           +--> Draft (reject)
//
// Signed is terminal. The Manager is the only enforcement point; callers such
// as the HTTP API and the CLI may offer any transition and rely on it to refuse.
package documents

import (
	"fmt"
	"strings"
	"time"

	"github.com/celerix-dev/firmdesk/pkg/schema"
)

// Transition names a lifecycle operation.
type Transition string

const (
	Submit  Transition = "submit"
	Approve Transition = "approve"
	Reject  Transition = "reject"
	Sign    Transition = "sign"
)

// Transitions lists every operation in lifecycle order.
var Transitions = []Transition{Submit, Approve, Reject, Sign}

type edge struct {
	from schema.DocumentStatus
	to   schema.DocumentStatus
}

var edges = map[Transition]edge{
	Submit:  {from: schema.StatusDraft, to: schema.StatusPendingReview},
	Approve: {from: schema.StatusPendingReview, to: schema.StatusApproved},
	Reject:  {from: schema.StatusPendingReview, to: schema.StatusDraft},
	Sign:    {from: schema.StatusApproved, to: schema.StatusSigned},
}

// ParseTransition resolves a transition name, case-insensitively.
func ParseTransition(s string) (Transition, error) {
	t := Transition(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := edges[t]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownTransition, s)
	}
	return t, nil
}

// Target returns the status t leads to.
func (t Transition) Target() (schema.DocumentStatus, bool) {
	e, ok := edges[t]
	return e.to, ok
}

// Allowed reports whether t may be applied to a document in status from.
// An empty status is treated as Draft.
func Allowed(from schema.DocumentStatus, t Transition) bool {
	if from == "" {
		from = schema.StatusDraft
	}
	e, ok := edges[t]
	return ok && e.from == from
}

// Apply performs t on doc in place. On error doc is left unchanged.
// Sign stamps signer and now; every other edge only changes the status.
func Apply(doc *schema.ClientDocument, t Transition, signer string, now time.Time) error {
	from := doc.Status
	if from == "" {
		from = schema.StatusDraft
	}
	if !Allowed(from, t) {
		return &TransitionError{DocumentID: doc.ID, From: from, Transition: t}
	}
	if t == Sign {
		signer = strings.TrimSpace(signer)
		if signer == "" {
			return ErrSignerRequired
		}
		doc.SignedBy = signer
		doc.SignedAt = &now
	}
	doc.Status = edges[t].to
	return nil
}
