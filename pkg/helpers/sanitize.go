package helpers

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicyOnce    sync.Once
	ugcPolicyValue   *bluemonday.Policy
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// Sanitize strips unsafe markup from user generated HTML.
func (h *Helpers) Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(h.sanitizer.Sanitize(trimmed))
}

// StripTags removes every tag and keeps the text content.
func (h *Helpers) StripTags(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(strictPolicy.Sanitize(trimmed))
}

func ugcPolicy() *bluemonday.Policy {
	ugcPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		ugcPolicyValue = policy
	})
	return ugcPolicyValue
}
