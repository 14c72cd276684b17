package policy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-presenter/internal/naming"
)

var (
	// ErrConflict is returned when allow and deny lists are both configured.
	ErrConflict = errors.New("policy: allow and deny lists are mutually exclusive")
	// ErrEmptyList is returned when Allow or Deny receive no member names.
	ErrEmptyList = errors.New("policy: at least one member name is required")
)

// Mode reports which list drives a Policy.
type Mode int

const (
	// ModeDeny forwards everything except the denied members.
	ModeDeny Mode = iota
	// ModeAllow forwards only the allowed members.
	ModeAllow
)

func (m Mode) String() string {
	switch m {
	case ModeAllow:
		return "allow"
	default:
		return "deny"
	}
}

var forcedProxy = []string{"ID", "ToParam"}

var defaultDenied = []string{
	"Error",
	"Format",
	"GoString",
	"MarshalJSON",
	"MarshalText",
	"MarshalYAML",
	"MethodMissing",
	"String",
	"UnmarshalJSON",
	"UnmarshalText",
	"UnmarshalYAML",
}

// Forced returns the members that are always forwarded.
func Forced() []string {
	return append([]string(nil), forcedProxy...)
}

// DefaultDenied returns the default deny set.
func DefaultDenied() []string {
	return append([]string(nil), defaultDenied...)
}

// Policy is the forwarding configuration of one presenter definition. It is
// written at definition time and read on every call; callers that mutate a
// shared Policy after publishing it must synchronise themselves.
type Policy struct {
	allow      map[string]struct{}
	deny       map[string]struct{}
	customDeny bool
}

// New returns a deny-mode policy holding the default deny set.
func New() *Policy {
	p := &Policy{deny: make(map[string]struct{}, len(defaultDenied))}
	for _, name := range defaultDenied {
		p.deny[name] = struct{}{}
	}
	return p
}

// Allow switches the policy to allow mode and adds names to the allow set.
// Repeated calls accumulate.
func (p *Policy) Allow(names ...string) error {
	canonical := naming.ExportAll(names)
	if len(canonical) == 0 {
		return fmt.Errorf("allow: %w", ErrEmptyList)
	}
	if p.customDeny {
		return fmt.Errorf("allow %v: %w", canonical, ErrConflict)
	}
	if p.allow == nil {
		p.allow = make(map[string]struct{}, len(canonical))
	}
	for _, name := range canonical {
		p.allow[name] = struct{}{}
	}
	return nil
}

// Deny adds names to the deny set. It fails once an allow set exists.
func (p *Policy) Deny(names ...string) error {
	canonical := naming.ExportAll(names)
	if len(canonical) == 0 {
		return fmt.Errorf("deny: %w", ErrEmptyList)
	}
	if len(p.allow) > 0 {
		return fmt.Errorf("deny %v: %w", canonical, ErrConflict)
	}
	if p.deny == nil {
		p.deny = make(map[string]struct{}, len(canonical))
	}
	for _, name := range canonical {
		p.deny[name] = struct{}{}
	}
	p.customDeny = true
	return nil
}

// Allows reports whether a call to name may be forwarded to the model.
func (p *Policy) Allows(name string) bool {
	name = naming.Export(name)
	if IsForced(name) {
		return true
	}
	_, denied := p.deny[name]
	hasAllow := len(p.allow) > 0
	_, listed := p.allow[name]
	allowed := (!hasAllow && !denied) || (hasAllow && listed)
	return allowed && !denied
}

// IsForced reports whether name belongs to the forced proxy set.
func IsForced(name string) bool {
	name = naming.Export(name)
	for _, forced := range forcedProxy {
		if forced == name {
			return true
		}
	}
	return false
}

// Mode returns the active mode.
func (p *Policy) Mode() Mode {
	if len(p.allow) > 0 {
		return ModeAllow
	}
	return ModeDeny
}

// Allowed lists the allow set, sorted.
func (p *Policy) Allowed() []string { return sortedKeys(p.allow) }

// Denied lists the deny set, sorted.
func (p *Policy) Denied() []string { return sortedKeys(p.deny) }

// Customized reports whether Allow or Deny has been called.
func (p *Policy) Customized() bool {
	return p.customDeny || len(p.allow) > 0
}

// Clone returns an independent copy, used when definitions inherit a policy.
func (p *Policy) Clone() *Policy {
	out := &Policy{customDeny: p.customDeny}
	if p.allow != nil {
		out.allow = make(map[string]struct{}, len(p.allow))
		for name := range p.allow {
			out.allow[name] = struct{}{}
		}
	}
	if p.deny != nil {
		out.deny = make(map[string]struct{}, len(p.deny))
		for name := range p.deny {
			out.deny[name] = struct{}{}
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
