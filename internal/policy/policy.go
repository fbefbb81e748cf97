// Package policy answers object-level capability checks for provider configs.
//
// The model is an ACL over policy subjects: a viewer's roles and granted
// permissions from the session token. Objects are "auth_provider_config:<kind>"
// and policy objects may end in "*".
package policy

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"warden.dev/warden/internal/domain"
)

// ObjectPrefix prefixes every provider config object.
const ObjectPrefix = "auth_provider_config"

// AnyAction grants every capability on matching objects.
const AnyAction = "*"

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// Rule is one policy line.
type Rule struct {
	Subject string
	Object  string
	Action  string
}

// DefaultRules grant the platform and auth admins full access and auth viewers read access.
func DefaultRules() []Rule {
	all := ObjectPrefix + ":*"
	return []Rule{
		{Subject: "platform:admin", Object: all, Action: AnyAction},
		{Subject: "auth:admin", Object: all, Action: AnyAction},
		{Subject: "auth_provider:manage", Object: all, Action: AnyAction},
		{Subject: "auth:viewer", Object: all, Action: string(domain.CapabilityView)},
	}
}

// ParseRule parses "subject, object, action".
func ParseRule(line string) (Rule, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return Rule{}, fmt.Errorf("policy rule %q: want \"subject, object, action\"", line)
	}
	r := Rule{
		Subject: strings.TrimSpace(parts[0]),
		Object:  strings.TrimSpace(parts[1]),
		Action:  strings.TrimSpace(parts[2]),
	}
	if r.Subject == "" || r.Object == "" || r.Action == "" {
		return Rule{}, fmt.Errorf("policy rule %q: empty field", line)
	}
	return r, nil
}

// Object returns the policy object of a provider class.
func Object(providerClass string) string {
	return ObjectPrefix + ":" + providerClass
}

// Enforcer checks viewer capabilities against a casbin ACL.
type Enforcer struct {
	e *casbin.SyncedEnforcer
}

// New builds an enforcer from the default rules plus extra configured lines.
func New(extra []string) (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("load policy model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	rules := DefaultRules()
	for _, line := range extra {
		r, err := ParseRule(line)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	for _, r := range rules {
		if _, err := e.AddPolicy(r.Subject, r.Object, r.Action); err != nil {
			return nil, fmt.Errorf("add policy %s %s %s: %w", r.Subject, r.Object, r.Action, err)
		}
	}
	return &Enforcer{e: e}, nil
}

// Can reports whether viewer holds every capability on object. Anonymous
// viewers hold none. Evaluation errors fail closed.
func (p *Enforcer) Can(viewer domain.Viewer, object string, caps ...domain.Capability) (bool, error) {
	if !viewer.IsAuthenticated() || len(caps) == 0 {
		return false, nil
	}
	for _, capability := range caps {
		allowed := false
		for _, sub := range viewer.Roles {
			ok, err := p.e.Enforce(sub, object, string(capability))
			if err != nil {
				return false, fmt.Errorf("enforce %s on %s: %w", capability, object, err)
			}
			if ok {
				allowed = true
				break
			}
		}
		if !allowed {
			return false, nil
		}
	}
	return true, nil
}
