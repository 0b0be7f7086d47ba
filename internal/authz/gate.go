// Package authz decides which screens and actions a role may use. The
// backend remains the authority; the gate only hides what would be refused.
package authz

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"
)

// Actions checked by the client.
const (
	ActionRead    = "read"
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionApprove = "approve"
	ActionExport  = "export"
)

var (
	//go:embed model.conf
	modelText string
	//go:embed policy.csv
	policyText string
)

// Gate wraps a casbin enforcer loaded with the built-in role policy.
type Gate struct {
	mu       sync.RWMutex
	enforcer *casbin.Enforcer
	roles    map[string]bool
	log      *zap.Logger
}

// NewGate builds a gate from the embedded model and policy.
func NewGate(log *zap.Logger) (*Gate, error) {
	return NewGateFromPolicy(policyText, log)
}

// NewGateFromPolicy builds a gate from CSV policy lines ("p, sub, obj, act"
// and "g, role, parent").
func NewGateFromPolicy(policy string, log *zap.Logger) (*Gate, error) {
	if log == nil {
		log = zap.NewNop()
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: parsing model: %w", err)
	}
	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: creating enforcer: %w", err)
	}

	policies, groupings, err := parsePolicy(policy)
	if err != nil {
		return nil, err
	}
	if len(policies) > 0 {
		if _, err := enf.AddPolicies(policies); err != nil {
			return nil, fmt.Errorf("authz: loading policies: %w", err)
		}
	}
	if len(groupings) > 0 {
		if _, err := enf.AddGroupingPolicies(groupings); err != nil {
			return nil, fmt.Errorf("authz: loading role inheritance: %w", err)
		}
	}
	roles := map[string]bool{}
	for _, p := range policies {
		roles[NormalizeRole(p[0])] = true
	}
	for _, g := range groupings {
		roles[NormalizeRole(g[0])] = true
		roles[NormalizeRole(g[1])] = true
	}
	return &Gate{enforcer: enf, roles: roles, log: log.Named("authz")}, nil
}

// NormalizeRole maps a role claim such as "HR Manager" or "hr-manager" to
// the policy spelling "hr_manager".
func NormalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	return strings.Join(strings.FieldsFunc(role, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
}

func parsePolicy(text string) (policies, groupings [][]string, err error) {
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}
		switch {
		case fields[0] == "p" && len(fields) == 4:
			fields[1] = NormalizeRole(fields[1])
			policies = append(policies, fields[1:])
		case fields[0] == "g" && len(fields) == 3:
			fields[1], fields[2] = NormalizeRole(fields[1]), NormalizeRole(fields[2])
			groupings = append(groupings, fields[1:])
		default:
			return nil, nil, fmt.Errorf("authz: policy line %d: %q", i+1, line)
		}
	}
	return policies, groupings, nil
}

// Allowed reports whether role may perform action on resource. The role is
// compared case-insensitively with spaces and hyphens read as underscores.
// An empty role, as with tokens that carry no role claim, is not restricted.
// Neither is a role the policy does not name: the backend decides for it.
func (g *Gate) Allowed(role, resource, action string) bool {
	role = NormalizeRole(role)
	if role == "" {
		return true
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.roles[role] {
		g.log.Debug("role not in policy, not restricting", zap.String("role", role))
		return true
	}
	ok, err := g.enforcer.Enforce(role, resource, action)
	if err != nil {
		g.log.Warn("enforce failed", zap.String("role", role), zap.String("resource", resource), zap.Error(err))
		return false
	}
	return ok
}

// Check returns an error naming the denied permission.
func (g *Gate) Check(role, resource, action string) error {
	if g.Allowed(role, resource, action) {
		return nil
	}
	return &DeniedError{Role: role, Resource: resource, Action: action}
}

// DeniedError is returned by Check.
type DeniedError struct {
	Role, Resource, Action string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("role %q may not %s %s", e.Role, e.Action, e.Resource)
}
