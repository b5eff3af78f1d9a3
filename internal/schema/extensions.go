package schema

import (
	"fmt"
	"strings"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

// EnumItems returns the documented enum values of a schema, falling back to the plain enum list.
func EnumItems(s *domain.Schema) []domain.EnumItem {
	if s == nil {
		return nil
	}
	if s.XEnum == nil {
		items := make([]domain.EnumItem, 0, len(s.Enum))
		for _, v := range s.Enum {
			items = append(items, domain.EnumItem{Value: v})
		}
		return items
	}
	items := make([]domain.EnumItem, 0, len(s.XEnum.Items))
	for _, item := range s.XEnum.Items {
		if isBlank(item.Value) {
			continue
		}
		items = append(items, item)
	}
	return items
}

// FormatEnumDescription renders the x-nextdoc4j-enum items as "value - description, ...".
func FormatEnumDescription(s *domain.Schema) string {
	if s == nil || s.XEnum == nil {
		return ""
	}
	parts := make([]string, 0, len(s.XEnum.Items))
	for _, item := range EnumItems(s) {
		if item.Description != "" {
			parts = append(parts, fmt.Sprintf("%v - %s", item.Value, item.Description))
			continue
		}
		parts = append(parts, fmt.Sprint(item.Value))
	}
	return strings.Join(parts, ", ")
}

// Describe combines a schema description with its enum documentation.
func Describe(s *domain.Schema) string {
	if s == nil {
		return ""
	}
	enumDesc := FormatEnumDescription(s)
	switch {
	case enumDesc == "":
		return s.Description
	case s.Description == "":
		return enumDesc
	default:
		return s.Description + " (" + enumDesc + ")"
	}
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// HasSecurityRequirement reports whether an operation declares roles or permissions.
func HasSecurityRequirement(op *domain.Operation) bool {
	if op == nil || op.XSecurity == nil || op.XSecurity.Ignore {
		return false
	}
	return len(op.XSecurity.Roles) > 0 || len(op.XSecurity.Permissions) > 0
}

// SecuritySummary counts the roles and permissions an operation requires.
func SecuritySummary(op *domain.Operation) string {
	if !HasSecurityRequirement(op) {
		return "No permission required"
	}
	var parts []string
	if n := countValues(op.XSecurity.Roles); n > 0 {
		parts = append(parts, fmt.Sprintf("%d role(s)", n))
	}
	if n := countValues(op.XSecurity.Permissions); n > 0 {
		parts = append(parts, fmt.Sprintf("%d permission(s)", n))
	}
	if len(parts) == 0 {
		return "No permission required"
	}
	return strings.Join(parts, " / ")
}

// SecurityDetails describes each role and permission assertion of an operation.
func SecurityDetails(op *domain.Operation) []string {
	if !HasSecurityRequirement(op) {
		return nil
	}
	var lines []string
	for _, r := range op.XSecurity.Roles {
		lines = append(lines, describeAuth("roles", r))
	}
	for _, p := range op.XSecurity.Permissions {
		lines = append(lines, describeAuth("permissions", p))
	}
	return lines
}

func describeAuth(kind string, a domain.AuthInfo) string {
	line := fmt.Sprintf("%s %s: %s", kind, strings.ToUpper(defaultMode(a.Mode)), strings.Join(a.Values, ", "))
	if len(a.OrValues) > 0 {
		line += fmt.Sprintf(" or %s: %s", a.OrType, strings.Join(a.OrValues, ", "))
	}
	return line
}

func defaultMode(mode string) string {
	if mode == "" {
		return "AND"
	}
	return mode
}

func countValues(infos []domain.AuthInfo) int {
	n := 0
	for _, i := range infos {
		n += len(i.Values)
	}
	return n
}
