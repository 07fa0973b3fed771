package graph

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies one of the four node variants.
type Kind string

const (
	KindStart     Kind = "StartNode"
	KindMessage   Kind = "MessageNode"
	KindCondition Kind = "ConditionNode"
	KindEnd       Kind = "EndNode"
)

// Attribute names.
const (
	AttrStatus    = "status"
	AttrMessage   = "message"
	AttrCondition = "condition"
)

// requiredAttributes is the closed attribute schema per kind, sorted by name.
var requiredAttributes = map[Kind][]string{
	KindStart:     nil,
	KindEnd:       nil,
	KindMessage:   {AttrMessage, AttrStatus},
	KindCondition: {AttrCondition},
}

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSpace(s))
	if _, ok := requiredAttributes[k]; !ok {
		return "", fmt.Errorf("unknown node kind %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := requiredAttributes[k]
	return ok
}

// RequiredAttributes returns the attribute names a node of kind k must carry.
func (k Kind) RequiredAttributes() []string {
	return slices.Clone(requiredAttributes[k])
}

// Attributes holds the kind-specific node attributes. A nil field is absent;
// a non-nil pointer to an empty string is present.
type Attributes struct {
	Status    *string
	Message   *string
	Condition *string
}

// MessageAttributes returns the attribute set of a message node.
func MessageAttributes(status, message string) Attributes {
	return Attributes{Status: &status, Message: &message}
}

// ConditionAttributes returns the attribute set of a condition node.
func ConditionAttributes(condition string) Attributes {
	return Attributes{Condition: &condition}
}

// Names returns the names of the present attributes, sorted.
func (a Attributes) Names() []string {
	var names []string
	if a.Condition != nil {
		names = append(names, AttrCondition)
	}
	if a.Message != nil {
		names = append(names, AttrMessage)
	}
	if a.Status != nil {
		names = append(names, AttrStatus)
	}
	return names
}

// Node is a workflow step inside a Graph.
type Node struct {
	ID         int64
	Name       string
	Kind       Kind
	Attributes Attributes
}

// Condition returns the node's condition expression, or "" for other kinds.
func (n *Node) Condition() string {
	if n.Attributes.Condition == nil {
		return ""
	}
	return *n.Attributes.Condition
}

// CheckAttributes reports the first difference between the present
// attributes and the required set of kind.
func CheckAttributes(kind Kind, attrs Attributes) error {
	required, ok := requiredAttributes[kind]
	if !ok {
		return fmt.Errorf("unknown node kind %q", kind)
	}

	present := attrs.Names()
	for _, name := range required {
		if !slices.Contains(present, name) {
			return fmt.Errorf("%s requires attribute %q", kind, name)
		}
	}
	for _, name := range present {
		if !slices.Contains(required, name) {
			return fmt.Errorf("%s does not accept attribute %q", kind, name)
		}
	}
	return nil
}
