package rewrite

import (
	"github.com/wippyai/modcompat/cil"
	"github.com/wippyai/modcompat/errors"
)

// Accessor naming convention for properties: a property P compiles to the
// methods get_P and set_P.
const (
	GetterPrefix = "get_"
	SetterPrefix = "set_"
)

// GetterName returns the getter method name for property.
func GetterName(property string) string {
	return GetterPrefix + property
}

// SetterName returns the setter method name for property.
func SetterName(property string) string {
	return SetterPrefix + property
}

// AccessorName returns the accessor that replaces a field access of the
// given kind: loads map to the getter, stores to the setter.
func AccessorName(kind cil.AccessKind, property string) (string, error) {
	switch {
	case kind.IsLoad():
		return GetterName(property), nil
	case kind.IsStore():
		return SetterName(property), nil
	default:
		return "", errors.New(errors.PhaseRewrite, errors.KindUnsupported).
			Member(property).
			Detail("no accessor for %s access", kind).
			Build()
	}
}
