package nilability

import "strings"

// Option keys understood by ParseAssociationTypeOption and ParseColumnTypeOption.
const (
	OptionKeyAssociationTypes = "ActiveRecordAssociationTypes"
	OptionKeyColumnTypes      = "ActiveRecordColumnTypes"
)

// AssociationTypeOption controls how a consumer types to-one relationship accessors.
type AssociationTypeOption string

const (
	// AssociationTypeNilable types every to-one accessor as optional.
	AssociationTypeNilable AssociationTypeOption = "nilable"
	// AssociationTypePersisted types required relationships as non-optional.
	AssociationTypePersisted AssociationTypeOption = "persisted"
)

func (o AssociationTypeOption) Persisted() bool { return o == AssociationTypePersisted }

func (o AssociationTypeOption) Nilable() bool { return o == AssociationTypeNilable }

// ParseAssociationTypeOption reads OptionKeyAssociationTypes from options.
// A missing value yields AssociationTypeNilable. An unknown value also yields
// the default, and onUnknown (if non-nil) is called with the rejected value.
func ParseAssociationTypeOption(options map[string]string, onUnknown func(value string, def AssociationTypeOption)) AssociationTypeOption {
	def := AssociationTypeNilable
	value, ok := options[OptionKeyAssociationTypes]
	if !ok || value == "" {
		return def
	}
	switch AssociationTypeOption(strings.ToLower(strings.TrimSpace(value))) {
	case AssociationTypeNilable:
		return AssociationTypeNilable
	case AssociationTypePersisted:
		return AssociationTypePersisted
	}
	if onUnknown != nil {
		onUnknown(value, def)
	}
	return def
}

// ColumnTypeOption controls how a consumer types attribute accessors.
type ColumnTypeOption string

const (
	// ColumnTypePersisted types attributes according to the nilability decision.
	ColumnTypePersisted ColumnTypeOption = "persisted"
	// ColumnTypeNilable types every attribute as optional.
	ColumnTypeNilable ColumnTypeOption = "nilable"
	// ColumnTypeUntyped leaves attributes untyped.
	ColumnTypeUntyped ColumnTypeOption = "untyped"
)

func (o ColumnTypeOption) Persisted() bool { return o == ColumnTypePersisted }

func (o ColumnTypeOption) Nilable() bool { return o == ColumnTypeNilable }

func (o ColumnTypeOption) Untyped() bool { return o == ColumnTypeUntyped }

// ParseColumnTypeOption reads OptionKeyColumnTypes from options, defaulting to ColumnTypePersisted.
func ParseColumnTypeOption(options map[string]string, onUnknown func(value string, def ColumnTypeOption)) ColumnTypeOption {
	def := ColumnTypePersisted
	value, ok := options[OptionKeyColumnTypes]
	if !ok || value == "" {
		return def
	}
	switch ColumnTypeOption(strings.ToLower(strings.TrimSpace(value))) {
	case ColumnTypePersisted:
		return ColumnTypePersisted
	case ColumnTypeNilable:
		return ColumnTypeNilable
	case ColumnTypeUntyped:
		return ColumnTypeUntyped
	}
	if onUnknown != nil {
		onUnknown(value, def)
	}
	return def
}
