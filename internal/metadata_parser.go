package internal

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/lychee-technology/nilability"
)

// RawDocument is an undecoded record document together with where it came from.
type RawDocument struct {
	Source string
	Data   []byte
}

// parseDefaults carries config-level fallbacks applied while parsing.
type parseDefaults struct {
	relationshipsRequiredByDefault bool
}

// ParseRecordDocument validates raw against the record document schema and
// converts it into a RecordDefinition. The source argument is used for readable errors.
func ParseRecordDocument(raw RawDocument, requiredByDefault bool) (*nilability.RecordDefinition, error) {
	return parseRecordDocument(raw, parseDefaults{relationshipsRequiredByDefault: requiredByDefault})
}

func parseRecordDocument(raw RawDocument, defaults parseDefaults) (*nilability.RecordDefinition, error) {
	var instance any
	if err := json.Unmarshal(raw.Data, &instance); err != nil {
		return nil, nilability.NewMalformedMetadataError(raw.Source, "invalid JSON", err)
	}
	if err := validateRecordDocument(instance); err != nil {
		return nil, nilability.NewMalformedMetadataError(raw.Source, "document does not match the record schema", err)
	}

	var doc nilability.RecordDocument
	if err := json.Unmarshal(raw.Data, &doc); err != nil {
		return nil, nilability.NewMalformedMetadataError(raw.Source, "failed to decode record document", err)
	}

	return buildRecordDefinition(doc, raw.Source, defaults)
}

func buildRecordDefinition(doc nilability.RecordDocument, source string, defaults parseDefaults) (*nilability.RecordDefinition, error) {
	def := &nilability.RecordDefinition{
		RecordName:        doc.Name,
		Table:             doc.Table,
		RequiredByDefault: defaults.relationshipsRequiredByDefault,
		Validations:       make(map[string][]nilability.ValidationRule, len(doc.Validations)),
	}
	if def.Table == "" {
		def.Table = underscore(doc.Name)
	}
	if doc.RelationshipsRequiredByDefault != nil {
		def.RequiredByDefault = *doc.RelationshipsRequiredByDefault
	}

	// A missing "columns" key keeps ColumnMap nil: column metadata unavailable.
	if doc.Columns != nil {
		def.ColumnMap = make(map[string]nilability.ColumnMetadata, len(doc.Columns))
		for name, col := range doc.Columns {
			def.ColumnMap[name] = col
		}
	}

	for field, rules := range doc.Validations {
		parsed := make([]nilability.ValidationRule, 0, len(rules))
		for _, rule := range rules {
			vr, err := parseValidationRule(rule)
			if err != nil {
				return nil, nilability.NewMalformedMetadataError(source, err.Error(), nil).WithRecord(doc.Name).WithField(field)
			}
			parsed = append(parsed, vr)
		}
		def.Validations[field] = parsed
	}

	seen := make(map[string]struct{}, len(doc.Relationships))
	for _, rel := range doc.Relationships {
		if _, dup := seen[rel.Name]; dup {
			return nil, nilability.NewMalformedMetadataError(source, fmt.Sprintf("duplicate relationship %q", rel.Name), nil).WithRecord(doc.Name)
		}
		seen[rel.Name] = struct{}{}

		reflection, err := parseRelationship(rel, doc.Name)
		if err != nil {
			return nil, nilability.NewMalformedMetadataError(source, err.Error(), nil).WithRecord(doc.Name).WithField(rel.Name)
		}
		reflection.Owner = def
		def.Relationships = append(def.Relationships, reflection)
	}

	return def, nil
}

func parseValidationRule(rule nilability.ValidationDocument) (nilability.ValidationRule, error) {
	kind := nilability.RuleKindOther
	if strings.EqualFold(strings.TrimSpace(rule.Kind), string(nilability.RuleKindPresence)) {
		kind = nilability.RuleKindPresence
	}

	conditions := make([]nilability.ConditionKind, 0, len(rule.Conditions))
	for _, raw := range rule.Conditions {
		c, ok := nilability.ParseConditionKind(raw)
		if !ok {
			return nilability.ValidationRule{}, fmt.Errorf("unknown validation condition %q", raw)
		}
		conditions = append(conditions, c)
	}

	return nilability.ValidationRule{Kind: kind, Conditions: nilability.NewConditionSet(conditions...)}, nil
}

// parseRelationship applies the conventional foreign key when none is given:
// "<name>_id" on the owning side, "<owner in snake_case>_id" otherwise.
func parseRelationship(rel nilability.RelationshipDocument, owner string) (nilability.RelationshipReflection, error) {
	cardinality, ok := nilability.ParseCardinality(rel.Cardinality)
	if !ok {
		return nilability.RelationshipReflection{}, fmt.Errorf("unknown cardinality %q", rel.Cardinality)
	}

	foreignKey := rel.ForeignKey
	if foreignKey == "" {
		if cardinality == nilability.CardinalityOwningToOne {
			foreignKey = rel.Name + "_id"
		} else {
			foreignKey = underscore(owner) + "_id"
		}
	}

	return nilability.RelationshipReflection{
		Cardinality:      cardinality,
		Name:             rel.Name,
		ForeignKey:       foreignKey,
		ClassName:        rel.ClassName,
		ExplicitRequired: rel.Required,
		OptionalFlag:     rel.Optional,
		Polymorphic:      rel.Polymorphic,
	}, nil
}

// underscore converts a CamelCase record name to snake_case:
// "BlogPost" becomes "blog_post" and "HTMLPage" becomes "html_page".
func underscore(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
