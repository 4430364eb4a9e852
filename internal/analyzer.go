package internal

import (
	"context"
	"sort"

	"github.com/lychee-technology/nilability"
	"go.uber.org/zap"
)

// validatedFieldLister is implemented by records that can enumerate fields carrying rules.
type validatedFieldLister interface {
	ValidatedFields() []string
}

type recordAnalyzer struct {
	registry   nilability.RecordRegistry
	engine     nilability.Engine
	schema     *SchemaConstraintInspector
	columnOpt  nilability.ColumnTypeOption
	assocOpt   nilability.AssociationTypeOption
	snapshotID string
}

var _ nilability.RecordAnalyzer = (*recordAnalyzer)(nil)

// NewRecordAnalyzer reports every attribute and relationship of registry records through engine.
func NewRecordAnalyzer(
	registry nilability.RecordRegistry,
	engine nilability.Engine,
	columnOpt nilability.ColumnTypeOption,
	assocOpt nilability.AssociationTypeOption,
	snapshotID string,
) nilability.RecordAnalyzer {
	return &recordAnalyzer{
		registry:   registry,
		engine:     engine,
		schema:     NewSchemaConstraintInspector(nil),
		columnOpt:  columnOpt,
		assocOpt:   assocOpt,
		snapshotID: snapshotID,
	}
}

func (a *recordAnalyzer) Analyze(ctx context.Context, name string) (*nilability.RecordReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	record, err := a.registry.GetRecord(name)
	if err != nil {
		return nil, err
	}
	reflections, err := a.registry.Relationships(name)
	if err != nil {
		return nil, err
	}

	report := &nilability.RecordReport{
		Record:        name,
		SnapshotID:    a.snapshotID,
		Attributes:    make([]nilability.AttributeReport, 0),
		Relationships: make([]nilability.RelationshipReport, 0, len(reflections)),
	}

	for _, field := range attributeNames(record) {
		decision := a.engine.ExplainAttribute(record, field, field)
		EmitDecision(ctx, "attribute", decision.Rule, decision.Result)
		report.Attributes = append(report.Attributes, nilability.AttributeReport{
			Name:      field,
			Column:    field,
			Virtual:   a.schema.IsVirtual(record, field),
			Nilable:   decision.Result,
			Rule:      decision.Rule,
			Signature: a.attributeSignature(decision.Result),
		})
	}

	for _, reflection := range reflections {
		decision := a.engine.ExplainRelationship(reflection)
		EmitDecision(ctx, "relationship", decision.Rule, decision.Result)
		toOne := reflection.Cardinality.IsToOne()
		report.Relationships = append(report.Relationships, nilability.RelationshipReport{
			Name:             reflection.Name,
			Cardinality:      reflection.Cardinality,
			ClassName:        reflection.ClassName,
			Required:         decision.Result,
			Rule:             decision.Rule,
			Signature:        a.relationshipSignature(toOne, decision.Result),
			SupportsBuilders: toOne && !reflection.Polymorphic,
		})
	}

	zap.S().Debugw("Analyzed record", "record", name, "attributes", len(report.Attributes), "relationships", len(report.Relationships))
	return report, nil
}

func (a *recordAnalyzer) attributeSignature(nilable bool) string {
	switch {
	case a.columnOpt.Untyped():
		return nilability.SignatureUntyped
	case a.columnOpt.Nilable(), nilable:
		return nilability.SignatureOptional
	default:
		return nilability.SignatureRequired
	}
}

func (a *recordAnalyzer) relationshipSignature(toOne, required bool) string {
	if !toOne {
		return nilability.SignatureCollection
	}
	if a.assocOpt.Persisted() && required {
		return nilability.SignatureRequired
	}
	return nilability.SignatureOptional
}

// attributeNames is the sorted union of column names and validated fields.
func attributeNames(record nilability.RecordClass) []string {
	seen := make(map[string]struct{})
	if cols, err := record.Columns(); err == nil {
		for name := range cols {
			seen[name] = struct{}{}
		}
	}
	if lister, ok := record.(validatedFieldLister); ok {
		for _, name := range lister.ValidatedFields() {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
