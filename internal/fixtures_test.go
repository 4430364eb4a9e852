package internal

import (
	"errors"

	"github.com/lychee-technology/nilability"
)

// newPostRecord mirrors a typical blog post table:
//
//	author_id  NOT NULL
//	blog_id    NULL, presence-validated
//	editor_id  NULL
//	title      NULL, presence-validated
//	subject    NULL, presence-validated only "if" a condition holds
//	body       NULL
//
// plus a virtual "summary" attribute with an unconditional presence rule.
func newPostRecord() *nilability.RecordDefinition {
	post := &nilability.RecordDefinition{
		RecordName:        "Post",
		Table:             "posts",
		RequiredByDefault: true,
		ColumnMap: map[string]nilability.ColumnMetadata{
			"id":        {Nullable: false},
			"author_id": {Nullable: false},
			"blog_id":   {Nullable: true},
			"editor_id": {Nullable: true},
			"title":     {Nullable: true},
			"subject":   {Nullable: true},
			"body":      {Nullable: true},
		},
		Validations: map[string][]nilability.ValidationRule{
			"title":   {nilability.PresenceRule()},
			"subject": {nilability.PresenceRule(nilability.ConditionIf)},
			"blog_id": {nilability.PresenceRule()},
			"summary": {{Kind: nilability.RuleKindOther}, nilability.PresenceRule()},
		},
	}
	post.Relationships = []nilability.RelationshipReflection{
		{Cardinality: nilability.CardinalityOwningToOne, Name: "author", ForeignKey: "author_id", ClassName: "Author", Owner: post},
		{Cardinality: nilability.CardinalityOwningToOne, Name: "blog", ForeignKey: "blog_id", ClassName: "Blog", Owner: post},
		{Cardinality: nilability.CardinalityOwningToOne, Name: "editor", ForeignKey: "editor_id", ClassName: "Author", Owner: post},
		{Cardinality: nilability.CardinalityToMany, Name: "comments", ForeignKey: "post_id", ClassName: "Comment", Owner: post},
	}
	return post
}

// panickingRecord panics from every method.
type panickingRecord struct{}

func (panickingRecord) Name() string { panic("name exploded") }

func (panickingRecord) Columns() (map[string]nilability.ColumnMetadata, error) {
	panic("columns exploded")
}

func (panickingRecord) RelationshipsRequiredByDefault() bool { panic("default exploded") }

func (panickingRecord) ValidatorsOn(string) []nilability.ValidationRule { panic("validators exploded") }

// failingRecord reports its columns as unavailable through an error.
type failingRecord struct {
	requiredByDefault bool
}

func (failingRecord) Name() string { return "Failing" }

func (failingRecord) Columns() (map[string]nilability.ColumnMetadata, error) {
	return nil, errors.New("connection refused")
}

func (f failingRecord) RelationshipsRequiredByDefault() bool { return f.requiredByDefault }
