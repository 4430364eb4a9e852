package internal

import (
	"testing"

	"github.com/lychee-technology/nilability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postDocument = `{
  "name": "Post",
  "table": "posts",
  "columns": {
    "id": {"nullable": false},
    "author_id": {"nullable": false},
    "title": {"nullable": true}
  },
  "validations": {
    "title": [{"kind": "presence"}],
    "subject": [{"kind": "Presence", "conditions": ["if"]}],
    "slug": [{"kind": "uniqueness"}]
  },
  "relationships": [
    {"name": "author", "cardinality": "belongs_to", "className": "Author"},
    {"name": "blog", "cardinality": "belongs_to", "className": "Blog", "optional": true},
    {"name": "cover", "cardinality": "has_one", "className": "Image", "required": true},
    {"name": "comments", "cardinality": "has_many", "className": "Comment"},
    {"name": "attachable", "cardinality": "belongs_to", "polymorphic": true, "foreignKey": "attachable_ref"}
  ]
}`

func TestParseRecordDocument(t *testing.T) {
	def, err := ParseRecordDocument(RawDocument{Source: "post.json", Data: []byte(postDocument)}, true)
	require.NoError(t, err)

	assert.Equal(t, "Post", def.Name())
	assert.Equal(t, "posts", def.Table)
	assert.True(t, def.RelationshipsRequiredByDefault())

	cols, err := def.Columns()
	require.NoError(t, err)
	assert.Equal(t, nilability.ColumnMetadata{Nullable: false}, cols["author_id"])
	assert.Equal(t, []string{"author_id", "id", "title"}, def.ColumnNames())

	assert.Equal(t, []string{"slug", "subject", "title"}, def.ValidatedFields())
	require.Len(t, def.ValidatorsOn("title"), 1)
	assert.True(t, def.ValidatorsOn("title")[0].Unconditional())
	subject := def.ValidatorsOn("subject")[0]
	assert.Equal(t, nilability.RuleKindPresence, subject.Kind)
	assert.True(t, subject.Conditions.Has(nilability.ConditionIf))
	assert.Equal(t, nilability.RuleKindOther, def.ValidatorsOn("slug")[0].Kind)

	require.Len(t, def.Relationships, 5)
	author := def.Relationships[0]
	assert.Equal(t, nilability.CardinalityOwningToOne, author.Cardinality)
	assert.Equal(t, "author_id", author.ForeignKey)
	assert.Nil(t, author.ExplicitRequired)
	assert.Nil(t, author.OptionalFlag)
	assert.Same(t, def, author.Owner)

	blog := def.Relationships[1]
	require.NotNil(t, blog.OptionalFlag)
	assert.True(t, *blog.OptionalFlag)

	cover := def.Relationships[2]
	assert.Equal(t, nilability.CardinalityOwnedToOne, cover.Cardinality)
	assert.Equal(t, "post_id", cover.ForeignKey)
	require.NotNil(t, cover.ExplicitRequired)
	assert.True(t, *cover.ExplicitRequired)

	assert.Equal(t, nilability.CardinalityToMany, def.Relationships[3].Cardinality)
	assert.Equal(t, "post_id", def.Relationships[3].ForeignKey)

	attachable := def.Relationships[4]
	assert.True(t, attachable.Polymorphic)
	assert.Equal(t, "attachable_ref", attachable.ForeignKey)
}

func TestParseRecordDocument_Defaults(t *testing.T) {
	t.Run("table and columns", func(t *testing.T) {
		def, err := ParseRecordDocument(RawDocument{Source: "draft.json", Data: []byte(`{"name": "Draft"}`)}, false)
		require.NoError(t, err)
		assert.Equal(t, "draft", def.Table)
		assert.False(t, def.RelationshipsRequiredByDefault())

		_, err = def.Columns()
		assert.True(t, nilability.IsColumnsUnavailableError(err))
	})

	t.Run("document overrides config default", func(t *testing.T) {
		def, err := ParseRecordDocument(RawDocument{Source: "legacy.json", Data: []byte(`{"name": "Legacy", "relationshipsRequiredByDefault": false}`)}, true)
		require.NoError(t, err)
		assert.False(t, def.RelationshipsRequiredByDefault())
	})

	t.Run("empty columns object is available", func(t *testing.T) {
		def, err := ParseRecordDocument(RawDocument{Source: "empty.json", Data: []byte(`{"name": "Empty", "columns": {}}`)}, true)
		require.NoError(t, err)
		cols, err := def.Columns()
		require.NoError(t, err)
		assert.Empty(t, cols)
	})
}

func TestParseRecordDocument_CamelCaseNames(t *testing.T) {
	data := []byte(`{
  "name": "BlogPost",
  "columns": {"id": {"nullable": false}, "blog_post_id": {"nullable": false}},
  "relationships": [
    {"name": "cover", "cardinality": "has_one"},
    {"name": "head_editor", "cardinality": "belongs_to"}
  ]
}`)
	def, err := ParseRecordDocument(RawDocument{Source: "blog_post.json", Data: data}, true)
	require.NoError(t, err)

	assert.Equal(t, "blog_post", def.Table)
	assert.Equal(t, "blog_post_id", def.Relationships[0].ForeignKey)
	assert.Equal(t, "head_editor_id", def.Relationships[1].ForeignKey)

	decision := newTestRelationshipResolver(true).Explain(def.Relationships[0])
	assert.True(t, decision.Result)
	assert.Equal(t, RuleNonNullForeignKey, decision.Rule)
}

func TestUnderscore(t *testing.T) {
	tests := map[string]string{
		"Post":          "post",
		"BlogPost":      "blog_post",
		"HTMLPage":      "html_page",
		"APIKey":        "api_key",
		"Version2Doc":   "version2_doc",
		"already_snake": "already_snake",
	}
	for in, want := range tests {
		assert.Equal(t, want, underscore(in), in)
	}
}

func TestParseRecordDocument_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "invalid json", data: `{"name":`},
		{name: "missing name", data: `{"table": "posts"}`},
		{name: "nullable not boolean", data: `{"name": "Post", "columns": {"id": {"nullable": "no"}}}`},
		{name: "unknown condition", data: `{"name": "Post", "validations": {"title": [{"kind": "presence", "conditions": ["when"]}]}}`},
		{name: "unknown cardinality", data: `{"name": "Post", "relationships": [{"name": "tags", "cardinality": "many_to_many"}]}`},
		{name: "duplicate relationship", data: `{"name": "Post", "relationships": [{"name": "author", "cardinality": "belongs_to"}, {"name": "author", "cardinality": "has_one"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecordDocument(RawDocument{Source: tt.name + ".json", Data: []byte(tt.data)}, true)
			require.Error(t, err)
			assert.True(t, nilability.IsMalformedMetadataError(err), "got %v", err)
		})
	}
}
