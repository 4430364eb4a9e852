package internal

import (
	"testing"

	"github.com/lychee-technology/nilability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReflectionIndex(t *testing.T) {
	post := newPostRecord()
	author := &nilability.RecordDefinition{RecordName: "Author"}
	author.Relationships = []nilability.RelationshipReflection{
		{Cardinality: nilability.CardinalityToMany, Name: "posts", ClassName: "Post", Owner: author},
		{Cardinality: nilability.CardinalityOwningToOne, Name: "avatar", ClassName: "Attachment", Polymorphic: true, Owner: author},
	}

	idx := NewReflectionIndex([]*nilability.RecordDefinition{post, author, nil})

	assert.Len(t, idx.Reflections("Post"), 4)
	assert.Empty(t, idx.Reflections("Missing"))

	rel, ok := idx.Reflect("Post", "author")
	require.True(t, ok)
	assert.Equal(t, "Author", rel.ClassName)
	_, ok = idx.Reflect("Post", "missing")
	assert.False(t, ok)

	known := map[string]struct{}{"Post": {}, "Author": {}}
	assert.Equal(t, []string{"Post.blog -> Blog", "Post.comments -> Comment"}, idx.DanglingTargets(known))
}
