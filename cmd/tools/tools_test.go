package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/lychee-technology/nilability"
	"github.com/lychee-technology/nilability/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestValidateDocuments(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "post.json", `{"name": "Post", "relationships": [{"name": "author", "cardinality": "belongs_to"}]}`)

	var out bytes.Buffer
	require.NoError(t, validateDocuments(context.Background(), internal.NewFileRecordSource(dir), &out))
	assert.Contains(t, out.String(), "ok   ")
	assert.Contains(t, out.String(), "Post: 1 relationships")

	writeDoc(t, dir, "broken.json", `{"name": "Broken", "relationships": [{"name": "x", "cardinality": "sideways"}]}`)
	writeDoc(t, dir, "zpost.json", `{"name": "Post"}`)
	out.Reset()
	err := validateDocuments(context.Background(), internal.NewFileRecordSource(dir), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3")
	assert.Equal(t, 2, strings.Count(out.String(), "FAIL"))
}

func TestBuildBundle(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "post.json", "{\n  \"name\": \"Post\"\n}")
	writeDoc(t, dir, "author.json", `{"name": "Author", "columns": {"id": {"nullable": false}}}`)

	data, count, err := buildBundle(context.Background(), internal.NewFileRecordSource(dir))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var bundle nilability.SnapshotBundle
	require.NoError(t, json.Unmarshal(data, &bundle))
	require.Len(t, bundle.Records, 2)
	assert.JSONEq(t, `{"name": "Author", "columns": {"id": {"nullable": false}}}`, string(bundle.Records[0]))
	assert.Equal(t, `{"name":"Post"}`, string(bundle.Records[1]))

	writeDoc(t, dir, "again.json", `{"name": "Post"}`)
	_, _, err = buildBundle(context.Background(), internal.NewFileRecordSource(dir))
	assert.Error(t, err)
}

func TestIntrospect_DuckDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "shop.duckdb")
	db, err := sql.Open("duckdb", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE line_items (id BIGINT NOT NULL, order_id BIGINT NOT NULL, note TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE categories (id BIGINT NOT NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	source, err := internal.NewDuckDBColumnSource(nilability.DuckDBConfig{DBPath: dbPath, QueryTimeout: 5 * time.Second})
	require.NoError(t, err)
	defer source.Close()

	outDir := filepath.Join(t.TempDir(), "records")
	written, err := introspect(context.Background(), source, nil, outDir, false)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	raw, err := os.ReadFile(filepath.Join(outDir, "line_items.json"))
	require.NoError(t, err)
	def, err := internal.ParseRecordDocument(internal.RawDocument{Source: "line_items.json", Data: raw}, true)
	require.NoError(t, err)
	assert.Equal(t, "LineItem", def.RecordName)
	assert.Equal(t, "line_items", def.Table)
	assert.False(t, def.ColumnMap["order_id"].Nullable)
	assert.True(t, def.ColumnMap["note"].Nullable)

	written, err = introspect(context.Background(), source, []string{"categories"}, outDir, false)
	require.NoError(t, err)
	assert.Equal(t, 0, written)
}

func TestRecordNameForTable(t *testing.T) {
	assert.Equal(t, "BlogPost", recordNameForTable("blog_posts"))
	assert.Equal(t, "Category", recordNameForTable("categories"))
	assert.Equal(t, "Address", recordNameForTable("address"))
	assert.Equal(t, "Person", recordNameForTable("person"))
	assert.Equal(t, "Address", recordNameForTable("addresses"))
	assert.Equal(t, "Status", recordNameForTable("statuses"))
	assert.Equal(t, "Status", recordNameForTable("status"))
	assert.Equal(t, "Box", recordNameForTable("boxes"))
	assert.Equal(t, "Batch", recordNameForTable("batches"))
	assert.Equal(t, "Wish", recordNameForTable("wishes"))
	assert.Equal(t, "Page", recordNameForTable("pages"))
	assert.Equal(t, "Price", recordNameForTable("prices"))
	assert.Equal(t, "People", recordNameForTable("people"))
	assert.Equal(t, "House", recordNameForTable("houses"))
	assert.Equal(t, "Bonus", recordNameForTable("bonuses"))
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "post.json", `{"name": "Post", "columns": {"title": {"nullable": true}}}`)

	opts := inspectOptions{schemaDir: dir, columnTypes: "untyped"}
	config, err := opts.config()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, inspect(context.Background(), config, "", &out))

	var report nilability.RecordReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "Post", report.Record)
	require.Len(t, report.Attributes, 1)
	assert.Equal(t, nilability.SignatureUntyped, report.Attributes[0].Signature)

	err = inspect(context.Background(), config, "Missing", &out)
	assert.True(t, nilability.IsRecordNotFoundError(err))
}
