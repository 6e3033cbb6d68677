package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModels(t *testing.T, dir, source string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ModelFileName), []byte(source), 0644))
}

func TestGenerate_TypeMapping(t *testing.T) {
	dir := t.TempDir()
	writeModels(t, dir, `package models

import "time"

type Account struct {
	ID        int64
	Balance   float64
	Email     string
	Active    bool
	Avatar    []byte
	Nickname  *string
	Age       *int
	CreatedAt time.Time
}
`)

	tables, err := Generate(dir)
	require.NoError(t, err)
	require.Len(t, tables, 1)

	table := tables[0]
	assert.Equal(t, "accounts", table.Name)
	require.Len(t, table.Columns, 8)

	expected := []Column{
		{Name: "id", SQLType: "INTEGER", Nullable: false},
		{Name: "balance", SQLType: "REAL", Nullable: false},
		{Name: "email", SQLType: "TEXT", Nullable: false},
		{Name: "active", SQLType: "INTEGER", Nullable: false},
		{Name: "avatar", SQLType: "BLOB", Nullable: false},
		{Name: "nickname", SQLType: "TEXT", Nullable: true},
		{Name: "age", SQLType: "INTEGER", Nullable: true},
		{Name: "created_at", SQLType: "TEXT", Nullable: false},
	}
	assert.Equal(t, expected, table.Columns)
}

func TestGenerate_MultipleStructsAndFiles(t *testing.T) {
	root := t.TempDir()
	writeModels(t, filepath.Join(root, "users"), `package users

type User struct {
	ID   int
	Name string
}

type Session struct {
	Token string
}
`)
	writeModels(t, filepath.Join(root, "billing"), `package billing

type Invoice struct {
	Total float64
}
`)

	tables, err := Generate(root)
	require.NoError(t, err)
	require.Len(t, tables, 3)

	names := make([]string, 0, len(tables))
	for _, table := range tables {
		names = append(names, table.Name)
	}
	assert.ElementsMatch(t, []string{"users", "sessions", "invoices"}, names)
}

func TestGenerate_SkipsNonModelFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "handlers.go"), []byte(`package app

type Handler struct {
	Path string
}
`), 0644))

	tables, err := Generate(dir)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestGenerate_SkipsEmbeddedFields(t *testing.T) {
	dir := t.TempDir()
	writeModels(t, dir, `package models

type Base struct {
	ID int
}

type Post struct {
	Base
	Title string
}
`)

	tables, err := Generate(dir)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	require.Len(t, tables[1].Columns, 1)
	assert.Equal(t, "title", tables[1].Columns[0].Name)
}

func TestGenerate_ParseError(t *testing.T) {
	dir := t.TempDir()
	writeModels(t, dir, "package models\n\ntype Broken struct {")

	_, err := Generate(dir)
	assert.Error(t, err)
}

func TestTableSQL(t *testing.T) {
	table := Table{
		Name: "users",
		Columns: []Column{
			{Name: "id", SQLType: "INTEGER"},
			{Name: "email", SQLType: "TEXT"},
			{Name: "bio", SQLType: "TEXT", Nullable: true},
		},
	}

	expected := "CREATE TABLE IF NOT EXISTS users (\n" +
		"id INTEGER NOT NULL,\n" +
		"email TEXT NOT NULL,\n" +
		"bio TEXT\n" +
		");"
	assert.Equal(t, expected, table.SQL())
}

func TestGenerateSQL(t *testing.T) {
	dir := t.TempDir()
	writeModels(t, dir, `package models

type Tag struct {
	Label string
}
`)

	sql, err := GenerateSQL(dir)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS tags (\nlabel TEXT NOT NULL\n);", sql)
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"ID":        "id",
		"Name":      "name",
		"UserID":    "user_id",
		"CreatedAt": "created_at",
		"HTTPPort":  "http_port",
		"lower":     "lower",
	}
	for input, expected := range tests {
		assert.Equal(t, expected, toSnakeCase(input), "input=%q", input)
	}
}
