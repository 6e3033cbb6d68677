// Package schema generates CREATE TABLE statements from Go data-model
// declarations. It is pure text generation: the output is meant to be
// reviewed and saved by hand as a migration file.
package schema

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strings"
	"unicode"
)

// ModelFileName is the file the generator looks for when scanning a tree
const ModelFileName = "models.go"

// Column is one generated table column
type Column struct {
	Name     string
	SQLType  string
	Nullable bool
}

// Table is the generated definition for one model struct
type Table struct {
	Name    string
	Columns []Column
}

// SQL renders the CREATE TABLE statement for the table
func (t Table) SQL() string {
	cols := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		constraint := " NOT NULL"
		if col.Nullable {
			constraint = ""
		}
		cols = append(cols, fmt.Sprintf("%s %s%s", col.Name, col.SQLType, constraint))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);", t.Name, strings.Join(cols, ",\n"))
}

// Generate walks root recursively, parses every models.go file it finds and
// returns a table definition per struct declaration, in source order.
func Generate(root string) ([]Table, error) {
	var tables []Table

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != ModelFileName {
			return nil
		}

		fset := token.NewFileSet()
		parsed, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		tables = append(tables, fileTables(parsed)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tables, nil
}

// GenerateSQL renders every generated table as one SQL text block
func GenerateSQL(root string) (string, error) {
	tables, err := Generate(root)
	if err != nil {
		return "", err
	}

	statements := make([]string, 0, len(tables))
	for _, table := range tables {
		statements = append(statements, table.SQL())
	}
	return strings.Join(statements, "\n\n"), nil
}

// fileTables extracts a table per struct declaration in a parsed file
func fileTables(file *ast.File) []Table {
	var tables []Table

	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			structType, ok := typeSpec.Type.(*ast.StructType)
			if !ok {
				continue
			}
			tables = append(tables, structTable(typeSpec.Name.Name, structType))
		}
	}

	return tables
}

// structTable maps one struct to a table. The table name is the lowercased
// struct name, pluralized.
func structTable(name string, structType *ast.StructType) Table {
	table := Table{Name: strings.ToLower(name) + "s"}

	for _, field := range structType.Fields.List {
		// Embedded fields carry no column name
		if len(field.Names) == 0 {
			continue
		}
		sqlType, nullable := mapType(field.Type)
		for _, ident := range field.Names {
			table.Columns = append(table.Columns, Column{
				Name:     toSnakeCase(ident.Name),
				SQLType:  sqlType,
				Nullable: nullable,
			})
		}
	}

	return table
}

// mapType converts a Go field type to its SQLite column type. A pointer
// makes the inner type's column nullable; anything unrecognized stores as
// TEXT.
func mapType(expr ast.Expr) (string, bool) {
	switch t := expr.(type) {
	case *ast.Ident:
		switch t.Name {
		case "int", "int8", "int16", "int32", "int64",
			"uint", "uint8", "uint16", "uint32", "uint64", "uintptr", "byte", "rune":
			return "INTEGER", false
		case "float32", "float64":
			return "REAL", false
		case "string":
			return "TEXT", false
		case "bool":
			return "INTEGER", false
		}
		return "TEXT", false
	case *ast.StarExpr:
		sqlType, _ := mapType(t.X)
		return sqlType, true
	case *ast.ArrayType:
		if ident, ok := t.Elt.(*ast.Ident); ok && ident.Name == "byte" {
			return "BLOB", false
		}
		return "TEXT", false
	default:
		return "TEXT", false
	}
}

// toSnakeCase converts a Go field name to its column name. Acronym runs
// stay together, so UserID becomes user_id.
func toSnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			boundary := i > 0 && (!unicode.IsUpper(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1])))
			if boundary {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
