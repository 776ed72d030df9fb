package decoder

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/ralt/rpmexplorer/internal/materialize"
	"github.com/ralt/rpmexplorer/internal/models"
	"github.com/sirupsen/logrus"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SQLiteDecoder reads every known table of a database artifact into flat
// records keyed by pkgId.
type SQLiteDecoder struct {
	category models.Category
}

// NewSQLiteDecoder creates a decoder for one of the *_db categories
func NewSQLiteDecoder(category models.Category) *SQLiteDecoder {
	return &SQLiteDecoder{category: category}
}

// Decode implements Decoder
func (d *SQLiteDecoder) Decode(ctx context.Context, artifact *materialize.Artifact) (*models.Raw, error) {
	raw, err := d.decodeFile(ctx, artifact.WorkPath)
	if err != nil {
		return nil, &models.PipelineError{
			Type:     models.ErrDecode,
			Category: d.category.String(),
			Err:      fmt.Errorf("failed to read %s: %w", artifact.WorkPath, err),
		}
	}
	return raw, nil
}

func (d *SQLiteDecoder) decodeFile(ctx context.Context, file string) (*models.Raw, error) {
	conn, err := sqlite.OpenConn(file, sqlite.OpenReadOnly)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	conn.SetInterrupt(ctx.Done())

	tables, err := listTables(conn)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	pkgIDs := make(map[int64]string)
	if slices.Contains(tables, models.KindPackages.String()) {
		if pkgIDs, err = packageKeys(conn); err != nil {
			return nil, fmt.Errorf("read package keys: %w", err)
		}
	}

	raw := models.NewRaw(d.category)
	for _, table := range tables {
		kind := models.ParseKind(table)
		if !slices.Contains(models.TableKinds, kind) {
			logrus.WithFields(logrus.Fields{
				"category": d.category,
				"table":    table,
			}).Warn("Unknown table in database artifact")
			raw.UnknownTables = append(raw.UnknownTables, table)
			continue
		}
		if kind == models.KindPackages && d.category != models.CategoryPrimaryDB {
			continue
		}

		err := sqlitex.Execute(conn, "SELECT * FROM "+quoteIdent(table), &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				d.addRow(raw, kind, scanRow(stmt), pkgIDs)
				return nil
			},
		})
		if err != nil {
			return nil, fmt.Errorf("read table %s: %w", table, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"category": d.category,
		"tables":   len(tables),
		"rejected": len(raw.Rejected),
	}).Debug("Decoded database artifact")

	return raw, nil
}

func (d *SQLiteDecoder) addRow(raw *models.Raw, kind models.Kind, rec models.Record, pkgIDs map[int64]string) {
	if key, ok := rec["pkgKey"]; ok {
		delete(rec, "pkgKey")
		if kind != models.KindPackages {
			n, _ := key.(int64)
			pkgID, found := pkgIDs[n]
			if !found {
				raw.Reject(kind, "", rec, fmt.Errorf("%s: no package with pkgKey %v", kind.DisplayName(), key))
				return
			}
			rec["pkgId"] = pkgID
		}
	}
	pkgID, _ := rec["pkgId"].(string)

	switch kind {
	case models.KindDBInfo:
		rec["repo_category"] = d.category.String()
	case models.KindFileList:
		rows, err := expandFileList(rec)
		if err != nil {
			raw.Reject(kind, pkgID, rec, err)
			return
		}
		for _, row := range rows {
			raw.AddRow(kind, row)
		}
		return
	case models.KindFiles:
		if t, ok := rec["type"].(string); ok {
			rec["type"] = models.NormalizeFileType(t)
		}
	}

	if err := coerce(rec, models.Schemas[kind]); err != nil {
		raw.Reject(kind, pkgID, rec, err)
		return
	}
	raw.AddRow(kind, rec)
}

// expandFileList turns a directory row with "/" joined names and one type
// character per name into one row per file.
func expandFileList(rec models.Record) ([]models.Record, error) {
	dirname, _ := rec["dirname"].(string)
	names, _ := rec["filenames"].(string)
	types, _ := rec["filetypes"].(string)

	parts := strings.Split(names, "/")
	if len(parts) != len(types) {
		return nil, fmt.Errorf("FileList: %d names but %d types in %s", len(parts), len(types), dirname)
	}

	rows := make([]models.Record, 0, len(parts))
	for i, name := range parts {
		rows = append(rows, models.Record{
			"pkgId":    rec["pkgId"],
			"filename": path.Join(dirname, name),
			"filetype": models.NormalizeFileType(types[i : i+1]),
		})
	}
	return rows, nil
}

// coerce converts column values to the types declared by the schema.
// Database forms store epoch as text and the pre flag as TRUE/FALSE or an
// integer.
func coerce(rec models.Record, schema models.Schema) error {
	for name, v := range rec {
		if v == nil {
			continue
		}
		field, ok := schema.Field(name)
		if !ok {
			continue
		}
		converted, err := coerceValue(v, field.Type)
		if err != nil {
			return fmt.Errorf("%s: field %s: %w", schema.Kind.DisplayName(), name, err)
		}
		rec[name] = converted
	}
	return nil
}

func coerceValue(v any, typ models.FieldType) (any, error) {
	switch typ {
	case models.TypeInt:
		switch x := v.(type) {
		case int64:
			return x, nil
		case float64:
			return int64(x), nil
		case string:
			return strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		}
	case models.TypeBool:
		switch x := v.(type) {
		case int64:
			return x != 0, nil
		case string:
			return strconv.ParseBool(strings.TrimSpace(x))
		}
	case models.TypeString:
		switch x := v.(type) {
		case string:
			return x, nil
		case int64:
			return strconv.FormatInt(x, 10), nil
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64), nil
		}
	}
	return nil, fmt.Errorf("cannot convert %T", v)
}

func scanRow(stmt *sqlite.Stmt) models.Record {
	rec := make(models.Record, stmt.ColumnCount())
	for col := 0; col < stmt.ColumnCount(); col++ {
		var v any
		switch stmt.ColumnType(col) {
		case sqlite.TypeNull:
			v = nil
		case sqlite.TypeInteger:
			v = stmt.ColumnInt64(col)
		case sqlite.TypeFloat:
			v = stmt.ColumnFloat(col)
		default:
			v = stmt.ColumnText(col)
		}
		rec[stmt.ColumnName(col)] = v
	}
	return rec
}

func listTables(conn *sqlite.Conn) ([]string, error) {
	var tables []string
	err := sqlitex.Execute(conn,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tables = append(tables, stmt.ColumnText(0))
				return nil
			},
		})
	return tables, err
}

func packageKeys(conn *sqlite.Conn) (map[int64]string, error) {
	keys := make(map[int64]string)
	err := sqlitex.Execute(conn, "SELECT pkgKey, pkgId FROM packages", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			keys[stmt.ColumnInt64(0)] = stmt.ColumnText(1)
			return nil
		},
	})
	return keys, err
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
