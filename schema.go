package dragondb

import (
	"context"
	"fmt"
	"strings"
)

// Column describes a table column as reported by the server.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	// Default is nil when the column has no default.
	Default any
	Key     string
	Extra   string
}

// TableList returns the table names of the current database, or of the
// named database (schema on PostgreSQL, attached database on SQLite).
func (db *DB) TableList(ctx context.Context, database ...string) ([]string, error) {
	var (
		tmpl string
		args []any
	)
	switch db.dialect.kind {
	case kindSQLite:
		tmpl = "SELECT name FROM sqlite_master WHERE type = 'table' AND substr(name, 1, 7) <> 'sqlite_' ORDER BY name"
		if len(database) > 0 && database[0] != "" {
			tmpl = "SELECT name FROM %b.sqlite_master WHERE type = 'table' AND substr(name, 1, 7) <> 'sqlite_' ORDER BY name"
			args = append(args, database[0])
		}
	case kindPostgreSQL:
		tmpl = "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name"
		if len(database) > 0 && database[0] != "" {
			tmpl = "SELECT table_name FROM information_schema.tables WHERE table_schema = %s AND table_type = 'BASE TABLE' ORDER BY table_name"
			args = append(args, database[0])
		}
	default:
		tmpl = "SHOW TABLES"
		if len(database) > 0 && database[0] != "" {
			tmpl = "SHOW TABLES FROM %b"
			args = append(args, database[0])
		}
	}

	values, err := db.QueryFirstColumn(ctx, db.engine.expand(tmpl), args...)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		s, err := toString("table", v)
		if err != nil {
			return nil, err
		}
		names = append(names, s)
	}
	return names, nil
}

// ColumnList returns the columns of table keyed by name.
func (db *DB) ColumnList(ctx context.Context, table string) (map[string]Column, error) {
	switch db.dialect.kind {
	case kindSQLite:
		return db.sqliteColumns(ctx, table)
	case kindPostgreSQL:
		return db.postgresColumns(ctx, table)
	}
	return db.mysqlColumns(ctx, table)
}

func (db *DB) mysqlColumns(ctx context.Context, table string) (map[string]Column, error) {
	rows, err := db.Query(ctx, db.engine.expand("SHOW COLUMNS FROM %b"), table)
	if err != nil {
		return nil, err
	}
	columns := make(map[string]Column, len(rows))
	for _, row := range rows {
		c := Column{
			Name:     text(row["Field"]),
			Type:     text(row["Type"]),
			Nullable: strings.EqualFold(text(row["Null"]), "YES"),
			Default:  row["Default"],
			Key:      text(row["Key"]),
			Extra:    text(row["Extra"]),
		}
		columns[c.Name] = c
	}
	return columns, nil
}

func (db *DB) sqliteColumns(ctx context.Context, table string) (map[string]Column, error) {
	rows, err := db.Query(ctx, db.engine.expand("PRAGMA table_info(%b)"), table)
	if err != nil {
		return nil, err
	}
	columns := make(map[string]Column, len(rows))
	for _, row := range rows {
		notNull, _ := toInt("notnull", row["notnull"])
		pk, _ := toInt("pk", row["pk"])
		c := Column{
			Name:     text(row["name"]),
			Type:     text(row["type"]),
			Nullable: notNull == 0,
			Default:  row["dflt_value"],
		}
		if pk > 0 {
			c.Key = "PRI"
		}
		columns[c.Name] = c
	}
	return columns, nil
}

func (db *DB) postgresColumns(ctx context.Context, table string) (map[string]Column, error) {
	rows, err := db.Query(ctx, db.engine.expand(
		"SELECT column_name, data_type, is_nullable, column_default FROM information_schema.columns "+
			"WHERE table_schema = current_schema() AND table_name = %s ORDER BY ordinal_position"), table)
	if err != nil {
		return nil, err
	}
	columns := make(map[string]Column, len(rows))
	for _, row := range rows {
		c := Column{
			Name:     text(row["column_name"]),
			Type:     text(row["data_type"]),
			Nullable: strings.EqualFold(text(row["is_nullable"]), "YES"),
			Default:  row["column_default"],
		}
		if strings.HasPrefix(text(c.Default), "nextval(") {
			c.Extra = "auto_increment"
		}
		columns[c.Name] = c
	}
	return columns, nil
}

// UseDB switches the current database. Only MySQL supports it.
func (db *DB) UseDB(ctx context.Context, name string) error {
	if db.dialect.kind != kindMySQL {
		return fmt.Errorf("%w: USE on %s", ErrUnsupported, db.dialect.name)
	}
	_, err := db.Exec(ctx, db.engine.expand("USE %b"), name)
	if err == nil {
		db.cfg.Name = name
	}
	return err
}

func text(v any) string {
	s, _ := toString("", v)
	return s
}
