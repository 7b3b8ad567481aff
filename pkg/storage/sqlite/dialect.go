// Package sqlite 提供运行报告仓储的SQLite方言
package sqlite

import (
	"github.com/LENAX/dag-engine/pkg/storage"

	_ "github.com/mattn/go-sqlite3" // SQLite驱动
)

// Dialect SQLite方言实现（对外导出）
type Dialect struct{}

// NewDialect 创建SQLite方言实例
func NewDialect() *Dialect {
	return &Dialect{}
}

// Name 返回方言名称
func (d *Dialect) Name() string {
	return "sqlite"
}

// DriverName 返回驱动名
func (d *Dialect) DriverName() string {
	return "sqlite3"
}

// SchemaSQL 返回建表DDL
func (d *Dialect) SchemaSQL() string {
	return `CREATE TABLE IF NOT EXISTS run_reports (
		run_id      TEXT PRIMARY KEY,
		graph_name  TEXT NOT NULL,
		status      TEXT NOT NULL,
		start_time  INTEGER NOT NULL,
		end_time    INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		outputs     TEXT NOT NULL,
		failed      TEXT NOT NULL,
		skipped     TEXT NOT NULL
	)`
}

// ConfigureDB 返回SQLite配置SQL
func (d *Dialect) ConfigureDB() []string {
	return []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=30000;",
		"PRAGMA synchronous=NORMAL;",
	}
}

// OpenReportRepo 通过DSN创建SQLite报告仓储（对外导出）
func OpenReportRepo(dsn string) (*storage.SQLReportRepo, error) {
	return storage.OpenSQLReportRepo(NewDialect(), dsn)
}

// 确保实现接口
var _ storage.Dialect = (*Dialect)(nil)
