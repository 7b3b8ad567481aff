// Package postgres 提供运行报告仓储的PostgreSQL方言
package postgres

import (
	"github.com/LENAX/dag-engine/pkg/storage"

	_ "github.com/lib/pq" // PostgreSQL驱动
)

// Dialect PostgreSQL方言实现（对外导出）
type Dialect struct{}

// NewDialect 创建PostgreSQL方言实例
func NewDialect() *Dialect {
	return &Dialect{}
}

// Name 返回方言名称
func (d *Dialect) Name() string {
	return "postgres"
}

// DriverName 返回驱动名
func (d *Dialect) DriverName() string {
	return "postgres"
}

// SchemaSQL 返回建表DDL
func (d *Dialect) SchemaSQL() string {
	return `CREATE TABLE IF NOT EXISTS run_reports (
		run_id      TEXT PRIMARY KEY,
		graph_name  TEXT NOT NULL,
		status      TEXT NOT NULL,
		start_time  BIGINT NOT NULL,
		end_time    BIGINT NOT NULL,
		duration_ms BIGINT NOT NULL,
		outputs     TEXT NOT NULL,
		failed      TEXT NOT NULL,
		skipped     TEXT NOT NULL
	)`
}

// ConfigureDB PostgreSQL无需额外配置
func (d *Dialect) ConfigureDB() []string {
	return nil
}

// OpenReportRepo 通过DSN创建PostgreSQL报告仓储（对外导出）
func OpenReportRepo(dsn string) (*storage.SQLReportRepo, error) {
	return storage.OpenSQLReportRepo(NewDialect(), dsn)
}

// 确保实现接口
var _ storage.Dialect = (*Dialect)(nil)
