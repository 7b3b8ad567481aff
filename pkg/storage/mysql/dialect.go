// Package mysql 提供运行报告仓储的MySQL方言
package mysql

import (
	"github.com/LENAX/dag-engine/pkg/storage"

	_ "github.com/go-sql-driver/mysql" // MySQL驱动
)

// Dialect MySQL方言实现（对外导出）
type Dialect struct{}

// NewDialect 创建MySQL方言实例
func NewDialect() *Dialect {
	return &Dialect{}
}

// Name 返回方言名称
func (d *Dialect) Name() string {
	return "mysql"
}

// DriverName 返回驱动名
func (d *Dialect) DriverName() string {
	return "mysql"
}

// SchemaSQL 返回建表DDL
func (d *Dialect) SchemaSQL() string {
	return `CREATE TABLE IF NOT EXISTS run_reports (
		run_id      VARCHAR(64) PRIMARY KEY,
		graph_name  VARCHAR(255) NOT NULL,
		status      VARCHAR(32) NOT NULL,
		start_time  BIGINT NOT NULL,
		end_time    BIGINT NOT NULL,
		duration_ms BIGINT NOT NULL,
		outputs     TEXT NOT NULL,
		failed      TEXT NOT NULL,
		skipped     TEXT NOT NULL
	)`
}

// ConfigureDB MySQL无需额外配置
func (d *Dialect) ConfigureDB() []string {
	return nil
}

// OpenReportRepo 通过DSN创建MySQL报告仓储（对外导出）
func OpenReportRepo(dsn string) (*storage.SQLReportRepo, error) {
	return storage.OpenSQLReportRepo(NewDialect(), dsn)
}

// 确保实现接口
var _ storage.Dialect = (*Dialect)(nil)
