// Package storage 提供按数据库类型创建报告仓储的内部工厂
package storage

import (
	"fmt"

	"github.com/LENAX/dag-engine/pkg/storage"
	"github.com/LENAX/dag-engine/pkg/storage/mysql"
	"github.com/LENAX/dag-engine/pkg/storage/postgres"
	pkgsqlite "github.com/LENAX/dag-engine/pkg/storage/sqlite"
)

// OpenReportRepo 按数据库类型创建报告仓储（内部方法）
// dbType: 数据库类型（sqlite/mysql/postgres）
// dsn: 数据库连接字符串
func OpenReportRepo(dbType, dsn string) (*storage.SQLReportRepo, error) {
	switch dbType {
	case "sqlite":
		return pkgsqlite.OpenReportRepo(dsn)
	case "mysql":
		return mysql.OpenReportRepo(dsn)
	case "postgres", "postgresql":
		return postgres.OpenReportRepo(dsn)
	default:
		return nil, fmt.Errorf("不支持的数据库类型: %s", dbType)
	}
}
