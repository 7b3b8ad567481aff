package storage

// Dialect 数据库方言接口（对外导出）
// 屏蔽sqlite/postgres/mysql之间的DDL与连接配置差异
// DML占位符差异由sqlx的Rebind统一处理
type Dialect interface {
	// Name 方言名称
	Name() string
	// DriverName sqlx.Open使用的驱动名
	DriverName() string
	// SchemaSQL 运行报告表的建表DDL
	SchemaSQL() string
	// ConfigureDB 连接建立后执行的配置SQL（可为空）
	ConfigureDB() []string
}
