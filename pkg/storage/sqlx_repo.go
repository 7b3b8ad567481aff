package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/LENAX/dag-engine/pkg/core/scheduler"
)

// reportRow run_reports表的行结构
type reportRow struct {
	RunID      string `db:"run_id"`
	GraphName  string `db:"graph_name"`
	Status     string `db:"status"`
	StartTime  int64  `db:"start_time"`
	EndTime    int64  `db:"end_time"`
	DurationMS int64  `db:"duration_ms"`
	Outputs    string `db:"outputs"`
	Failed     string `db:"failed"`
	Skipped    string `db:"skipped"`
}

// SQLReportRepo 基于sqlx的运行报告仓储（对外导出）
// 通过Dialect适配sqlite/postgres/mysql，产出和失败信息以JSON列存储
type SQLReportRepo struct {
	db      *sqlx.DB
	dialect Dialect
}

// NewSQLReportRepo 创建仓储实例并初始化表结构（对外导出）
func NewSQLReportRepo(db *sqlx.DB, dialect Dialect) (*SQLReportRepo, error) {
	if db == nil {
		return nil, fmt.Errorf("数据库连接不能为nil")
	}
	if dialect == nil {
		return nil, fmt.Errorf("方言不能为nil")
	}

	for _, stmt := range dialect.ConfigureDB() {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("配置数据库失败: %w", err)
		}
	}
	if _, err := db.Exec(dialect.SchemaSQL()); err != nil {
		return nil, fmt.Errorf("初始化表结构失败: %w", err)
	}
	return &SQLReportRepo{db: db, dialect: dialect}, nil
}

// OpenSQLReportRepo 通过DSN打开数据库并创建仓储实例（对外导出）
func OpenSQLReportRepo(dialect Dialect, dsn string) (*SQLReportRepo, error) {
	db, err := sqlx.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	repo, err := NewSQLReportRepo(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// Close 关闭底层数据库连接（对外导出）
func (r *SQLReportRepo) Close() error {
	return r.db.Close()
}

// SaveReport 保存运行报告（对外导出）
func (r *SQLReportRepo) SaveReport(ctx context.Context, report *scheduler.RunReport) error {
	if report == nil {
		return fmt.Errorf("报告不能为nil")
	}
	stored := FromRunReport(report)

	outputsJSON, err := json.Marshal(stored.Outputs)
	if err != nil {
		return fmt.Errorf("序列化产出失败: %w", err)
	}
	failedJSON, err := json.Marshal(stored.Failed)
	if err != nil {
		return fmt.Errorf("序列化失败信息失败: %w", err)
	}
	skippedJSON, err := json.Marshal(stored.Skipped)
	if err != nil {
		return fmt.Errorf("序列化跳过信息失败: %w", err)
	}

	query := r.db.Rebind(`INSERT INTO run_reports
		(run_id, graph_name, status, start_time, end_time, duration_ms, outputs, failed, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.db.ExecContext(ctx, query,
		stored.RunID, stored.GraphName, stored.Status,
		stored.StartTime, stored.EndTime, stored.DurationMS,
		string(outputsJSON), string(failedJSON), string(skippedJSON))
	if err != nil {
		return fmt.Errorf("保存运行报告失败: %w", err)
	}
	return nil
}

// GetReport 按RunID获取报告（对外导出）
func (r *SQLReportRepo) GetReport(ctx context.Context, runID string) (*StoredReport, error) {
	query := r.db.Rebind(`SELECT run_id, graph_name, status, start_time, end_time, duration_ms, outputs, failed, skipped
		FROM run_reports WHERE run_id = ?`)

	var row reportRow
	if err := r.db.GetContext(ctx, &row, query, runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, runID)
		}
		return nil, fmt.Errorf("查询运行报告失败: %w", err)
	}
	return rowToStored(&row)
}

// ListReports 按Graph名称列出报告（对外导出）
// graphName为空表示全部，按开始时间倒序
func (r *SQLReportRepo) ListReports(ctx context.Context, graphName string, limit int) ([]*StoredReport, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []reportRow
	var err error
	if graphName == "" {
		query := r.db.Rebind(`SELECT run_id, graph_name, status, start_time, end_time, duration_ms, outputs, failed, skipped
			FROM run_reports ORDER BY start_time DESC LIMIT ?`)
		err = r.db.SelectContext(ctx, &rows, query, limit)
	} else {
		query := r.db.Rebind(`SELECT run_id, graph_name, status, start_time, end_time, duration_ms, outputs, failed, skipped
			FROM run_reports WHERE graph_name = ? ORDER BY start_time DESC LIMIT ?`)
		err = r.db.SelectContext(ctx, &rows, query, graphName, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("查询运行报告列表失败: %w", err)
	}

	reports := make([]*StoredReport, 0, len(rows))
	for i := range rows {
		stored, convErr := rowToStored(&rows[i])
		if convErr != nil {
			return nil, convErr
		}
		reports = append(reports, stored)
	}
	return reports, nil
}

// rowToStored 把数据库行还原为StoredReport
func rowToStored(row *reportRow) (*StoredReport, error) {
	stored := &StoredReport{
		RunID:      row.RunID,
		GraphName:  row.GraphName,
		Status:     row.Status,
		StartTime:  row.StartTime,
		EndTime:    row.EndTime,
		DurationMS: row.DurationMS,
	}
	if err := json.Unmarshal([]byte(row.Outputs), &stored.Outputs); err != nil {
		return nil, fmt.Errorf("反序列化产出失败: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Failed), &stored.Failed); err != nil {
		return nil, fmt.Errorf("反序列化失败信息失败: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Skipped), &stored.Skipped); err != nil {
		return nil, fmt.Errorf("反序列化跳过信息失败: %w", err)
	}
	return stored, nil
}

// 确保实现接口
var _ RunReportRepository = (*SQLReportRepo)(nil)
