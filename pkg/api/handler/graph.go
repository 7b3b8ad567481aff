package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/dag-engine/pkg/api/dto"
	"github.com/LENAX/dag-engine/pkg/config"
	"github.com/LENAX/dag-engine/pkg/core/engine"
	"github.com/LENAX/dag-engine/pkg/core/scheduler"
	"github.com/LENAX/dag-engine/pkg/storage"
)

// GraphHandler Graph运行与查询处理器
type GraphHandler struct {
	engine   *engine.Engine
	registry *config.HandlerRegistry
}

// NewGraphHandler 创建GraphHandler
func NewGraphHandler(eng *engine.Engine, registry *config.HandlerRegistry) *GraphHandler {
	if registry == nil {
		registry = config.NewHandlerRegistry()
	}
	return &GraphHandler{engine: eng, registry: registry}
}

// List 列出已注册的Graph
// GET /api/v1/graphs
func (h *GraphHandler) List(c *gin.Context) {
	names := h.engine.GraphNames()
	summaries := make([]dto.GraphSummary, 0, len(names))
	for _, name := range names {
		g, exists := h.engine.GetGraph(name)
		if !exists {
			continue
		}
		summaries = append(summaries, dto.GraphSummary{
			Name:      g.Name(),
			TaskCount: g.Len(),
			Roots:     g.Roots(),
		})
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(summaries))
}

// Run 提交内联Graph定义并同步运行
// POST /api/v1/graphs/run
func (h *GraphHandler) Run(c *gin.Context) {
	var req dto.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, "请求体无效: "+err.Error()))
		return
	}

	cfg, err := config.Parse([]byte(req.Definition))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, "Graph定义无效: "+err.Error()))
		return
	}
	g, err := config.BuildGraph(cfg, h.registry)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, "构建Graph失败: "+err.Error()))
		return
	}

	report, err := h.engine.RunOnce(c.Request.Context(), g, config.BuildEnv(cfg))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "运行失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(toRunResponse(report)))
}

// GetRun 按RunID查询持久化的运行报告
// GET /api/v1/runs/:id
func (h *GraphHandler) GetRun(c *gin.Context) {
	repo := h.engine.ReportRepository()
	if repo == nil {
		c.JSON(http.StatusNotImplemented, dto.NewErrorResponse(501, "未配置报告仓储"))
		return
	}

	stored, err := repo.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, "运行报告不存在"))
			return
		}
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(stored))
}

// ListRuns 列出持久化的运行报告
// GET /api/v1/runs?graph=<name>&limit=<n>
func (h *GraphHandler) ListRuns(c *gin.Context) {
	repo := h.engine.ReportRepository()
	if repo == nil {
		c.JSON(http.StatusNotImplemented, dto.NewErrorResponse(501, "未配置报告仓储"))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	reports, err := repo.ListReports(c.Request.Context(), c.Query("graph"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(reports))
}

// toRunResponse 把RunReport转换为API响应
func toRunResponse(report *scheduler.RunReport) dto.RunResponse {
	outputs := make(map[string]any, len(report.Outputs))
	for id, content := range report.Outputs {
		outputs[id] = content.Value()
	}
	failed := make(map[string]string, len(report.Failed))
	for id, cause := range report.Failed {
		failed[id] = cause.Error()
	}
	return dto.RunResponse{
		RunID:     report.RunID,
		GraphName: report.GraphName,
		Status:    report.Status,
		Duration:  report.Duration().String(),
		Outputs:   outputs,
		Failed:    failed,
		Skipped:   report.Skipped,
	}
}
