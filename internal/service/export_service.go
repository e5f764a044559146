package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/eyesmystery/bookclub-api/internal/policy"
	"github.com/eyesmystery/bookclub-api/internal/repository"
	apperrors "github.com/eyesmystery/bookclub-api/pkg/errors"
)

// 名册工作表
const (
	rosterSheet  = "Members"
	summarySheet = "Divisions"
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportUsers 导出成员名册为 Excel
	ExportUsers(ctx context.Context, actor policy.Actor) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	policy *policy.Policy
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, pol *policy.Policy, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, policy: pol, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportUsers 导出成员名册
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Members"：ID / 姓名 / 邮箱 / 角色 / 分部 / 注册时间，按分部、姓名排序
//   - Sheet "Divisions"：每个分部的成员数
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportUsers(ctx context.Context, actor policy.Actor) (*bytes.Buffer, string, error) {
	if err := s.policy.Authorize(actor, policy.ActionExport, policy.ResourceUser, nil); err != nil {
		return nil, "", err
	}

	users, err := s.repo.User.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询用户名册失败", zap.Error(err))
		return nil, "", apperrors.Internal(err)
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(rosterSheet)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", apperrors.Internal(err)
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"ID", "Name", "Email", "Role", "Division", "Joined"}
	widths := []float64{8, 24, 32, 12, 24, 22}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(rosterSheet, col, col, widths[i])
		f.SetCellValue(rosterSheet, cell(col, 1), h)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetCellStyle(rosterSheet, "A1", cell(lastCol, 1), headerStyle)

	// 按分部统计，保持名册中的出现顺序
	type divisionCount struct {
		name  string
		count int
	}
	var order []uint
	counts := make(map[uint]*divisionCount)

	row := 2
	for i := range users {
		u := &users[i]
		divisionName := ""
		if u.Division != nil {
			divisionName = u.Division.Name
		}
		f.SetCellValue(rosterSheet, cell("A", row), u.ID)
		f.SetCellValue(rosterSheet, cell("B", row), u.Name)
		f.SetCellValue(rosterSheet, cell("C", row), u.Email)
		f.SetCellValue(rosterSheet, cell("D", row), u.Role)
		f.SetCellValue(rosterSheet, cell("E", row), divisionName)
		f.SetCellValue(rosterSheet, cell("F", row), u.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		row++

		dc, ok := counts[u.DivisionID]
		if !ok {
			dc = &divisionCount{name: divisionName}
			counts[u.DivisionID] = dc
			order = append(order, u.DivisionID)
		}
		dc.count++
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", apperrors.Internal(err)
	}
	f.SetColWidth(summarySheet, "A", "A", 28)
	f.SetColWidth(summarySheet, "B", "B", 12)
	f.SetCellValue(summarySheet, "A1", "Division")
	f.SetCellValue(summarySheet, "B1", "Members")
	f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
	for i, id := range order {
		f.SetCellValue(summarySheet, cell("A", i+2), counts[id].name)
		f.SetCellValue(summarySheet, cell("B", i+2), counts[id].count)
	}
	f.SetCellValue(summarySheet, cell("A", len(order)+2), "Total")
	f.SetCellValue(summarySheet, cell("B", len(order)+2), len(users))

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", apperrors.Internal(err)
	}

	filename := fmt.Sprintf("members_%s.xlsx", s.now().UTC().Format("20060102"))
	s.logger.Info("导出成员名册", zap.Int("rows", len(users)), zap.Uint("by", actor.ID))
	return buf, filename, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
