package excel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"cv-organizer-go/internal/constants"
	"cv-organizer-go/internal/types"
)

// ErrSheetWriteFailed 写入某个候选人的工作表失败
// 只影响该文档：已写入的其他工作表保持完好
var ErrSheetWriteFailed = errors.New("写入工作表失败")

// 工作表名中xlsx不允许出现的字符
var forbiddenSheetChars = []string{":", "\\", "/", "?", "*", "[", "]"}

// Workbook 输出工作簿的装配器
// 每个成功解析的文档一张工作表，外加一张汇总表；所有状态只活在一次批处理内
type Workbook struct {
	f           *excelize.File
	usedNames   map[string]bool
	headerStyle int
	bannerStyle int
	stylesReady bool
	sheetCount  int
	logger      zerolog.Logger
}

// NewWorkbook 创建空工作簿
func NewWorkbook(logger zerolog.Logger) *Workbook {
	w := &Workbook{
		f:         excelize.NewFile(),
		usedNames: make(map[string]bool),
		logger:    logger,
	}
	// 预留：汇总表名与excelize的默认表名不参与候选人表名分配
	w.usedNames[constants.SummarySheetName] = true
	w.usedNames["Sheet1"] = true
	return w
}

// ensureStyles 惰性创建表头与区块横幅样式
func (w *Workbook) ensureStyles() error {
	if w.stylesReady {
		return nil
	}
	headerStyle, err := w.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}
	bannerStyle, err := w.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFF2CC"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	w.headerStyle = headerStyle
	w.bannerStyle = bannerStyle
	w.stylesReady = true
	return nil
}

// SheetNameFor 由候选人姓名推导工作表名并登记占用
// 规则：空白压成下划线、去掉xlsx禁用字符、截断到31字符、空名兜底"Unknown"；
// 重名时追加数字后缀(_2, _3, ...)并重新截断
func (w *Workbook) SheetNameFor(candidateName string) string {
	base := strings.Join(strings.Fields(candidateName), "_")
	for _, ch := range forbiddenSheetChars {
		base = strings.ReplaceAll(base, ch, "_")
	}
	if base == "" {
		base = constants.DefaultSheetName
	}
	base = truncateRunes(base, constants.MaxSheetNameLen)

	name := base
	for i := 2; w.usedNames[name]; i++ {
		suffix := fmt.Sprintf("_%d", i)
		name = truncateRunes(base, constants.MaxSheetNameLen-len(suffix)) + suffix
	}
	w.usedNames[name] = true
	return name
}

// AddCandidateSheet 写入一个候选人的平铺行并应用区块横幅样式
// 返回实际使用的工作表名；失败时已写入的其他工作表不受影响
func (w *Workbook) AddCandidateSheet(candidateName string, rows []types.FlatRow) (string, error) {
	sheetName := w.SheetNameFor(candidateName)

	if _, err := w.f.NewSheet(sheetName); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
	}
	if err := w.ensureStyles(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
	}

	// 表头行
	header := []string{"Section", "Field", "Value"}
	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
		}
		if err := w.f.SetCellValue(sheetName, cell, title); err != nil {
			return "", fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
		}
	}
	if err := w.f.SetCellStyle(sheetName, "A1", "C1", w.headerStyle); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
	}

	// 数据行：平铺序列原样落盘，空白分隔行保持为空
	for i, row := range rows {
		rowNr := i + 2
		values := []string{row.Section, row.Field, row.Value}
		for col, v := range values {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, rowNr)
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
			}
			if err := w.f.SetCellValue(sheetName, cell, v); err != nil {
				return "", fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
			}
		}
	}

	// 区块横幅：表头之后自上而下扫描，Section发生变化且非空的行
	// 合并该行三列并套用高亮加粗；纯视觉分组，不改动行内容与顺序
	lastSection := ""
	for i, row := range rows {
		if row.Section == "" {
			continue
		}
		if row.Section != lastSection {
			rowNr := i + 2
			hCell := fmt.Sprintf("A%d", rowNr)
			vCell := fmt.Sprintf("C%d", rowNr)
			if err := w.f.MergeCell(sheetName, hCell, vCell); err != nil {
				return "", fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
			}
			if err := w.f.SetCellStyle(sheetName, hCell, vCell, w.bannerStyle); err != nil {
				return "", fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
			}
		}
		lastSection = row.Section
	}

	// 适当加宽三列，便于人工浏览
	if err := w.f.SetColWidth(sheetName, "A", "A", 22); err == nil {
		_ = w.f.SetColWidth(sheetName, "B", "B", 24)
		_ = w.f.SetColWidth(sheetName, "C", "C", 60)
	}

	w.sheetCount++
	w.logger.Debug().Str("sheet", sheetName).Int("rows", len(rows)).Msg("候选人工作表写入完成")
	return sheetName, nil
}

// AddSummarySheet 写入汇总表：每个输入文档一行，列出文件名与抽取到的姓名
// 抽取失败的文档也占一行，姓名留空
func (w *Workbook) AddSummarySheet(entries []types.SummaryEntry) error {
	if _, err := w.f.NewSheet(constants.SummarySheetName); err != nil {
		return fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
	}
	if err := w.ensureStyles(); err != nil {
		return fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
	}

	if err := w.f.SetCellValue(constants.SummarySheetName, "A1", "File"); err != nil {
		return fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
	}
	if err := w.f.SetCellValue(constants.SummarySheetName, "B1", "FullName"); err != nil {
		return fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
	}
	if err := w.f.SetCellStyle(constants.SummarySheetName, "A1", "B1", w.headerStyle); err != nil {
		return fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
	}

	for i, entry := range entries {
		rowNr := i + 2
		if err := w.f.SetCellValue(constants.SummarySheetName, fmt.Sprintf("A%d", rowNr), entry.FileName); err != nil {
			return fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
		}
		if entry.FullName != "" {
			if err := w.f.SetCellValue(constants.SummarySheetName, fmt.Sprintf("B%d", rowNr), entry.FullName); err != nil {
				return fmt.Errorf("%w: %v", ErrSheetWriteFailed, err)
			}
		}
	}

	_ = w.f.SetColWidth(constants.SummarySheetName, "A", "B", 32)
	w.sheetCount++
	return nil
}

// Bytes 输出整个工作簿的字节内容
// 若写入过任何工作表，则先移除excelize的默认空表
func (w *Workbook) Bytes() ([]byte, error) {
	if w.sheetCount > 0 {
		if err := w.f.DeleteSheet("Sheet1"); err != nil {
			w.logger.Warn().Err(err).Msg("移除默认工作表失败")
		}
		if idx, err := w.f.GetSheetIndex(w.f.GetSheetList()[0]); err == nil {
			w.f.SetActiveSheet(idx)
		}
	}

	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("序列化工作簿失败: %w", err)
	}
	return buf.Bytes(), nil
}

// Close 释放excelize文件资源
func (w *Workbook) Close() error {
	return w.f.Close()
}

// truncateRunes 按rune截断字符串
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
