package excel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cv-organizer-go/internal/types"
)

func newTestWorkbook(t *testing.T) *Workbook {
	t.Helper()
	w := NewWorkbook(zerolog.Nop())
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestSheetNameFor_Normalization(t *testing.T) {
	w := newTestWorkbook(t)

	cases := []struct {
		name     string
		expected string
	}{
		{"John Smith", "John_Smith"},
		{"  Jane   Doe  ", "Jane_Doe"},
		{"A/B:C?D", "A_B_C_D"},
		{"", "Unknown"},
		{"   ", "Unknown_2"}, // 第二个空名与第一个兜底名冲突
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, w.SheetNameFor(c.name), "输入: %q", c.name)
	}
}

func TestSheetNameFor_TruncationTo31(t *testing.T) {
	w := newTestWorkbook(t)

	long := strings.Repeat("Abcdefghij", 5) // 50字符
	name := w.SheetNameFor(long)
	assert.Len(t, []rune(name), 31, "工作表名截断到31字符")
	assert.Equal(t, long[:31], name)
}

func TestSheetNameFor_CollisionSuffix(t *testing.T) {
	w := newTestWorkbook(t)

	first := w.SheetNameFor("John Smith")
	second := w.SheetNameFor("John Smith")
	third := w.SheetNameFor("John Smith")

	assert.Equal(t, "John_Smith", first)
	assert.Equal(t, "John_Smith_2", second)
	assert.Equal(t, "John_Smith_3", third)
}

func TestSheetNameFor_CollisionSuffixRespectsCap(t *testing.T) {
	w := newTestWorkbook(t)

	long := strings.Repeat("X", 40)
	first := w.SheetNameFor(long)
	second := w.SheetNameFor(long)

	assert.Len(t, []rune(first), 31)
	assert.Len(t, []rune(second), 31, "追加后缀后仍不超过31字符")
	assert.True(t, strings.HasSuffix(second, "_2"))
	assert.NotEqual(t, first, second)
}

func TestSheetNameFor_ReservedNames(t *testing.T) {
	w := newTestWorkbook(t)

	// 汇总表名与excelize默认表名不参与候选人表名分配
	assert.Equal(t, "Summary_2", w.SheetNameFor("Summary"))
	assert.Equal(t, "Sheet1_2", w.SheetNameFor("Sheet1"))
}

func TestAddCandidateSheet_ContentIntegrity(t *testing.T) {
	w := newTestWorkbook(t)

	rows := []types.FlatRow{
		{Section: "Candidate", Field: "FullName", Value: "Jane Doe"},
		{Section: "Candidate", Field: "Email", Value: "jane@example.com"},
		{},
		{Section: "Skills", Value: "Go"},
	}

	sheetName, err := w.AddCandidateSheet("Jane Doe", rows)
	require.NoError(t, err)
	assert.Equal(t, "Jane_Doe", sheetName)

	// 表头
	for col, want := range map[string]string{"A1": "Section", "B1": "Field", "C1": "Value"} {
		got, err := w.f.GetCellValue(sheetName, col)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// 平铺行原样落盘，行序不变
	got, _ := w.f.GetCellValue(sheetName, "C2")
	assert.Equal(t, "Jane Doe", got)
	got, _ = w.f.GetCellValue(sheetName, "B3")
	assert.Equal(t, "Email", got)
	got, _ = w.f.GetCellValue(sheetName, "A4")
	assert.Equal(t, "", got, "分隔行保持为空")
	got, _ = w.f.GetCellValue(sheetName, "A5")
	assert.Equal(t, "Skills", got)
}

func TestAddCandidateSheet_BannerMergesSectionStarts(t *testing.T) {
	w := newTestWorkbook(t)

	rows := []types.FlatRow{
		{Section: "Candidate", Field: "FullName", Value: "Jane Doe"},
		{Section: "EmploymentHistory", Field: "Company", Value: "Acme"},
		{},
		{Section: "EmploymentHistory", Field: "Company", Value: "Globex"},
	}
	sheetName, err := w.AddCandidateSheet("Jane Doe", rows)
	require.NoError(t, err)

	merged, err := w.f.GetMergeCells(sheetName)
	require.NoError(t, err)

	starts := make([]string, 0, len(merged))
	for _, m := range merged {
		starts = append(starts, m.GetStartAxis())
	}
	assert.Contains(t, starts, "A2", "Candidate区块首行有横幅")
	assert.Contains(t, starts, "A3", "EmploymentHistory区块首行有横幅")
	assert.Len(t, merged, 2, "被分隔行隔开的同区块条目不重复出横幅")
}

func TestAddSummarySheet(t *testing.T) {
	w := newTestWorkbook(t)

	entries := []types.SummaryEntry{
		{FileName: "jane.pdf", FullName: "Jane Doe"},
		{FileName: "broken.pdf"}, // 失败文档也占一行，姓名留空
	}
	require.NoError(t, w.AddSummarySheet(entries))

	got, _ := w.f.GetCellValue("Summary", "A2")
	assert.Equal(t, "jane.pdf", got)
	got, _ = w.f.GetCellValue("Summary", "B2")
	assert.Equal(t, "Jane Doe", got)
	got, _ = w.f.GetCellValue("Summary", "A3")
	assert.Equal(t, "broken.pdf", got)
	got, _ = w.f.GetCellValue("Summary", "B3")
	assert.Equal(t, "", got)
}

func TestBytes_ProducesReadableWorkbookWithoutDefaultSheet(t *testing.T) {
	w := newTestWorkbook(t)

	_, err := w.AddCandidateSheet("Jane Doe", []types.FlatRow{
		{Section: "Candidate", Field: "FullName", Value: "Jane Doe"},
	})
	require.NoError(t, err)
	require.NoError(t, w.AddSummarySheet([]types.SummaryEntry{{FileName: "jane.pdf", FullName: "Jane Doe"}}))

	data, err := w.Bytes()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	// 输出字节应能被重新打开，且默认空表已被移除
	reopened, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer reopened.Close()

	sheets := reopened.GetSheetList()
	assert.NotContains(t, sheets, "Sheet1")
	assert.Contains(t, sheets, "Jane_Doe")
	assert.Contains(t, sheets, "Summary")
}

func TestAddCandidateSheet_IsolationBetweenSheets(t *testing.T) {
	w := newTestWorkbook(t)

	_, err := w.AddCandidateSheet("First Person", []types.FlatRow{
		{Section: "Candidate", Field: "FullName", Value: "First Person"},
	})
	require.NoError(t, err)

	_, err = w.AddCandidateSheet("Second Person", []types.FlatRow{
		{Section: "Candidate", Field: "FullName", Value: "Second Person"},
	})
	require.NoError(t, err)

	got, _ := w.f.GetCellValue("First_Person", "C2")
	assert.Equal(t, "First Person", got, "后写入的工作表不影响先前内容")
}
