package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cv-organizer-go/internal/excel"
	"cv-organizer-go/internal/parser"
	"cv-organizer-go/internal/types"
)

// Document 一份待处理的输入文档
type Document struct {
	FileName string // 显示名，用于日志、错误与汇总表
	Data     []byte // 原始文档字节
}

// DocumentResult 单份文档的处理结果
type DocumentResult struct {
	FileName    string
	FullName    string // 抽取到的候选人姓名，失败时为空
	SheetName   string // 实际写入的工作表名，失败时为空
	Err         error  // 失败时为*ProcessError，成功为nil
	RawResponse string // 校验类失败时保留模型原始响应，便于人工诊断
}

// BatchResult 一次批处理的完整产出
type BatchResult struct {
	WorkbookBytes []byte           // 序列化后的xlsx内容
	Results       []DocumentResult // 与输入文档一一对应，按输入顺序
}

// CVProcessor 简历处理管线的编排器
//
// 整个批次严格串行：提取 -> 头像发布 -> 提示词装配 -> 模型抽取 ->
// 形状校验 -> 平铺 -> 写表。文档之间互相隔离，单份失败只记入
// 该文档的结果，不影响批次其余部分。
type CVProcessor struct {
	Components Components
	Settings   Settings
}

// NewCVProcessor 创建处理器，通过选项注入组件与配置
func NewCVProcessor(opts ...Option) (*CVProcessor, error) {
	p := &CVProcessor{
		Settings: Settings{
			Logger: zerolog.Nop(),
		},
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.Components.ContentExtractor == nil {
		return nil, fmt.Errorf("缺少文档内容提取组件")
	}
	if p.Components.Oracle == nil {
		return nil, fmt.Errorf("缺少抽取模型组件")
	}
	return p, nil
}

// ProcessAll 顺序处理一批文档并装配输出工作簿
//
// 上下文取消在文档边界生效：当前文档处理完毕后检查ctx，
// 剩余未处理文档记为取消错误，已完成的工作表照常写出。
func (p *CVProcessor) ProcessAll(ctx context.Context, docs []Document) (*BatchResult, error) {
	wb := excel.NewWorkbook(p.Settings.Logger)
	defer func() {
		if err := wb.Close(); err != nil {
			p.Settings.Logger.Warn().Err(err).Msg("关闭工作簿失败")
		}
	}()

	results := make([]DocumentResult, 0, len(docs))
	cancelled := false
	for _, doc := range docs {
		if !cancelled && ctx.Err() != nil {
			cancelled = true
		}
		if cancelled {
			results = append(results, DocumentResult{
				FileName: doc.FileName,
				Err: &ProcessError{
					FileName: doc.FileName,
					Op:       "batch",
					BaseErr:  ctx.Err(),
				},
			})
			continue
		}

		result := p.processDocument(ctx, wb, doc)
		if result.Err != nil {
			p.Settings.Logger.Error().
				Err(result.Err).
				Str("file", doc.FileName).
				Msg("文档处理失败，跳过并继续批次")
		} else {
			p.Settings.Logger.Info().
				Str("file", doc.FileName).
				Str("sheet", result.SheetName).
				Msg("文档处理完成")
		}
		results = append(results, result)
	}

	if p.Settings.SummarySheet {
		entries := make([]types.SummaryEntry, 0, len(results))
		for _, r := range results {
			entries = append(entries, types.SummaryEntry{
				FileName: r.FileName,
				FullName: r.FullName,
			})
		}
		if err := wb.AddSummarySheet(entries); err != nil {
			return nil, fmt.Errorf("写入汇总表失败: %w", err)
		}
	}

	data, err := wb.Bytes()
	if err != nil {
		return nil, err
	}

	return &BatchResult{
		WorkbookBytes: data,
		Results:       results,
	}, nil
}

// processDocument 走完单份文档的完整管线，任何一步失败立即短路
// 头像发布例外：发布失败按"无头像"降级，绝不使文档失败
func (p *CVProcessor) processDocument(ctx context.Context, wb *excel.Workbook, doc Document) DocumentResult {
	result := DocumentResult{FileName: doc.FileName}

	content, err := p.Components.ContentExtractor.Extract(ctx, doc.Data, doc.FileName)
	if err != nil {
		result.Err = NewExtractError(doc.FileName, err)
		return result
	}

	photoURL := p.publishProfilePhoto(ctx, content.ProfileImage, doc.FileName)

	prompt := parser.BuildPrompt(content, photoURL)

	raw, err := p.Components.Oracle.Extract(ctx, prompt)
	if err != nil {
		result.Err = NewOracleError(doc.FileName, err)
		return result
	}

	record, err := parser.ValidateRecord(raw)
	if err != nil {
		result.Err = NewValidateError(doc.FileName, err, raw)
		result.RawResponse = raw
		return result
	}

	result.FullName = record.FullName()
	rows := FlattenRecord(record)

	sheetName, err := wb.AddCandidateSheet(result.FullName, rows)
	if err != nil {
		result.Err = NewSheetError(doc.FileName, err)
		return result
	}
	result.SheetName = sheetName
	return result
}

// publishProfilePhoto 把文档内最佳头像候选发布到资产托管并返回公开URL
//
// 没有图片、未配置发布组件或发布失败都返回空串，调用方按无头像继续。
// 图片经临时文件中转（发布接口接本地路径），无论成败都会清理。
func (p *CVProcessor) publishProfilePhoto(ctx context.Context, image *types.ImageAsset, fileName string) string {
	if image == nil || p.Components.AssetPublisher == nil {
		return ""
	}

	ext := image.Format
	if ext == "" {
		ext = "png"
	}
	tmpName := fmt.Sprintf("cvphoto_%s.%s", uuid.New().String(), ext)
	tmpDir := p.Settings.TempDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	tmpPath := filepath.Join(tmpDir, tmpName)

	if err := os.WriteFile(tmpPath, image.Data, 0o600); err != nil {
		p.Settings.Logger.Warn().
			Err(err).
			Str("file", fileName).
			Msg("头像临时文件写入失败，按无头像继续")
		return ""
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			p.Settings.Logger.Warn().Err(err).Str("path", tmpPath).Msg("头像临时文件清理失败")
		}
	}()

	url, err := p.Components.AssetPublisher.PublishImage(ctx, tmpPath, tmpName)
	if err != nil {
		p.Settings.Logger.Warn().
			Err(err).
			Str("file", fileName).
			Msg("头像发布失败，按无头像继续")
		return ""
	}

	p.Settings.Logger.Debug().
		Str("file", fileName).
		Int("width", image.Width).
		Int("height", image.Height).
		Msg("头像发布成功")
	return url
}
