package types

import "cv-organizer-go/internal/constants"

// PageContent 单页提取结果
type PageContent struct {
	Text     string   // 页面纯文本，无可提取文本时为空串
	LinkURIs []string // 该页超链接注释的目标URI，按出现顺序
}

// ImageAsset 文档中内嵌的一张位图
type ImageAsset struct {
	PageNumber int    // 所在页码，从1开始
	Format     string // 图片格式，如 "png"、"jpg"
	Width      int    // 像素宽
	Height     int    // 像素高
	Data       []byte // 原始图片字节
}

// PixelArea 像素面积，用于挑选"最显著"的头像候选
func (a *ImageAsset) PixelArea() int {
	if a == nil {
		return 0
	}
	return a.Width * a.Height
}

// ExtractedContent 一份文档的完整提取结果
type ExtractedContent struct {
	Pages        []PageContent // 按自然页序
	ProfileImage *ImageAsset   // 像素面积最大的内嵌图片，不存在时为nil
}

// FlatRow 候选人记录平铺后的一行 (区块, 字段, 值)
type FlatRow struct {
	Section string
	Field   string
	Value   string
}

// IsSpacer 判断该行是否为列表条目之间的空白分隔行
func (r FlatRow) IsSpacer() bool {
	return r.Section == "" && r.Field == "" && r.Value == ""
}

// CandidateRecord 一份简历经抽取校验后的结构化记录
// 顶层是一个保序对象：Candidate区块为扁平映射，其余区块为条目列表
type CandidateRecord struct {
	Root *Value
}

// SectionNames 顶层区块名，按记录自身的键序
func (r *CandidateRecord) SectionNames() []string {
	if r == nil || r.Root == nil {
		return nil
	}
	return r.Root.Keys
}

// Section 返回指定区块的内容，缺失时返回nil（缺失即"无数据"，不是错误）
func (r *CandidateRecord) Section(name string) *Value {
	if r == nil || r.Root == nil {
		return nil
	}
	return r.Root.Field(name)
}

// FullName 候选人姓名，缺失时返回空串
func (r *CandidateRecord) FullName() string {
	candidate := r.Section(constants.CandidateSectionKey)
	name := candidate.Field(constants.FullNameKey)
	if name == nil || !name.IsScalar() {
		return ""
	}
	return name.ScalarText()
}

// SummaryEntry 汇总表中的一行：文件名与抽取到的候选人姓名
type SummaryEntry struct {
	FileName string
	FullName string // 抽取失败时为空串
}
