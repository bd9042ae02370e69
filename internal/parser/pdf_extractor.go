package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog"

	"cv-organizer-go/internal/types"
)

// ErrDocumentUnreadable 文档整体无法打开或解析
var ErrDocumentUnreadable = errors.New("无法读取简历文档")

// PDFContentExtractor 基于pdfcpu的文档内容提取器
// 逐页提取纯文本、链接注释的目标URI以及内嵌位图；单页失败只产生空文本，
// 不会导致整个文档失败
type PDFContentExtractor struct {
	logger zerolog.Logger
}

// NewPDFContentExtractor 创建PDF内容提取器
func NewPDFContentExtractor(logger zerolog.Logger) *PDFContentExtractor {
	return &PDFContentExtractor{logger: logger}
}

// Extract 从原始PDF字节中提取结构化内容
// 返回按页序排列的文本与链接，以及像素面积最大的一张内嵌图片（若存在）
func (e *PDFContentExtractor) Extract(ctx context.Context, data []byte, fileName string) (*types.ExtractedContent, error) {
	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentUnreadable, fileName, err)
	}

	content := &types.ExtractedContent{}
	var images []*types.ImageAsset

	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		page := types.PageContent{
			Text:     extractPageText(pdfCtx, pageNr),
			LinkURIs: e.extractPageLinks(pdfCtx, pageNr),
		}
		content.Pages = append(content.Pages, page)
		images = append(images, e.extractPageImages(pdfCtx, pageNr)...)
	}
	content.ProfileImage = bestImage(images)

	e.logger.Debug().
		Str("file", fileName).
		Int("pages", pdfCtx.PageCount).
		Int("images", len(images)).
		Bool("profile_image", content.ProfileImage != nil).
		Msg("PDF内容提取完成")

	return content, nil
}

// bestImage 从全部内嵌图片中挑出像素面积最大的一张作为头像候选
// 严格大于：面积相同保留先出现者；没有图片返回nil
func bestImage(images []*types.ImageAsset) *types.ImageAsset {
	var best *types.ImageAsset
	for _, img := range images {
		if best == nil || img.PixelArea() > best.PixelArea() {
			best = img
		}
	}
	return best
}

// extractPageLinks 收集某一页全部链接注释的目标URI，按出现顺序，跳过空URI
func (e *PDFContentExtractor) extractPageLinks(pdfCtx *model.Context, pageNr int) []string {
	d, _, _, err := pdfCtx.PageDict(pageNr, false)
	if err != nil || d == nil {
		return nil
	}
	obj, found := d.Find("Annots")
	if !found {
		return nil
	}
	arr, err := pdfCtx.DereferenceArray(obj)
	if err != nil {
		return nil
	}

	var uris []string
	for _, item := range arr {
		annot, err := pdfCtx.DereferenceDict(item)
		if err != nil || annot == nil {
			continue
		}
		subtype := annot.NameEntry("Subtype")
		if subtype == nil || *subtype != "Link" {
			continue
		}
		if uri := annotationURI(pdfCtx, annot); uri != "" {
			uris = append(uris, uri)
		}
	}
	return uris
}

// annotationURI 取链接注释的目标URI：优先注释字典中的URI项，其次A动作字典
func annotationURI(pdfCtx *model.Context, annot pdftypes.Dict) string {
	if uri := dictString(pdfCtx, annot, "URI"); uri != "" {
		return uri
	}
	obj, found := annot.Find("A")
	if !found {
		return ""
	}
	action, err := pdfCtx.DereferenceDict(obj)
	if err != nil || action == nil {
		return ""
	}
	return dictString(pdfCtx, action, "URI")
}

// dictString 从字典中取一个字符串项，兼容字面量与十六进制两种写法
func dictString(pdfCtx *model.Context, d pdftypes.Dict, key string) string {
	obj, found := d.Find(key)
	if !found {
		return ""
	}
	obj, err := pdfCtx.Dereference(obj)
	if err != nil {
		return ""
	}
	switch s := obj.(type) {
	case pdftypes.StringLiteral:
		if v, err := pdftypes.StringLiteralToString(s); err == nil {
			return v
		}
	case pdftypes.HexLiteral:
		if v, err := pdftypes.HexLiteralToString(s); err == nil {
			return v
		}
	}
	return ""
}

// extractPageImages 收集某一页的全部内嵌位图，不跨页去重
func (e *PDFContentExtractor) extractPageImages(pdfCtx *model.Context, pageNr int) []*types.ImageAsset {
	objNrs := pdfcpu.ImageObjNrs(pdfCtx, pageNr)
	if len(objNrs) == 0 {
		return nil
	}
	// 对象号升序遍历，保证"先出现"的判定稳定
	sort.Ints(objNrs)

	imgs, err := pdfcpu.ExtractPageImages(pdfCtx, pageNr, false)
	if err != nil {
		e.logger.Warn().Int("page", pageNr).Err(err).Msg("提取页面图片失败，跳过该页图片")
		return nil
	}

	var assets []*types.ImageAsset
	for _, objNr := range objNrs {
		img, ok := imgs[objNr]
		if !ok {
			continue
		}
		data, err := io.ReadAll(img)
		if err != nil || len(data) == 0 {
			continue
		}
		width, height := imageDims(pdfCtx, objNr)
		assets = append(assets, &types.ImageAsset{
			PageNumber: pageNr,
			Format:     img.FileType,
			Width:      width,
			Height:     height,
			Data:       data,
		})
	}
	return assets
}

// imageDims 从图片流字典中读取像素尺寸
func imageDims(pdfCtx *model.Context, objNr int) (int, int) {
	entry := pdfCtx.Table[objNr]
	if entry == nil || entry.Object == nil {
		return 0, 0
	}
	sd, ok := entry.Object.(pdftypes.StreamDict)
	if !ok {
		return 0, 0
	}
	width, height := 0, 0
	if w := sd.IntEntry("Width"); w != nil {
		width = *w
	}
	if h := sd.IntEntry("Height"); h != nil {
		height = *h
	}
	return width, height
}

// extractPageText 从页面内容流中提取纯文本，失败时返回空串
func extractPageText(pdfCtx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return extractTextFromStream(data)
}

// pdfStringRe 匹配括号括起的PDF字符串字面量
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// extractTextFromStream 扫描内容流中的文本算子(Tj/TJ/'/Td/TD/T*)拼出页面文本
func extractTextFromStream(data []byte) string {
	var sb strings.Builder

	lines := bytes.Split(data, []byte{'\n'})
	for _, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		// Tj算子: (text) Tj
		if bytes.HasSuffix(line, []byte("Tj")) {
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
		}

		// TJ算子: [(text) -100 (more text)] TJ
		if bytes.HasSuffix(line, []byte("TJ")) {
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
		}

		// '算子：换行并显示文本
		if bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")) {
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				if text := decodePDFString(m[1]); text != "" {
					sb.WriteByte('\n')
					sb.WriteString(text)
				}
			}
		}

		// Td/TD算子：文本定位，补一个空格
		if bytes.HasSuffix(line, []byte("Td")) || bytes.HasSuffix(line, []byte("TD")) {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		}

		// T*算子：移动到下一行行首
		if bytes.Equal(line, []byte("T*")) {
			sb.WriteByte('\n')
		}
	}

	return cleanPDFText(sb.String())
}

// decodePDFString 处理PDF字符串的转义序列（含八进制转义）
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			i++
			switch raw[i] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '(':
				sb.WriteByte('(')
			case ')':
				sb.WriteByte(')')
			default:
				if raw[i] >= '0' && raw[i] <= '7' {
					val := int(raw[i] - '0')
					if i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7' {
						i++
						val = val*8 + int(raw[i]-'0')
						if i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7' {
							i++
							val = val*8 + int(raw[i]-'0')
						}
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(raw[i])
				}
			}
		} else {
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}

// cleanPDFText 规整提取文本中的空白：保留换行，折叠连续空格，去掉不可打印字符
func cleanPDFText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		switch {
		case r == '\n':
			sb.WriteByte('\n')
			prevSpace = true
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
