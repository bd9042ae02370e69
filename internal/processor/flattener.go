package processor

import (
	"cv-organizer-go/internal/types"
)

// FlattenRecord 把候选人记录确定性地平铺为(区块, 字段, 值)行序列
//
// 遍历顺序固定：顶层区块按记录自身键序；列表区块内条目按源顺序；
// 条目/映射内字段按源键序。规则：
//   - 映射区块：每个键值对一行 {Section: 区块名, Field: 键, Value: 值}
//   - 列表区块：映射条目逐对展开后补一行空白分隔行；标量条目单独一行且无分隔行
//   - 标量区块：单独一行，Field为空
//
// 不丢行：残留的嵌套值在单元格内序列化为紧凑JSON而不是报错
func FlattenRecord(record *types.CandidateRecord) []types.FlatRow {
	if record == nil || record.Root == nil {
		return nil
	}

	var rows []types.FlatRow
	for _, section := range record.SectionNames() {
		value := record.Section(section)
		switch value.Kind {
		case types.KindObject:
			for _, key := range value.Keys {
				rows = append(rows, types.FlatRow{
					Section: section,
					Field:   key,
					Value:   value.Fields[key].ScalarText(),
				})
			}
		case types.KindArray:
			for _, item := range value.Items {
				if item.Kind == types.KindObject {
					for _, key := range item.Keys {
						rows = append(rows, types.FlatRow{
							Section: section,
							Field:   key,
							Value:   item.Fields[key].ScalarText(),
						})
					}
					// 同一区块内相邻条目用空白行分隔
					rows = append(rows, types.FlatRow{})
				} else {
					rows = append(rows, types.FlatRow{
						Section: section,
						Value:   item.ScalarText(),
					})
				}
			}
		default:
			rows = append(rows, types.FlatRow{
				Section: section,
				Value:   value.ScalarText(),
			})
		}
	}
	return rows
}
