package constants

const (
	// 输出工作簿相关常量
	OutputFileName = "organized_cv_output.xlsx" // 默认输出文件名

	// xlsx工作表命名限制
	MaxSheetNameLen  = 31        // xlsx格式的工作表名长度上限
	DefaultSheetName = "Unknown" // 候选人姓名缺失时的兜底工作表名
	SummarySheetName = "Summary" // 汇总工作表名

	// CandidateRecord 中的关键字段
	CandidateSectionKey = "Candidate" // 候选人基本信息区块的键名
	FullNameKey         = "FullName"  // 候选人姓名字段的键名

	// 资产托管相关常量
	ProfilePhotoFolder = "/cv-photos" // 头像上传的默认目录
)
