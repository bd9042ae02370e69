package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"cv-organizer-go/internal/config"
	"cv-organizer-go/internal/logger"
	"cv-organizer-go/internal/parser"
	"cv-organizer-go/internal/processor"
	"cv-organizer-go/internal/storage"
)

var (
	configPath    string
	outputPath    string
	noPhotoUpload bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cvorganizer [简历文件...]",
		Short: "批量解析简历并导出结构化Excel工作簿",
		Long: `cvorganizer 读取一批简历文档(PDF)，借助大模型抽取结构化信息，
每位候选人生成一张工作表，最终汇总为单个xlsx文件。`,
		Args: cobra.MinimumNArgs(1),
		RunE: run,
		// 错误已经自行打印，避免cobra重复输出
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "配置文件路径 (默认在常见位置查找config.yaml)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "输出xlsx文件路径 (默认取配置中的文件名)")
	rootCmd.Flags().BoolVar(&noPhotoUpload, "no-photo-upload", false, "禁用头像上传，即使配置了资产托管")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	log := logger.Logger

	if cfg.Gemini.APIKey == "" {
		return errors.New("未配置抽取模型API密钥 (gemini.api_key 或环境变量 GEMINI_API_KEY)")
	}

	// Ctrl-C后在文档边界优雅停止，已完成的工作表照常写出
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	publisher, err := buildAssetPublisher(cfg)
	if err != nil {
		return err
	}

	opts := []processor.Option{
		processor.WithContentExtractor(parser.NewPDFContentExtractor(log)),
		processor.WithOracle(parser.NewGeminiExtractor(cfg.Gemini, log)),
		processor.WithSummarySheet(cfg.Output.SummarySheet),
		processor.WithLogger(log),
	}
	if publisher != nil {
		opts = append(opts, processor.WithAssetPublisher(publisher))
	}

	proc, err := processor.NewCVProcessor(opts...)
	if err != nil {
		return fmt.Errorf("初始化处理器失败: %w", err)
	}

	docs, err := loadDocuments(args)
	if err != nil {
		return err
	}

	batch, err := proc.ProcessAll(ctx, docs)
	if err != nil {
		return fmt.Errorf("批处理失败: %w", err)
	}

	outPath := outputPath
	if outPath == "" {
		outPath = cfg.Output.FileName
	}
	if err := os.WriteFile(outPath, batch.WorkbookBytes, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}

	succeeded := 0
	for _, r := range batch.Results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "失败  %s: %v\n", r.FileName, r.Err)
			continue
		}
		succeeded++
		fmt.Printf("完成  %s -> 工作表 %q\n", r.FileName, r.SheetName)
	}
	fmt.Printf("输出: %s (%d/%d 份成功)\n", outPath, succeeded, len(batch.Results))

	if succeeded == 0 {
		return errors.New("没有任何文档处理成功")
	}
	return nil
}

// buildAssetPublisher 按配置选择头像托管后端，未配置或禁用时返回nil
func buildAssetPublisher(cfg *config.Config) (processor.AssetPublisher, error) {
	if noPhotoUpload {
		return nil, nil
	}
	switch cfg.AssetHost.Kind {
	case "":
		return nil, nil
	case "imagekit":
		if cfg.AssetHost.ImageKit.PrivateKey == "" {
			return nil, errors.New("asset_host.kind为imagekit但未配置私钥 (环境变量 IMAGEKIT_PRIVATE_KEY)")
		}
		return storage.NewImageKitPublisher(cfg.AssetHost.ImageKit, logger.Logger), nil
	case "minio":
		pub, err := storage.NewMinIOPublisher(cfg.AssetHost.MinIO, logger.Logger)
		if err != nil {
			return nil, fmt.Errorf("初始化MinIO资产托管失败: %w", err)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("不支持的资产托管类型: %s", cfg.AssetHost.Kind)
	}
}

// loadDocuments 读入全部输入文件，任何一个读不到都立即报错
// (此时还未产生任何开销较大的模型调用)
func loadDocuments(paths []string) ([]processor.Document, error) {
	docs := make([]processor.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取输入文件失败 %s: %w", path, err)
		}
		docs = append(docs, processor.Document{
			FileName: filepath.Base(path),
			Data:     data,
		})
	}
	return docs, nil
}
