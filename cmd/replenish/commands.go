package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/procuresmart/backend-go/internal/cache"
	"github.com/andresuchdata/procuresmart/backend-go/internal/config"
	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
	"github.com/andresuchdata/procuresmart/backend-go/internal/drive"
	"github.com/andresuchdata/procuresmart/backend-go/internal/ingest"
	"github.com/andresuchdata/procuresmart/backend-go/internal/pipeline"
	"github.com/andresuchdata/procuresmart/backend-go/internal/report"
	"github.com/andresuchdata/procuresmart/backend-go/internal/service"
	"github.com/andresuchdata/procuresmart/backend-go/pkg/logger"
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "days",
			Aliases: []string{"d"},
			Usage:   "Projection horizon in days (default from APP_DEFAULT_PROJECTION_DAYS)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (table, json, csv, xlsx); inferred from --out when omitted",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Write the report to this file instead of stdout",
		},
		&cli.BoolFlag{
			Name:  "narrative",
			Usage: "Ask the language model for a narrative over the computed plan",
		},
		&cli.StringFlag{
			Name:  "min-priority",
			Usage: "Only list items at least this pressing (Low, Medium, High, Urgent; Baixa, Media, Alta, Urgente)",
		},
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Analyze a local .xlsx, .xlsm or .csv inventory spreadsheet",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "Path to the inventory spreadsheet",
				Required: true,
			},
		}, outputFlags()...),
		Action: func(c *cli.Context) error {
			svc, err := setup(c)
			if err != nil {
				return err
			}

			path := c.String("file")
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()

			rep, err := svc.AnalyzeFile(c.Context, filepath.Base(path), f, requestFrom(c))
			if err != nil {
				return err
			}
			return emit(c, rep)
		},
	}
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Analyze a spreadsheet stored in the S3 bucket",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "key",
				Usage:    "Object key of the spreadsheet",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "publish",
				Usage: "Store an xlsx report next to the spreadsheet under reports/",
			},
		}, outputFlags()...),
		Action: func(c *cli.Context) error {
			svc, err := setup(c)
			if err != nil {
				return err
			}

			rep, err := svc.AnalyzeObject(c.Context, c.String("key"), requestFrom(c))
			if err != nil {
				return err
			}
			if c.Bool("publish") {
				key, err := svc.PublishReport(c.Context, rep, report.FormatXLSX, "")
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "report published to %s\n", key)
			}
			return emit(c, rep)
		},
	}
}

func objectsCommand() *cli.Command {
	return &cli.Command{
		Name:  "objects",
		Usage: "List the spreadsheets under STORAGE_PREFIX",
		Action: func(c *cli.Context) error {
			svc, err := setup(c)
			if err != nil {
				return err
			}
			objects, err := svc.ListObjects(c.Context)
			if err != nil {
				return err
			}
			for _, obj := range objects {
				fmt.Fprintf(c.App.Writer, "%s\t%d\n", obj.Key, obj.Size)
			}
			return nil
		},
	}
}

func driveCommand() *cli.Command {
	folderFlag := &cli.StringFlag{
		Name:    "folder",
		Usage:   "Google Drive folder id",
		EnvVars: []string{"GOOGLE_DRIVE_FOLDER_ID"},
	}

	return &cli.Command{
		Name:  "drive",
		Usage: "Work with spreadsheets stored in Google Drive",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the spreadsheets of a folder",
				Flags: []cli.Flag{folderFlag},
				Action: func(c *cli.Context) error {
					svc, err := setup(c)
					if err != nil {
						return err
					}
					files, err := svc.ListDriveFiles(c.Context, c.String("folder"))
					if err != nil {
						return err
					}
					for _, f := range files {
						fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", f.ID, f.Name, f.ModifiedTime)
					}
					return nil
				},
			},
			{
				Name:  "analyze",
				Usage: "Analyze a spreadsheet by file id",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Google Drive file id",
						Required: true,
					},
				}, outputFlags()...),
				Action: func(c *cli.Context) error {
					svc, err := setup(c)
					if err != nil {
						return err
					}
					rep, err := svc.AnalyzeDriveFile(c.Context, c.String("id"), requestFrom(c))
					if err != nil {
						return err
					}
					return emit(c, rep)
				},
			},
			{
				Name:  "pull",
				Usage: "Download every spreadsheet of a folder to a local directory",
				Flags: []cli.Flag{
					folderFlag,
					&cli.StringFlag{
						Name:  "path",
						Usage: "Folder path from My Drive root, e.g. Compras/Estoque (overrides --folder)",
					},
					&cli.StringFlag{
						Name:  "dir",
						Value: "./data/drive",
						Usage: "Destination directory",
					},
				},
				Action: func(c *cli.Context) error {
					cfg := loadConfig(c)
					driveService, err := drive.NewService(c.Context, cfg.Drive.CredentialsJSON)
					if err != nil {
						return err
					}
					folderID, err := resolveFolder(c.Context, driveService, c.String("folder"), c.String("path"))
					if err != nil {
						return err
					}
					paths, err := drive.NewDownloader(driveService).DownloadFolder(c.Context, folderID, c.String("dir"))
					if err != nil {
						return err
					}
					for _, p := range paths {
						fmt.Fprintln(c.App.Writer, p)
					}
					return nil
				},
			},
		},
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Analyze every spreadsheet in a directory and write a consolidated plan",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "dir",
				Usage:    "Directory holding the inventory spreadsheets",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "out-dir",
				Value: "./data/reports",
				Usage: "Directory for per-file reports and " + pipeline.ConsolidatedFile,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   string(report.FormatXLSX),
				Usage:   "Format of the per-file reports (json, csv, xlsx, table)",
			},
			&cli.IntFlag{
				Name:    "days",
				Aliases: []string{"d"},
				Usage:   "Projection horizon in days (default from APP_DEFAULT_PROJECTION_DAYS)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Files analyzed concurrently (default from APP_WORKER_COUNT)",
			},
			&cli.BoolFlag{
				Name:  "narrative",
				Usage: "Ask the language model for a narrative per file",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := loadConfig(c)
			svc, err := service.FromConfig(c.Context, cfg, nil)
			if err != nil {
				return err
			}
			format, err := report.ParseFormat(c.String("format"))
			if err != nil {
				return err
			}

			workers := c.Int("workers")
			if workers <= 0 {
				workers = cfg.App.WorkerCount
			}

			run, err := pipeline.NewOrchestrator(svc, pipeline.PipelineConfig{
				WorkerCount: workers,
				OutputDir:   c.String("out-dir"),
				Format:      format,
				Request:     requestFrom(c),
			}).Run(c.Context, c.String("dir"))
			if err != nil {
				return err
			}

			for _, job := range run.Jobs {
				if job.Status == pipeline.FileStatusFailed {
					fmt.Fprintf(c.App.Writer, "FAIL %s: %s\n", job.FilePath, job.ErrorMessage)
					continue
				}
				fmt.Fprintf(c.App.Writer, "ok   %s -> %s\n", job.FilePath, job.ReportPath)
			}
			fmt.Fprintf(c.App.Writer, "%d/%d files analyzed, %d items to purchase, plan written to %s\n",
				run.ProcessedFiles, run.TotalFiles, run.TotalRecommended, run.ConsolidatedReport)

			if run.Status == pipeline.StatusFailed {
				return fmt.Errorf("no file could be analyzed")
			}
			return nil
		},
	}
}

func cacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the narrative cache",
		Subcommands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "Drop every cached narrative from redis",
				Action: func(c *cli.Context) error {
					cfg := loadConfig(c)
					if !cfg.Cache.Enabled {
						fmt.Fprintln(c.App.Writer, "cache is disabled (CACHE_ENABLED=false), nothing to clear")
						return nil
					}
					store, err := cache.NewNarrativeCache(cfg.Cache)
					if err != nil {
						return err
					}
					return clearNarratives(c.Context, store, c.App.Writer)
				},
			},
		},
	}
}

func clearNarratives(ctx context.Context, store cache.NarrativeCache, w io.Writer) error {
	n, err := store.Clear(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear narrative cache: %w", err)
	}
	fmt.Fprintf(w, "%d cached narrative(s) removed\n", n)
	return nil
}

type folderFinder interface {
	FindFolderByPath(ctx context.Context, folderPath string) (string, error)
}

// resolveFolder turns --path into a folder id. Without a path, folderID is required.
func resolveFolder(ctx context.Context, finder folderFinder, folderID, folderPath string) (string, error) {
	if p := strings.Trim(strings.TrimSpace(folderPath), "/"); p != "" {
		return finder.FindFolderByPath(ctx, p)
	}
	if folderID == "" {
		return "", fmt.Errorf("either --folder (or GOOGLE_DRIVE_FOLDER_ID) or --path is required")
	}
	return folderID, nil
}

func layoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "layout",
		Usage: "Print the expected spreadsheet column layout",
		Action: func(c *cli.Context) error {
			layout := ingest.DefaultLayout()
			fmt.Fprintf(c.App.Writer, "Preferred sheet: %s (first sheet otherwise), %d header row(s)\n", layout.PreferredSheet, layout.HeaderRows)
			for _, col := range layout.Columns() {
				fmt.Fprintf(c.App.Writer, "  %-2s %s\n", col.Letter, col.Field)
			}
			return nil
		},
	}
}

func loadConfig(c *cli.Context) *config.Config {
	cfg := config.Load()
	logger.SetFormat(cfg.Log.Format, os.Stderr)
	logger.SetLevel(c.String("log-level"))
	return cfg
}

func setup(c *cli.Context) (*service.AnalysisService, error) {
	return service.FromConfig(c.Context, loadConfig(c), nil)
}

func requestFrom(c *cli.Context) service.Request {
	return service.Request{
		ProjectionDays: c.Int("days"),
		Narrative:      c.Bool("narrative"),
	}
}

func emit(c *cli.Context, rep *domain.Report) error {
	format, err := resolveFormat(c.String("format"), c.String("out"))
	if err != nil {
		return err
	}
	floor, err := report.ParseMinPriority(c.String("min-priority"))
	if err != nil {
		return err
	}
	filtered := report.FilterPriority(*rep, floor)
	rep = &filtered

	out := c.String("out")
	if out == "" {
		if format == report.FormatXLSX {
			return fmt.Errorf("xlsx output requires --out")
		}
		return report.Write(c.App.Writer, *rep, format)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := writeAndClose(f, *rep, format); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s\nreport written to %s\n", rep.Result.Summary, out)
	return nil
}

func writeAndClose(f io.WriteCloser, rep domain.Report, format report.Format) error {
	if err := report.Write(f, rep, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// resolveFormat prefers an explicit format, then the extension of out, then a table.
func resolveFormat(format, out string) (report.Format, error) {
	if format != "" {
		return report.ParseFormat(format)
	}
	switch strings.ToLower(filepath.Ext(out)) {
	case ".json":
		return report.FormatJSON, nil
	case ".csv":
		return report.FormatCSV, nil
	case ".xlsx":
		return report.FormatXLSX, nil
	}
	return report.FormatTable, nil
}
