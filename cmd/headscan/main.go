package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/ironsheep/notehead-scan/internal/calibration"
	"github.com/ironsheep/notehead-scan/internal/config"
	"github.com/ironsheep/notehead-scan/internal/imaging"
	"github.com/ironsheep/notehead-scan/internal/pipeline"
)

const appName = "headscan"

var (
	Version   = "dev"
	GitCommit = "unknown"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// detectOptions holds the flags of the detect command.
type detectOptions struct {
	image           string
	layout          string
	configPath      string
	calibrationPath string
	saveCalibration bool
	overlayPath     string
	workers         int
	logLevel        string
}

func runDetect(ctx context.Context, opts *detectOptions, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	logger := config.NewLogger(stderr, cfg.LogLevel)

	popts := pipeline.Options{
		Config:  cfg,
		Overlay: opts.overlayPath != "",
		Logger:  logger,
	}
	if opts.calibrationPath != "" {
		if popts.Calibration, err = calibration.LoadFile(opts.calibrationPath); err != nil {
			return err
		}
	} else if opts.saveCalibration {
		return fmt.Errorf("--save-calibration requires --calibration")
	}

	res, err := pipeline.RunFiles(ctx, imaging.NewImageCache(), opts.image, opts.layout, popts)
	if err != nil {
		return err
	}

	if opts.saveCalibration {
		if err := res.Sheet.Calibration.SaveFile(opts.calibrationPath); err != nil {
			return err
		}
		logger.Info("calibration saved", "path", opts.calibrationPath, "offsets", res.Sheet.Calibration.Len())
	}
	if res.Overlay != nil {
		if err := writeOverlay(opts.overlayPath, res.Overlay); err != nil {
			return err
		}
		logger.Info("overlay written", "path", opts.overlayPath, "boxes", res.Overlay.BoxCount)
		res.Overlay = nil
	}

	return writeJSON(stdout, res)
}

func writeOverlay(path string, ov *imaging.OverlayResult) error {
	data, err := base64.StdEncoding.DecodeString(ov.ImageBase64)
	if err != nil {
		return fmt.Errorf("decoding overlay: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing overlay: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var showVersion bool

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Detect note heads on scanned music pages",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(stdout, "%s version: %s-%s\n", appName, Version, GitCommit)
				return nil
			}
			return cmd.Help()
		},
	}
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Print version and exit")
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	opts := &detectOptions{}
	detectCmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect the note heads of a page and print them as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd.Context(), opts, stdout, stderr)
		},
	}
	detectCmd.Flags().StringVarP(&opts.image, "image", "i", "", "Page image (PNG, JPEG or GIF)")
	detectCmd.Flags().StringVarP(&opts.layout, "layout", "l", "", "YAML layout document of the page")
	detectCmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration overriding the defaults")
	detectCmd.Flags().StringVar(&opts.calibrationPath, "calibration", "", "YAML seed-offset calibration to start from")
	detectCmd.Flags().BoolVar(&opts.saveCalibration, "save-calibration", false, "Write the updated calibration back")
	detectCmd.Flags().StringVarP(&opts.overlayPath, "overlay", "o", "", "Write the page with detected heads outlined to this PNG")
	detectCmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Systems processed concurrently (overrides the configuration)")
	detectCmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	_ = detectCmd.MarkFlagRequired("image")
	_ = detectCmd.MarkFlagRequired("layout")

	calibrationCmd := &cobra.Command{
		Use:   "calibration <file>",
		Short: "Print the seed offsets of a calibration file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			offsets, err := calibration.LoadFile(args[0])
			if err != nil {
				return err
			}
			return writeJSON(stdout, offsets.Records())
		},
	}

	rootCmd.AddCommand(detectCmd, calibrationCmd)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		slog.Error("Error executing command", "error", err)
		os.Exit(1)
	}
}
