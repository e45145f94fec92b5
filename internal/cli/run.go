package cli

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ozoops/health5070/internal/pipeline"
)

func newProduceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "produce",
		Short: "Render one narrated video from a title and script",
		Args:  cobra.NoArgs,
		RunE:  runProduce,
	}
	cmd.Flags().String("owner", "", "Article ID the video belongs to")
	cmd.Flags().String("title", "", "Video title")
	cmd.Flags().String("script", "", "Narration script")
	cmd.Flags().String("script-file", "", "Read the script from a file (- for stdin)")
	cmd.Flags().String("out", "generated_videos", "Output directory")
	cmd.Flags().Int("concurrency", 3, "Scenes prepared in parallel")
	cmd.Flags().Duration("timeout", 3*time.Hour, "Abort the run after this long")
	cmd.Flags().Bool("no-record", false, "Do not store a video record")
	return cmd
}

func runProduce(cmd *cobra.Command, _ []string) error {
	owner, _ := cmd.Flags().GetString("owner")
	title, _ := cmd.Flags().GetString("title")
	inline, _ := cmd.Flags().GetString("script")
	file, _ := cmd.Flags().GetString("script-file")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	noRecord, _ := cmd.Flags().GetBool("no-record")

	if strings.TrimSpace(owner) == "" {
		return errors.New("--owner is required")
	}
	if strings.TrimSpace(title) == "" {
		return errors.New("--title is required")
	}
	script, err := readText(cmd, inline, file)
	if err != nil {
		return err
	}
	if strings.TrimSpace(script) == "" {
		return errors.New("--script or --script-file is required")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = cfg.Logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prod, err := pipeline.New(ctx, cfg)
	if err != nil {
		return err
	}

	var out any
	if noRecord {
		out, err = prod.ProduceVideo(ctx, owner, title, script)
	} else {
		out, err = prod.ProduceAndRecord(ctx, owner, title, script)
	}
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
