package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ozoops/health5070/internal/pipeline"
)

func newScriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Summarise an article into a narration script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString("article-file")
			if file == "" {
				return errors.New("--article-file is required")
			}
			article, err := readText(cmd, "", file)
			if err != nil {
				return err
			}
			if strings.TrimSpace(article) == "" {
				return errors.New("article is empty")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = cfg.Logger.Sync() }()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()

			prod, err := pipeline.New(ctx, cfg)
			if err != nil {
				return err
			}
			s, err := prod.WriteScript(ctx, article)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
			return err
		},
	}
	cmd.Flags().String("article-file", "", "Article text file (- for stdin)")
	return cmd
}
