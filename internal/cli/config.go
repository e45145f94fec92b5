package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ozoops/health5070/internal/pipeline"
)

// loadConfig layers the config file, the environment and the --out flag.
func loadConfig(cmd *cobra.Command) (pipeline.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := pipeline.LoadFile(path)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if f := cmd.Flags().Lookup("out"); f != nil && f.Changed {
		cfg.OutDir = f.Value.String()
	}
	if f := cmd.Flags().Lookup("concurrency"); f != nil && f.Changed {
		n, _ := cmd.Flags().GetInt("concurrency")
		cfg.Concurrency = n
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	log, err := newLogger(verbose)
	if err != nil {
		return cfg, err
	}
	cfg.Logger = log
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// readText returns the inline value, else the named file ("-" is stdin).
func readText(cmd *cobra.Command, inline, file string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if file == "" {
		return "", nil
	}
	var (
		b   []byte
		err error
	)
	if file == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	return strings.TrimSpace(string(b)), nil
}
