package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"majaz-portal/internal/logger"
	"majaz-portal/internal/replicate"
)

var (
	manifestPath string
	outDir       string
	force        bool
	only         []string
)

var rootCmd = &cobra.Command{
	Use:   "genimages",
	Short: "Generate site imagery on Replicate from a YAML manifest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		var cfg struct {
			Logger    logger.Config
			Replicate replicate.Config
		}
		err := cleanenv.ReadEnv(&cfg)
		if err != nil {
			return fmt.Errorf("cannot read environment: %w", err)
		}

		log, err := logger.New(&cfg.Logger)
		if err != nil {
			return err
		}
		defer log.Sync()

		manifest, err := replicate.LoadManifest(manifestPath)
		if err != nil {
			return err
		}

		jobs := manifest.Images
		if len(only) > 0 {
			jobs = filterJobs(jobs, only)
		}

		err = os.MkdirAll(outDir, 0o755)
		if err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}

		client := replicate.New(&cfg.Replicate, log)
		results := replicate.RunBatch(ctx, client, jobs, outDir, force, log)

		var failed, skipped int
		for _, r := range results {
			switch {
			case r.Err != nil:
				failed++
			case r.Skipped:
				skipped++
			}
		}
		log.Info("batch finished",
			zap.Int("total", len(jobs)),
			zap.Int("skipped", skipped),
			zap.Int("failed", failed),
		)

		if failed > 0 {
			return fmt.Errorf("%d of %d images failed", failed, len(jobs))
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "images.yaml", "YAML file listing the images to generate")
	rootCmd.Flags().StringVarP(&outDir, "out", "o", "public/images", "Directory the images are written to")
	rootCmd.Flags().BoolVar(&force, "force", false, "Regenerate images that already exist")
	rootCmd.Flags().StringSliceVar(&only, "only", nil, "Generate only the named images")
}

func filterJobs(jobs []replicate.Job, names []string) []replicate.Job {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var out []replicate.Job
	for _, j := range jobs {
		if want[j.Name] {
			out = append(out, j)
		}
	}
	return out
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
