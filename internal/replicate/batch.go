package replicate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Job is one image to generate.
type Job struct {
	Name        string `yaml:"name"`
	Prompt      string `yaml:"prompt"`
	AspectRatio string `yaml:"aspect_ratio"`
	Format      string `yaml:"format"`
}

type Manifest struct {
	Defaults struct {
		AspectRatio string `yaml:"aspect_ratio"`
		Format      string `yaml:"format"`
	} `yaml:"defaults"`
	Images []Job `yaml:"images"`
}

func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	err = yaml.Unmarshal(raw, &m)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	for i := range m.Images {
		job := &m.Images[i]
		if job.Name == "" || job.Prompt == "" {
			return nil, fmt.Errorf("image #%d: name and prompt are required", i+1)
		}
		if job.AspectRatio == "" {
			job.AspectRatio = m.Defaults.AspectRatio
		}
		if job.Format == "" {
			job.Format = m.Defaults.Format
		}
		if job.Format == "" {
			job.Format = "webp"
		}
	}

	return &m, nil
}

func (j Job) FileName() string {
	return j.Name + "." + j.Format
}

func (j Job) Input() map[string]interface{} {
	in := map[string]interface{}{
		"prompt":        j.Prompt,
		"output_format": j.Format,
	}
	if j.AspectRatio != "" {
		in["aspect_ratio"] = j.AspectRatio
	}
	return in
}

type Generator interface {
	Generate(ctx context.Context, input map[string]interface{}) (*Prediction, error)
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

type Result struct {
	Job     Job
	Path    string
	Skipped bool
	Err     error
}

// RunBatch generates every job into outDir. Existing files are kept unless force is set.
// A failing job does not stop the batch.
func RunBatch(ctx context.Context, gen Generator, jobs []Job, outDir string, force bool, logger *zap.Logger) []Result {
	results := make([]Result, 0, len(jobs))

	for _, job := range jobs {
		path := filepath.Join(outDir, job.FileName())
		log := logger.With(zap.String("image", job.Name), zap.String("path", path))

		if !force {
			if _, err := os.Stat(path); err == nil {
				log.Info("image exists, skipping")
				results = append(results, Result{Job: job, Path: path, Skipped: true})
				continue
			}
		}

		err := generateOne(ctx, gen, job, path)
		if err != nil {
			log.Error("failed to generate image", zap.Error(err))
			if ctx.Err() != nil {
				results = append(results, Result{Job: job, Path: path, Err: err})
				return results
			}
		} else {
			log.Info("image written")
		}
		results = append(results, Result{Job: job, Path: path, Err: err})
	}

	return results
}

func generateOne(ctx context.Context, gen Generator, job Job, path string) error {
	p, err := gen.Generate(ctx, job.Input())
	if err != nil {
		return err
	}

	urls, err := p.URLs()
	if err != nil {
		return err
	}

	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	_, err = gen.Download(ctx, urls[0], f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}
