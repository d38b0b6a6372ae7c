package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

type Config struct {
	TextDir       string `env:"TEXT_DIR"`
	AnnotationDir string `env:"ANNOTATION_DIR"`
	OutputDir     string `env:"OUTPUT_DIR" envDefault:"./eval_results"`
	CacheDir      string `env:"CACHE_DIR"`

	ModelName       string `env:"MODEL_NAME" envDefault:"model"`
	LabelsFile      string `env:"LABELS_FILE"`
	OutsideLabel    string `env:"OUTSIDE_LABEL" envDefault:"O"`
	LowercaseLabels bool   `env:"LOWERCASE_LABELS" envDefault:"true"`
	Workers         int    `env:"WORKERS" envDefault:"1"`

	DatabaseURL string `env:"DATABASE_URL"`

	// StorageDir publishes to and fetches from a directory instead of S3.
	StorageDir        string `env:"STORAGE_DIR"`
	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	ResultsBucket     string `env:"RESULTS_BUCKET"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.TextDir == "" {
		return fmt.Errorf("text directory must be set")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must be set")
	}
	if c.ModelName == "" {
		return fmt.Errorf("model name must be set")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// LabelSet is the ordered set of labels to score. The order is the order of
// the score reports and of the reconstructed annotations.
type LabelSet struct {
	Outside string   `yaml:"outside"`
	Labels  []string `yaml:"labels"`
}

func LoadLabelSet(path string, lowercase bool) (LabelSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LabelSet{}, fmt.Errorf("error reading label file %s: %w", path, err)
	}
	return ParseLabelSet(data, lowercase)
}

// ParseLabelSet decodes a label file, dropping blank and repeated labels and
// the outside label itself.
func ParseLabelSet(data []byte, lowercase bool) (LabelSet, error) {
	var raw LabelSet
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return LabelSet{}, fmt.Errorf("error decoding label file: %w", err)
	}

	set := LabelSet{Outside: strings.TrimSpace(raw.Outside)}
	seen := make(map[string]bool)

	for _, label := range raw.Labels {
		label = strings.TrimSpace(label)
		if label == "" || strings.EqualFold(label, set.Outside) {
			continue
		}
		if lowercase {
			label = strings.ToLower(label)
		}
		if seen[label] {
			continue
		}
		seen[label] = true
		set.Labels = append(set.Labels, label)
	}

	if len(set.Labels) == 0 {
		return LabelSet{}, fmt.Errorf("label file does not list any labels")
	}

	return set, nil
}
