package utils

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the scaffolding options. Flags fill it first; keys present in
// a YAML config file override them.
type Config struct {
	Aligner      string `yaml:"aligner"`
	Mm2Params    string `yaml:"mm2_params"`
	NucmerParams string `yaml:"nucmer_params"`

	MinMapQ      int `yaml:"min_mapq"`
	MinAnchorLen int `yaml:"min_anchor_len"`
	ClusterDist  int `yaml:"cluster_dist"`

	GroupingThresh    float64 `yaml:"grouping"`
	LocationThresh    float64 `yaml:"location"`
	OrientationThresh float64 `yaml:"orientation"`

	GapSize    int  `yaml:"gap_size"`
	InferGaps  bool `yaml:"infer_gaps"`
	Overwrite  bool `yaml:"overwrite"`
	Individual bool `yaml:"individual"` // write unplaced contigs individually instead of a chr0
	Graph      bool `yaml:"graph"`

	Suffix    string `yaml:"suffix"`
	Builder   string `yaml:"builder"`
	SkipFn    string `yaml:"skip_file"`
	ExcludeFn string `yaml:"exclude_file"`

	Skip    []string `yaml:"skip"`    // contig blacklist
	Exclude []string `yaml:"exclude"` // reference blacklist
}

func DefaultConfig() Config {
	return Config{
		Aligner:        "minimap2",
		Mm2Params:      "-k19 -w19 -t1",
		NucmerParams:   "-l 100 -c 500",
		MinAnchorLen:   10000,
		GroupingThresh: 0.2,
		GapSize:        100,
		Suffix:         "_SCAFFOLDED",
	}
}

// LoadConfig overlays the YAML file fn on cfg.
func LoadConfig(fn string, cfg *Config) error {
	data, err := os.ReadFile(fn)
	if err != nil {
		return fmt.Errorf("read config file: %s: %w", fn, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %s: %w", fn, err)
	}
	return nil
}

// Validate reports configuration errors that must stop the run before any
// alignment is read.
func (cfg *Config) Validate() error {
	if cfg.MinMapQ < 0 {
		return fmt.Errorf("min_mapq: %d must be >= 0", cfg.MinMapQ)
	}
	if cfg.MinAnchorLen < 0 {
		return fmt.Errorf("min_anchor_len: %d must be >= 0", cfg.MinAnchorLen)
	}
	if cfg.GapSize < 0 {
		return fmt.Errorf("gap_size: %d must be >= 0", cfg.GapSize)
	}
	if cfg.ClusterDist < 0 {
		return fmt.Errorf("cluster_dist: %d must be >= 0", cfg.ClusterDist)
	}
	// thresholds outside [0,1] are accepted, they place everything or nothing
	for name, v := range map[string]float64{"grouping": cfg.GroupingThresh, "location": cfg.LocationThresh, "orientation": cfg.OrientationThresh} {
		if math.IsNaN(v) {
			return fmt.Errorf("%s confidence threshold: %v is not a number", name, v)
		}
	}
	return nil
}

// LoadBlacklists appends the headers listed in SkipFn and ExcludeFn to Skip
// and Exclude.
func (cfg *Config) LoadBlacklists() (err error) {
	if cfg.SkipFn != "" {
		var hs []string
		if hs, err = ReadHeaderList(cfg.SkipFn); err != nil {
			return err
		}
		cfg.Skip = append(cfg.Skip, hs...)
	}
	if cfg.ExcludeFn != "" {
		var hs []string
		if hs, err = ReadHeaderList(cfg.ExcludeFn); err != nil {
			return err
		}
		cfg.Exclude = append(cfg.Exclude, hs...)
	}
	return nil
}

// ReadHeaderList reads a single column text file of sequence headers.
func ReadHeaderList(fn string) (hs []string, err error) {
	fp, err := os.Open(fn)
	if err != nil {
		return nil, fmt.Errorf("open header list: %s: %w", fn, err)
	}
	defer fp.Close()
	sc := bufio.NewScanner(fp)
	for sc.Scan() {
		h := strings.TrimRight(sc.Text(), " \t\r")
		if h == "" {
			continue
		}
		hs = append(hs, h)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read header list: %s: %w", fn, err)
	}
	return hs, nil
}
