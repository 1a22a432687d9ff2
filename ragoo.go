package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jwaldrip/odin/cli"
	"github.com/mudesheng/ragoo/align"
	"github.com/mudesheng/ragoo/pipeline"
	"github.com/mudesheng/ragoo/scaffold"
	"github.com/mudesheng/ragoo/utils"
)

var app = cli.New("2.0.0", "Scaffold contigs according to alignments to a reference", func(c cli.Command) {})

func defineAlignFlags(sc *cli.SubCommand) {
	sc.DefineStringFlag("aligner", "minimap2", "Aligner ('nucmer' or 'minimap2') to use for scaffolding. PATHs allowed")
	sc.DefineStringFlag("mm2-params", "-k19 -w19 -t1", "Space delimited parameters to pass directly to minimap2")
	sc.DefineStringFlag("nucmer-params", "-l 100 -c 500", "Space delimited parameters to pass directly to nucmer")
	sc.DefineBoolFlag("w", false, "overwrite pre-existing intermediate files")
}

func defineOrderFlags(sc *cli.SubCommand) {
	sc.DefineStringFlag("e", "", "single column text file of reference headers to ignore")
	sc.DefineStringFlag("j", "", "single column text file of contigs to automatically leave unplaced")
	sc.DefineIntFlag("g", 100, "gap size for padding in pseudomolecules")
	sc.DefineIntFlag("l", 10000, "minimum unique alignment length to use for scaffolding")
	sc.DefineIntFlag("q", 0, "minimum mapping quality value for alignments, only pertains to aligners reporting mapq")
	sc.DefineFloat64Flag("i", 0.2, "minimum grouping confidence score needed to be localized")
	sc.DefineFloat64Flag("a", 0.0, "minimum location confidence score needed to be localized")
	sc.DefineFloat64Flag("d", 0.0, "minimum orientation confidence score needed to be localized")
	sc.DefineBoolFlag("r", false, "infer gap pad sizes from the reference. '-g' is used when adjacent contigs overlap")
	sc.DefineIntFlag("cluster-dist", 0, "max distance between alignments of one location cluster, default[0] for the contig length")
	sc.DefineStringFlag("suffix", "_SCAFFOLDED", "suffix added to reference headers in the orderings file")
	sc.DefineBoolFlag("graph", false, "output dot graph file of the layout")
}

func init() {
	app.DefineStringFlag("o", "ragoo_output", "output directory name")
	app.DefineIntFlag("t", 1, "number of CPU used")
	app.DefineStringFlag("cfg", "", "YAML configure file, its keys override the flags")

	al := app.DefineSubCommand("align", "align the query to the reference", Align, "reference", "query")
	{
		defineAlignFlags(al)
	}
	or := app.DefineSubCommand("order", "order and orient contigs from an alignment file (*.paf | *.coords | *.sam | *.bam)", Order, "alignments")
	{
		defineOrderFlags(or)
		or.DefineStringFlag("query", "", "query fasta file, lists contigs without alignments as unplaced")
		or.DefineBoolFlag("w", false, "overwrite pre-existing intermediate files")
	}
	run := app.DefineSubCommand("run", "align, order and build scaffolds", Run, "reference", "query")
	{
		defineAlignFlags(run)
		defineOrderFlags(run)
		run.DefineBoolFlag("C", false, "write unplaced contigs individually instead of making a chr0")
		run.DefineStringFlag("builder", "", "scaffold building program called with the orderings file, skipped when empty")
	}
}

func flagInt(c cli.Command, name string) int {
	v, ok := c.Flag(name).Get().(int)
	if !ok {
		log.Fatalf("[checkArgs] argument '%s': %v set error\n", name, c.Flag(name).String())
	}
	return v
}

func flagFloat(c cli.Command, name string) float64 {
	v, ok := c.Flag(name).Get().(float64)
	if !ok {
		log.Fatalf("[checkArgs] argument '%s': %v set error\n", name, c.Flag(name).String())
	}
	return v
}

func flagBool(c cli.Command, name string) bool {
	v, ok := c.Flag(name).Get().(bool)
	if !ok {
		log.Fatalf("[checkArgs] argument '%s': %v set error\n", name, c.Flag(name).String())
	}
	return v
}

// checkArgs reads the flags the subcommand defines, overlays the config file
// and validates the result.
func checkArgs(c cli.Command, gOpt utils.ArgsOpt, alignFlags, orderFlags bool) (cfg utils.Config) {
	cfg = utils.DefaultConfig()
	cfg.Overwrite = flagBool(c, "w")
	if alignFlags {
		cfg.Aligner = c.Flag("aligner").String()
		cfg.Mm2Params = c.Flag("mm2-params").String()
		cfg.NucmerParams = c.Flag("nucmer-params").String()
	}
	if orderFlags {
		cfg.ExcludeFn = c.Flag("e").String()
		cfg.SkipFn = c.Flag("j").String()
		cfg.GapSize = flagInt(c, "g")
		cfg.MinAnchorLen = flagInt(c, "l")
		cfg.MinMapQ = flagInt(c, "q")
		cfg.GroupingThresh = flagFloat(c, "i")
		cfg.LocationThresh = flagFloat(c, "a")
		cfg.OrientationThresh = flagFloat(c, "d")
		cfg.InferGaps = flagBool(c, "r")
		cfg.ClusterDist = flagInt(c, "cluster-dist")
		cfg.Suffix = c.Flag("suffix").String()
		cfg.Graph = flagBool(c, "graph")
	}
	if gOpt.CfgFn != "" {
		if err := utils.LoadConfig(gOpt.CfgFn, &cfg); err != nil {
			log.Fatalf("[checkArgs] %v\n", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[checkArgs] %v\n", err)
	}
	if alignFlags {
		if _, err := align.ParseAligner(cfg.Aligner); err != nil {
			log.Fatalf("[checkArgs] %v\n", err)
		}
	}
	if err := cfg.LoadBlacklists(); err != nil {
		log.Fatalf("[checkArgs] %v\n", err)
	}
	return cfg
}

func absParam(c cli.Command, name string) string {
	fn := c.Param(name).String()
	if fn == "" {
		log.Fatalf("[checkArgs] param '%s' not set\n", name)
	}
	afn, err := filepath.Abs(fn)
	if err != nil {
		log.Fatalf("[checkArgs] param '%s': %v\n", name, err)
	}
	return afn
}

func runAligner(ctx context.Context, cfg utils.Config, gOpt utils.ArgsOpt, refFn, queryFn string) string {
	aligner, err := align.ParseAligner(cfg.Aligner)
	if err != nil {
		log.Fatalf("[runAligner] %v\n", err)
	}
	if err := os.MkdirAll(gOpt.OutDir, 0755); err != nil {
		log.Fatalf("[runAligner] create output directory: %s failed, err: %v\n", gOpt.OutDir, err)
	}
	params := cfg.Mm2Params
	if aligner == align.Nucmer {
		params = cfg.NucmerParams
	}
	fmt.Printf("[runAligner] Aligning the query to the reference with %v\n", aligner)
	r := align.NewRunner(aligner, align.RunOpt{
		Exe:       cfg.Aligner,
		Params:    params,
		RefFn:     refFn,
		QueryFn:   queryFn,
		Prefix:    filepath.Join(gOpt.OutDir, "query_against_ref"),
		Overwrite: cfg.Overwrite,
	})
	alnFn, err := r.Run(ctx)
	if err != nil {
		log.Fatalf("[runAligner] %v\n", err)
	}
	return alnFn
}

func Align(c cli.Command) {
	gOpt, suc := utils.CheckGlobalArgs(c.Parent())
	if suc == false {
		log.Fatalf("[Align] check global Arguments error, opt: %v\n", gOpt)
	}
	cfg := checkArgs(c, gOpt, true, false)
	alnFn := runAligner(context.Background(), cfg, gOpt, absParam(c, "reference"), absParam(c, "query"))
	fmt.Printf("[Align] alignments: %s\n", alnFn)
}

func Order(c cli.Command) {
	gOpt, suc := utils.CheckGlobalArgs(c.Parent())
	if suc == false {
		log.Fatalf("[Order] check global Arguments error, opt: %v\n", gOpt)
	}
	cfg := checkArgs(c, gOpt, false, true)
	fmt.Printf("Arguments: %+v\n", cfg)
	in := pipeline.Input{AlignFn: absParam(c, "alignments"), QueryFn: c.Flag("query").String(), OutDir: gOpt.OutDir, NumCPU: gOpt.NumCPU}
	if _, err := pipeline.Run(context.Background(), cfg, in); err != nil {
		log.Fatalf("[Order] %v\n", err)
	}
}

func Run(c cli.Command) {
	gOpt, suc := utils.CheckGlobalArgs(c.Parent())
	if suc == false {
		log.Fatalf("[Run] check global Arguments error, opt: %v\n", gOpt)
	}
	cfg := checkArgs(c, gOpt, true, true)
	if flagBool(c, "C") {
		cfg.Individual = true
	}
	if b := c.Flag("builder").String(); b != "" {
		cfg.Builder = b
	}
	fmt.Printf("Arguments: %+v\n", cfg)
	ctx := context.Background()
	refFn, queryFn := absParam(c, "reference"), absParam(c, "query")

	alnFn := runAligner(ctx, cfg, gOpt, refFn, queryFn)
	in := pipeline.Input{AlignFn: alnFn, QueryFn: queryFn, OutDir: gOpt.OutDir, NumCPU: gOpt.NumCPU}
	res, err := pipeline.Run(ctx, cfg, in)
	if err != nil {
		log.Fatalf("[Run] %v\n", err)
	}

	if cfg.Builder == "" {
		fmt.Printf("[Run] no scaffold builder set, orderings left in: %s\n", res.OrderingsFn)
		return
	}
	fmt.Printf("[Run] Writing scaffolds\n")
	var b scaffold.Builder = &scaffold.ExecBuilder{Exe: cfg.Builder, Out: filepath.Join(gOpt.OutDir, "ragoo.fasta")}
	if err := b.Build(ctx, res.OrderingsFn, queryFn, cfg.GapSize, !cfg.Individual); err != nil {
		log.Fatalf("[Run] %v\n", err)
	}
}

func main() {
	app.Start()
}
