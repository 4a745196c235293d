// Package main runs the recognition pipeline over a labeled gesture
// corpus and reports ranking quality and latency. Results can be
// persisted to the evaluation database for regression tracking and
// plotted as PNGs for eyeballing a tuning change.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/featherkey/swipekit/internal/config"
	"github.com/featherkey/swipekit/internal/db"
	"github.com/featherkey/swipekit/internal/swipe/eval"
	"github.com/featherkey/swipekit/internal/swipe/keymap"
	"github.com/featherkey/swipekit/internal/swipe/lexicon"
	"github.com/featherkey/swipekit/internal/swipe/rank"
)

// Config holds configuration for the accuracy evaluation.
type Config struct {
	CorpusFile  string
	DictFile    string
	LayoutFile  string
	BoardWidth  float64
	BoardHeight float64
	TuningFile  string
	Workers     int
	TopN        int
	DBFile      string
	Notes       string
	PlotDir     string
	OutputJSON  string
	Verbose     bool
}

func main() {
	cfg := parseFlags()

	if cfg.CorpusFile == "" {
		log.Fatal("Corpus file is required (-corpus)")
	}
	if cfg.DictFile == "" {
		log.Fatal("Dictionary file is required (-dict)")
	}

	rep, paramsJSON, err := runEval(cfg)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	printReport(rep)

	if cfg.DBFile != "" {
		persistReport(cfg, rep, paramsJSON)
	}

	if cfg.PlotDir != "" {
		if err := writePlots(rep, cfg.PlotDir); err != nil {
			log.Printf("Warning: failed to write plots: %v", err)
		} else {
			log.Printf("Plots written to %s", cfg.PlotDir)
		}
	}

	if cfg.OutputJSON != "" {
		if err := exportJSON(rep, cfg.OutputJSON); err != nil {
			log.Printf("Warning: failed to export JSON: %v", err)
		} else {
			log.Printf("Results exported to: %s", cfg.OutputJSON)
		}
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.CorpusFile, "corpus", "", "Path to corpus JSON file")
	flag.StringVar(&cfg.DictFile, "dict", "", "Path to word list file")
	flag.StringVar(&cfg.LayoutFile, "layout", "", "Path to layout JSON (default: built-in QWERTY)")
	flag.Float64Var(&cfg.BoardWidth, "width", 1000, "Built-in QWERTY board width in px")
	flag.Float64Var(&cfg.BoardHeight, "height", 300, "Built-in QWERTY board height in px")
	flag.StringVar(&cfg.TuningFile, "tuning", "", "Path to tuning overlay JSON")
	flag.IntVar(&cfg.Workers, "workers", 0, "Scoring workers (0 = one per CPU)")
	flag.IntVar(&cfg.TopN, "top", rank.DefaultTopN, "Ranked words to record per case")
	flag.StringVar(&cfg.DBFile, "db", "", "Persist the run to this SQLite database")
	flag.StringVar(&cfg.Notes, "notes", "", "Free-form note stored with the persisted run")
	flag.StringVar(&cfg.PlotDir, "plot", "", "Write residuals.png and latency.png to this directory")
	flag.StringVar(&cfg.OutputJSON, "json", "", "Output JSON filename (e.g., results.json)")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Log every case outcome")

	flag.Parse()

	return cfg
}

func runEval(cfg Config) (*eval.Report, json.RawMessage, error) {
	log.Printf("Loading corpus: %s", cfg.CorpusFile)
	corpus, err := eval.LoadCorpus(cfg.CorpusFile)
	if err != nil {
		return nil, nil, err
	}

	layout, err := loadLayout(cfg)
	if err != nil {
		return nil, nil, err
	}
	geom, err := keymap.NewGeometry(layout, keymap.DefaultGeometryParams())
	if err != nil {
		return nil, nil, err
	}

	lex, err := loadLexicon(cfg.DictFile)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Corpus %q: %d cases against %d words on %s", corpus.Name, len(corpus.Cases), lex.Len(), layout.Name)

	opts := rank.DefaultOptions()
	var paramsJSON json.RawMessage
	if cfg.TuningFile != "" {
		tuning, err := config.LoadTuningConfig(cfg.TuningFile)
		if err != nil {
			return nil, nil, fmt.Errorf("load tuning: %w", err)
		}
		opts = rank.OptionsFromTuning(tuning)
		// Only the fields the overlay set serialize, so the stored params
		// show exactly what differed from the defaults.
		paramsJSON, err = json.Marshal(tuning)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal tuning: %w", err)
		}
		log.Printf("Loaded tuning overlay from %s", cfg.TuningFile)
	}
	opts.Workers = cfg.Workers

	h, err := eval.NewHarness(geom, lex, opts, eval.HarnessConfig{
		TopN:     cfg.TopN,
		LogCases: cfg.Verbose,
	})
	if err != nil {
		return nil, nil, err
	}
	return h.Run(corpus), paramsJSON, nil
}

func loadLayout(cfg Config) (keymap.Layout, error) {
	if cfg.LayoutFile != "" {
		return keymap.LoadLayout(cfg.LayoutFile)
	}
	return keymap.QWERTY(cfg.BoardWidth, cfg.BoardHeight), nil
}

func loadLexicon(path string) (*lexicon.Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()

	words, err := lexicon.ParseWordList(f)
	if err != nil {
		return nil, err
	}
	return lexicon.New(words), nil
}

func printReport(rep *eval.Report) {
	fmt.Println("\n=== Accuracy Evaluation Results ===")
	fmt.Printf("Run ID: %s\n", rep.RunID)
	fmt.Printf("Corpus: %s (%s)\n", rep.Corpus, rep.Layout)
	fmt.Printf("Cases: %d   Dictionary: %d words\n", rep.CaseCount, rep.LexiconSize)

	fmt.Println("\n--- Ranking Quality ---")
	fmt.Printf("Top-1 accuracy: %.1f%%\n", rep.Top1Rate*100)
	fmt.Printf("Top-3 accuracy: %.1f%%\n", rep.Top3Rate*100)
	fmt.Printf("Mean reciprocal rank: %.3f\n", rep.MRR)
	fmt.Printf("Mean residual: %.3f\n", rep.MeanResidual)
	fmt.Printf("Prune losses: %d\n", rep.PruneLosses)

	fmt.Println("\n--- Latency ---")
	fmt.Printf("Mean: %.0f µs\n", rep.MeanElapsedUs)
	fmt.Printf("P95:  %.0f µs\n", rep.P95ElapsedUs)

	var misses []eval.CaseResult
	for _, c := range rep.Cases {
		if c.Rank != 1 {
			misses = append(misses, c)
		}
	}
	if len(misses) > 0 {
		fmt.Println("\n--- Cases Not Ranked First ---")
		for _, c := range misses {
			fmt.Printf("  %-24s expected %-14q %s\n", c.CaseID, c.Expected, missStatus(c))
		}
	}
}

func missStatus(c eval.CaseResult) string {
	switch {
	case c.Degenerate:
		return "degenerate gesture"
	case c.Pruned:
		return "pruned before ranking"
	case c.Rank == 0:
		return "did not rank"
	default:
		return fmt.Sprintf("ranked #%d (residual %.3f)", c.Rank, c.Residual)
	}
}

func persistReport(cfg Config, rep *eval.Report, paramsJSON json.RawMessage) {
	database, err := db.NewDB(cfg.DBFile)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	store := eval.NewStore(database.DB)
	if err := store.SaveReport(rep, paramsJSON, cfg.Notes); err != nil {
		log.Fatalf("Failed to persist run: %v", err)
	}
	log.Printf("Run %s persisted to %s", rep.RunID, cfg.DBFile)
}

func writePlots(rep *eval.Report, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create plot dir: %w", err)
	}
	if err := plotResiduals(rep, filepath.Join(dir, "residuals.png")); err != nil {
		return err
	}
	return plotLatency(rep, filepath.Join(dir, "latency.png"))
}

// plotResiduals scatters the expected word's residual per case, hits and
// misses in separate colors. Misses sit on the 1.0 line.
func plotResiduals(rep *eval.Report, file string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Expected-Word Residuals - %s", rep.Corpus)
	p.X.Label.Text = "Case"
	p.Y.Label.Text = "Residual"
	p.Y.Min, p.Y.Max = 0, 1.05

	hits := make(plotter.XYs, 0, len(rep.Cases))
	var misses plotter.XYs
	for i, c := range rep.Cases {
		pt := plotter.XY{X: float64(i), Y: c.Residual}
		if c.Rank == 1 {
			hits = append(hits, pt)
		} else {
			misses = append(misses, pt)
		}
	}

	if len(hits) > 0 {
		sc, err := plotter.NewScatter(hits)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = color.RGBA{G: 180, A: 255}
		sc.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(sc)
		p.Legend.Add("top-1 hit", sc)
	}
	if len(misses) > 0 {
		sc, err := plotter.NewScatter(misses)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = color.RGBA{R: 220, A: 255}
		sc.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(sc)
		p.Legend.Add("miss", sc)
	}
	p.Legend.Top = true

	return p.Save(10*vg.Inch, 5*vg.Inch, file)
}

// plotLatency draws per-case recognition time with the p95 as a dashed
// reference line.
func plotLatency(rep *eval.Report, file string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Per-Case Latency - %s", rep.Corpus)
	p.X.Label.Text = "Case"
	p.Y.Label.Text = "Elapsed (µs)"

	pts := make(plotter.XYs, 0, len(rep.Cases))
	for i, c := range rep.Cases {
		pts = append(pts, plotter.XY{X: float64(i), Y: float64(c.Elapsed.Microseconds())})
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{B: 200, A: 255}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("elapsed", line)

	if len(rep.Cases) > 1 {
		ref := plotter.XYs{
			{X: 0, Y: rep.P95ElapsedUs},
			{X: float64(len(rep.Cases) - 1), Y: rep.P95ElapsedUs},
		}
		refLine, err := plotter.NewLine(ref)
		if err != nil {
			return err
		}
		refLine.Color = color.RGBA{R: 220, A: 255}
		refLine.Width = vg.Points(1)
		refLine.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(refLine)
		p.Legend.Add("p95", refLine)
	}
	p.Legend.Top = true

	return p.Save(10*vg.Inch, 5*vg.Inch, file)
}

func exportJSON(rep *eval.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rep)
}
