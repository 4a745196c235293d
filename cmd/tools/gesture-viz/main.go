// Package main renders a recorded gesture over its keyboard layout as a
// standalone HTML chart: key centers, raw samples, detected vertices,
// dwells and anchors, plus the matched letter points for one word and a
// top-candidate bar chart when a dictionary is given. The board is drawn
// keyboard-style, top row up.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/featherkey/swipekit/internal/swipe/eval"
	"github.com/featherkey/swipekit/internal/swipe/keymap"
	"github.com/featherkey/swipekit/internal/swipe/lexicon"
	"github.com/featherkey/swipekit/internal/swipe/rank"
	"github.com/featherkey/swipekit/internal/swipe/score"
	"github.com/featherkey/swipekit/internal/swipe/signal"
	"github.com/featherkey/swipekit/internal/swipe/touch"
)

// Config holds configuration for the gesture visualization.
type Config struct {
	GestureFile string
	LayoutFile  string
	BoardWidth  float64
	BoardHeight float64
	DictFile    string
	Word        string
	TopN        int
	OutFile     string
}

func main() {
	cfg := parseFlags()

	if cfg.GestureFile == "" {
		log.Fatal("Gesture file is required (-gesture)")
	}

	layout, err := loadLayout(cfg)
	if err != nil {
		log.Fatalf("Failed to load layout: %v", err)
	}
	geom, err := keymap.NewGeometry(layout, keymap.DefaultGeometryParams())
	if err != nil {
		log.Fatalf("Invalid layout: %v", err)
	}

	gesture, err := eval.LoadCase(cfg.GestureFile)
	if err != nil {
		log.Fatalf("Failed to load gesture: %v", err)
	}
	points := gesture.SwipePoints()
	sig := signal.Build(points, geom, signal.DefaultParams())
	if sig.Degenerate {
		log.Printf("Warning: gesture too short to analyze, plotting raw samples only")
	}

	scatter := gestureChart(cfg, layout, sig)

	// The letter overlay only needs an Entry; a single-word dictionary
	// serves when no -dict is given.
	word := cfg.Word
	if word == "" {
		word = gesture.Expected
	}
	var lex *lexicon.Lexicon
	if cfg.DictFile != "" {
		lex, err = loadLexicon(cfg.DictFile)
		if err != nil {
			log.Fatalf("Failed to load dictionary: %v", err)
		}
	} else if word != "" {
		lex = lexicon.New([]lexicon.WordCount{{Word: word, Count: 1}})
	}

	if word != "" && !sig.Degenerate {
		if entry, ok := lex.Lookup(word); ok {
			addLetterOverlay(scatter, geom, sig, layout.Height, entry)
		} else {
			log.Printf("Word %q not in dictionary, skipping letter overlay", word)
		}
	}

	page := components.NewPage()
	page.AddCharts(scatter)
	if cfg.DictFile != "" && !sig.Degenerate {
		page.AddCharts(candidateChart(geom, lex, points, cfg.TopN))
	}

	f, err := os.Create(cfg.OutFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("Failed to render chart: %v", err)
	}
	log.Printf("Wrote %s", cfg.OutFile)
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.GestureFile, "gesture", "", "Path to gesture JSON file")
	flag.StringVar(&cfg.LayoutFile, "layout", "", "Path to layout JSON (default: built-in QWERTY)")
	flag.Float64Var(&cfg.BoardWidth, "width", 1000, "Built-in QWERTY board width in px")
	flag.Float64Var(&cfg.BoardHeight, "height", 300, "Built-in QWERTY board height in px")
	flag.StringVar(&cfg.DictFile, "dict", "", "Path to word list for the candidate chart")
	flag.StringVar(&cfg.Word, "word", "", "Word to overlay matched letter points for (default: the gesture's label)")
	flag.IntVar(&cfg.TopN, "top", rank.DefaultTopN, "Candidates to show in the bar chart")
	flag.StringVar(&cfg.OutFile, "out", "gesture.html", "Output HTML file")

	flag.Parse()

	return cfg
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

// gestureChart builds the layout + path scatter. Y is flipped so the top
// key row renders at the top, matching how the keyboard looks on screen.
func gestureChart(cfg Config, layout keymap.Layout, sig *signal.SwipeSignal) *charts.Scatter {
	fy := func(y float64) float64 { return layout.Height - y }

	keys := make([]opts.ScatterData, 0, len(layout.Keys))
	for _, k := range layout.Keys {
		keys = append(keys, opts.ScatterData{Value: []interface{}{k.Center.X, fy(k.Center.Y), string(k.Char)}})
	}

	samples := make([]opts.ScatterData, 0, len(sig.Path))
	for _, p := range sig.Path {
		samples = append(samples, opts.ScatterData{Value: []interface{}{p.X, fy(p.Y), p.Velocity}})
	}

	vertices := make([]opts.ScatterData, 0, len(sig.Vertices))
	for _, v := range sig.Vertices {
		vertices = append(vertices, opts.ScatterData{
			Value: []interface{}{v.Compensated.X, fy(v.Compensated.Y), v.TurnAngleDeg},
		})
	}

	dwells := make([]opts.ScatterData, 0, len(sig.Dwells))
	for _, d := range sig.Dwells {
		p := sig.Path[d.Center]
		dwells = append(dwells, opts.ScatterData{Value: []interface{}{p.X, fy(p.Y), d.DurationNanos}})
	}

	var anchors []opts.ScatterData
	if !sig.Degenerate {
		for _, anchor := range []signal.Anchor{sig.StartAnchor, sig.EndAnchor} {
			if anchor.ClosestKey == 0 {
				continue
			}
			if pos, ok := posOf(layout, anchor.ClosestKey); ok {
				anchors = append(anchors, opts.ScatterData{
					Value: []interface{}{pos.X, fy(pos.Y), string(anchor.ClosestKey)},
				})
			}
		}
	}

	padX := layout.Width * 0.05
	padY := layout.Height * 0.10

	subtitle := fmt.Sprintf("layout=%s %.0fx%.0f samples=%d vertices=%d dwells=%d pathlen=%.0fpx",
		layout.Name, layout.Width, layout.Height, len(sig.Path), len(sig.Vertices), len(sig.Dwells), sig.PathLength)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Swipe Gesture", Theme: "dark", Width: "1000px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Gesture: %s", cfg.GestureFile), Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -padX, Max: layout.Width + padX, Name: "X (px)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -padY, Max: layout.Height + padY, Name: "Y (px)", NameLocation: "middle", NameGap: 30}),
	)

	scatter.AddSeries("keys", keys, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 18}), charts.WithItemStyleOpts(opts.ItemStyle{Color: "#9e9e9e"}))
	scatter.AddSeries("samples", samples, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}), charts.WithItemStyleOpts(opts.ItemStyle{Color: "#42a5f5"}))
	scatter.AddSeries("vertices", vertices, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}), charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ff5252"}))
	scatter.AddSeries("dwells", dwells, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}), charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ffb300"}))
	scatter.AddSeries("anchors", anchors, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 14}), charts.WithItemStyleOpts(opts.ItemStyle{Color: "#69f0ae"}))

	return scatter
}

// addLetterOverlay scores one word against the signal and marks the path
// point each letter matched.
func addLetterOverlay(scatter *charts.Scatter, geom *keymap.Geometry, sig *signal.SwipeSignal, boardHeight float64, entry lexicon.Entry) {
	scorer := score.NewScorer(geom, score.DefaultParams())
	res, ok := scorer.ScoreCandidate(sig, entry)
	if !ok {
		log.Printf("Word %q was pruned for this gesture, no letter overlay", entry.Word)
		return
	}

	letters := []rune(entry.Word)
	data := make([]opts.ScatterData, 0, len(res.LetterPathIndices))
	for i, idx := range res.LetterPathIndices {
		if idx < 0 || idx >= len(sig.Path) {
			continue
		}
		p := sig.Path[idx]
		data = append(data, opts.ScatterData{Value: []interface{}{p.X, boardHeight - p.Y, string(letters[i])}})
	}

	scatter.AddSeries(fmt.Sprintf("letters: %s", entry.Word), data,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ab47bc"}))
	log.Printf("Overlay %q: combined %.3f, residual %.3f, coverage %.2f",
		entry.Word, res.CombinedScore, res.Residual, res.PathCoverage)
}

// candidateChart ranks the gesture against the dictionary and charts the
// top candidates' combined scores.
func candidateChart(geom *keymap.Geometry, lex *lexicon.Lexicon, points []touch.SwipePoint, topN int) *charts.Bar {
	recOpts := rank.DefaultOptions()
	recOpts.TopN = topN
	rec, err := rank.NewRecognizer(geom, lex, recOpts)
	if err != nil {
		log.Fatalf("Failed to build recognizer: %v", err)
	}
	res := rec.Recognize(points)

	x := make([]string, 0, len(res.Words))
	y := make([]opts.BarData, 0, len(res.Words))
	for _, w := range res.Words {
		x = append(x, w.Word)
		y = append(y, opts.BarData{Value: w.CombinedScore})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1000px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Top candidates",
			Subtitle: fmt.Sprintf("%d scored, %d pruned in %s", res.ScoredCount, res.PrunedCount, res.Elapsed),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("combined score", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

func posOf(layout keymap.Layout, ch rune) (keymap.Point, bool) {
	for _, k := range layout.Keys {
		if k.Char == ch {
			return k.Center, true
		}
	}
	return keymap.Point{}, false
}
