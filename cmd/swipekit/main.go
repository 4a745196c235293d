// Package main is the swipekit command line: recognize recorded gestures
// against a dictionary, manage the evaluation database schema, and print
// build information.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/featherkey/swipekit/internal/config"
	"github.com/featherkey/swipekit/internal/db"
	"github.com/featherkey/swipekit/internal/swipe/eval"
	"github.com/featherkey/swipekit/internal/swipe/keymap"
	"github.com/featherkey/swipekit/internal/swipe/lexicon"
	"github.com/featherkey/swipekit/internal/swipe/rank"
	"github.com/featherkey/swipekit/internal/version"
)

// Config holds the recognize subcommand's settings.
type Config struct {
	LayoutFile  string
	BoardWidth  float64
	BoardHeight float64
	DictFile    string
	GestureFile string
	TuningFile  string
	TopN        int
	Workers     int
	JSONOutput  bool

	topSet     bool
	workersSet bool
}

func main() {
	// Subcommands route before flag parsing so each keeps its own flag
	// set. A leading flag means the implicit recognize subcommand.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "recognize":
			runRecognize(os.Args[2:])
			return
		case "migrate":
			runMigrate(os.Args[2:])
			return
		case "version":
			fmt.Println(version.String())
			return
		case "help", "-h", "--help":
			printUsage()
			return
		}
	}
	runRecognize(os.Args[1:])
}

func printUsage() {
	fmt.Println("swipekit: gesture keyboard recognition toolkit")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  swipekit [recognize] [options]   Recognize a recorded gesture")
	fmt.Println("  swipekit migrate <command>       Manage the evaluation database schema")
	fmt.Println("  swipekit version                 Print build information")
	fmt.Println("  swipekit help                    Show this help")
	fmt.Println()
	fmt.Println("Recognize options:")
	fmt.Println("  -gesture <path>  Gesture JSON file (required)")
	fmt.Println("  -dict <path>     Word list, one 'word [count]' per line (required)")
	fmt.Println("  -layout <path>   Layout JSON file (default: built-in QWERTY)")
	fmt.Println("  -width, -height  Built-in QWERTY board size in px (default 1000x300)")
	fmt.Println("  -tuning <path>   Tuning overlay JSON")
	fmt.Println("  -top <n>         Ranked words to print")
	fmt.Println("  -workers <n>     Scoring workers, 0 = one per CPU")
	fmt.Println("  -json            Emit the full result as JSON")
	fmt.Println()
	fmt.Println("Run 'swipekit migrate help' for migration commands.")
}

func runMigrate(args []string) {
	// The migrate actions take '-db <path>' anywhere in the argument
	// list; everything else passes through as the action and its args.
	dbPath := "swipekit.db"
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == "-db" || args[i] == "--db" {
			if i+1 >= len(args) {
				log.Fatal("-db requires a path argument")
			}
			dbPath = args[i+1]
			i++
			continue
		}
		rest = append(rest, args[i])
	}
	db.RunMigrateCommand(rest, dbPath)
}

func parseRecognizeFlags(args []string) Config {
	cfg := Config{}
	fs := flag.NewFlagSet("recognize", flag.ExitOnError)

	fs.StringVar(&cfg.GestureFile, "gesture", "", "Path to gesture JSON file")
	fs.StringVar(&cfg.DictFile, "dict", "", "Path to word list file")
	fs.StringVar(&cfg.LayoutFile, "layout", "", "Path to layout JSON (default: built-in QWERTY)")
	fs.Float64Var(&cfg.BoardWidth, "width", 1000, "Built-in QWERTY board width in px")
	fs.Float64Var(&cfg.BoardHeight, "height", 300, "Built-in QWERTY board height in px")
	fs.StringVar(&cfg.TuningFile, "tuning", "", "Path to tuning overlay JSON")
	fs.IntVar(&cfg.TopN, "top", rank.DefaultTopN, "Number of ranked words to print")
	fs.IntVar(&cfg.Workers, "workers", 1, "Scoring workers (0 = one per CPU)")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "Emit the full result as JSON")

	fs.Usage = func() {
		printUsage()
	}
	fs.Parse(args)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "top":
			cfg.topSet = true
		case "workers":
			cfg.workersSet = true
		}
	})
	return cfg
}

func runRecognize(args []string) {
	cfg := parseRecognizeFlags(args)

	if cfg.GestureFile == "" {
		log.Fatal("Gesture file is required (-gesture)")
	}
	if cfg.DictFile == "" {
		log.Fatal("Dictionary file is required (-dict)")
	}

	layout, err := loadLayout(cfg)
	if err != nil {
		log.Fatalf("Failed to load layout: %v", err)
	}
	geom, err := keymap.NewGeometry(layout, keymap.DefaultGeometryParams())
	if err != nil {
		log.Fatalf("Invalid layout: %v", err)
	}

	lex, err := loadLexicon(cfg.DictFile)
	if err != nil {
		log.Fatalf("Failed to load dictionary: %v", err)
	}

	opts, err := buildOptions(cfg)
	if err != nil {
		log.Fatalf("Failed to load tuning: %v", err)
	}

	rec, err := rank.NewRecognizer(geom, lex, opts)
	if err != nil {
		log.Fatalf("Failed to build recognizer: %v", err)
	}

	gesture, err := eval.LoadCase(cfg.GestureFile)
	if err != nil {
		log.Fatalf("Failed to load gesture: %v", err)
	}

	res := rec.Recognize(gesture.SwipePoints())

	if cfg.JSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
		return
	}
	printResult(cfg, layout, lex, gesture, res)
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

func buildOptions(cfg Config) (rank.Options, error) {
	opts := rank.DefaultOptions()
	if cfg.TuningFile != "" {
		tuning, err := config.LoadTuningConfig(cfg.TuningFile)
		if err != nil {
			return rank.Options{}, err
		}
		opts = rank.OptionsFromTuning(tuning)
		log.Printf("Loaded tuning overlay from %s", cfg.TuningFile)
	}
	// Explicit command line flags win over the tuning file.
	if cfg.topSet {
		opts.TopN = cfg.TopN
	}
	if cfg.workersSet {
		opts.Workers = cfg.Workers
	}
	return opts, nil
}

func printResult(cfg Config, layout keymap.Layout, lex *lexicon.Lexicon, gesture *eval.Case, res *rank.Result) {
	fmt.Println("\n=== Recognition Results ===")
	fmt.Printf("Gesture: %s (%d samples)\n", cfg.GestureFile, len(gesture.Points))
	fmt.Printf("Layout: %s (%.0fx%.0f, %d keys)\n", layout.Name, layout.Width, layout.Height, len(layout.Keys))
	fmt.Printf("Dictionary: %d words\n", lex.Len())

	if res.Degenerate {
		fmt.Println("\nGesture too short to analyze; fall back to normal typing.")
		return
	}
	if res.StartAmbiguous {
		fmt.Println("Note: touch-down sits between keys; both readings were scored.")
	}
	if res.EndAmbiguous {
		fmt.Println("Note: lift-off sits between keys; both readings were scored.")
	}

	if len(res.Words) == 0 {
		fmt.Println("\nNo candidate survived; fall back to normal typing.")
	} else {
		fmt.Println("\n  #  Word              Score  Residual  Spatial  Frequency")
		for i, w := range res.Words {
			fmt.Printf("%3d  %-16s %6.3f  %8.3f  %7.3f  %9.3f\n",
				i+1, w.Word, w.CombinedScore, w.Residual, w.SpatialScore, w.FrequencyScore)
		}
	}

	fmt.Printf("\nPass %s: %d scored, %d pruned in %s\n",
		res.PassID, res.ScoredCount, res.PrunedCount, res.Elapsed)
	if gesture.Expected != "" {
		place := 0
		for i, w := range res.Words {
			if w.Word == lexicon.Normalize(gesture.Expected) {
				place = i + 1
				break
			}
		}
		if place > 0 {
			fmt.Printf("Expected %q ranked #%d\n", gesture.Expected, place)
		} else {
			fmt.Printf("Expected %q did not rank\n", gesture.Expected)
		}
	}
}
