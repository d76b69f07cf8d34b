package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v2"

	"github.com/saranrapjs/edgartext/pkg/download"
	"github.com/saranrapjs/edgartext/pkg/edgar"
	"github.com/saranrapjs/edgartext/pkg/store"
)

var printer = message.NewPrinter(message.MatchLanguage("en"))

// Job mirrors the command line flags, so recurring batch runs can live in a
// YAML file checked into version control. Flags override job values.
type Job struct {
	Symbols   []string `yaml:"symbols"`
	Types     []string `yaml:"types"`
	Years     []int    `yaml:"years"`
	All       bool     `yaml:"all"`
	Output    string   `yaml:"output"`
	Output10K string   `yaml:"output_10k"`
	Output10Q string   `yaml:"output_10q"`
	Contact   string   `yaml:"contact"`
	DelayMS   int      `yaml:"delay_ms"`
	Report    string   `yaml:"report"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	var (
		symbolsFlag = flag.String("symbols", "", "comma-separated company symbols, e.g. AAPL,MSFT")
		typesFlag   = flag.String("types", "10-K,10-Q", "comma-separated filing types")
		yearsFlag   = flag.String("years", "", "comma-separated filing years; empty means the last ten years")
		allFlag     = flag.Bool("all", false, "download every available filing, ignoring -years")
		outFlag     = flag.String("out", "data", "output root shared by all filing types")
		out10kFlag  = flag.String("out10k", "", "output root for 10-K filings, overrides -out")
		out10qFlag  = flag.String("out10q", "", "output root for 10-Q filings, overrides -out")
		contactFlag = flag.String("contact", "", "contact details for the SEC User-Agent header; falls back to EDGAR_CONTACT")
		delayFlag   = flag.Duration("delay", edgar.DefaultDelay, "pause between EDGAR requests")
		jobFlag     = flag.String("job", "", "YAML job file describing the batch")
		reportFlag  = flag.String("report", "", "write a JSON run report to this path")
		verboseFlag = flag.Bool("verbose", false, "log at debug level")
	)
	flag.Parse()

	flagsSet := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { flagsSet[f.Name] = true })

	var job Job
	if *jobFlag != "" {
		data, err := os.ReadFile(*jobFlag)
		if err != nil {
			log.Fatalf("Failed to read job file: %v", err)
		}
		if err := yaml.Unmarshal(data, &job); err != nil {
			log.Fatalf("Failed to parse job file %s: %v", *jobFlag, err)
		}
	}

	symbols := job.Symbols
	if flagsSet["symbols"] || len(symbols) == 0 {
		symbols = splitList(*symbolsFlag)
	}
	if len(symbols) == 0 {
		log.Fatal("Error: no symbols given; use -symbols or a -job file.")
	}

	typeNames := job.Types
	if flagsSet["types"] || len(typeNames) == 0 {
		typeNames = splitList(*typesFlag)
	}
	if len(typeNames) == 0 {
		log.Fatal("Error: no filing types given.")
	}
	forms := make([]edgar.FilingType, 0, len(typeNames))
	for _, name := range typeNames {
		forms = append(forms, edgar.FilingType(strings.ToUpper(name)))
	}

	years := job.Years
	if flagsSet["years"] {
		years = nil
		for _, part := range splitList(*yearsFlag) {
			year, err := strconv.Atoi(part)
			if err != nil {
				log.Fatalf("Invalid year %q", part)
			}
			years = append(years, year)
		}
	}

	all := job.All
	if flagsSet["all"] {
		all = *allFlag
	}

	contact := job.Contact
	if flagsSet["contact"] || contact == "" {
		contact = *contactFlag
	}
	if contact == "" {
		contact = os.Getenv("EDGAR_CONTACT")
	}
	if contact == "" {
		log.Fatal("Error: EDGAR_CONTACT is not set; the SEC requires contact details in the User-Agent header.")
	}

	delay := *delayFlag
	if !flagsSet["delay"] && job.DelayMS > 0 {
		delay = time.Duration(job.DelayMS) * time.Millisecond
	}

	out := job.Output
	if flagsSet["out"] || out == "" {
		out = *outFlag
	}
	out10k := job.Output10K
	if flagsSet["out10k"] || out10k == "" {
		out10k = *out10kFlag
	}
	out10q := job.Output10Q
	if flagsSet["out10q"] || out10q == "" {
		out10q = *out10qFlag
	}
	root10K, root10Q := out, out
	if out10k != "" {
		root10K = out10k
	}
	if out10q != "" {
		root10Q = out10q
	}

	reportPath := job.Report
	if flagsSet["report"] || reportPath == "" {
		reportPath = *reportFlag
	}

	var logger *zap.Logger
	if *verboseFlag {
		logger = zap.Must(zap.NewDevelopment())
	} else {
		logger = zap.Must(zap.NewProduction())
	}
	defer logger.Sync()

	st, err := store.New(root10K, root10Q, logger)
	if err != nil {
		log.Fatalf("Failed to prepare output store: %v", err)
	}
	client := edgar.NewClient(contact, delay)
	downloader := download.New(client, st, logger)

	report := download.NewReport(contact)
	logger.Info("starting batch run",
		zap.String("run_id", report.RunID),
		zap.Strings("symbols", symbols),
		zap.Duration("delay", delay))

	results := downloader.Batch(context.Background(), symbols, forms, years, all)
	report.Finish(results)

	fmt.Println()
	for _, key := range results.Keys() {
		mark := "✓"
		if !results[key] {
			mark = "✗"
		}
		fmt.Printf("  %s %s\n", mark, key)
	}
	printer.Printf("\n%d units: %d succeeded, %d failed, %d characters written\n",
		len(results), results.Succeeded(), results.Failed(), st.CharactersWritten())

	if reportPath != "" {
		if err := report.WriteFile(reportPath); err != nil {
			logger.Error("could not write report", zap.String("path", reportPath), zap.Error(err))
		}
	}
}

func splitList(s string) []string {
	var items []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
