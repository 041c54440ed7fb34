// The console command is an interactive shell over a corpus directory.
// It builds the TF-IDF index once at startup and then serves commands:
//
//	query <terms...>  rank the corpus against the terms, print the top 10
//	results           reprint the previous ranking
//	type <i>          print the text of the i-th ranked document
//	exit              quit
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vectorspace/docsearch/internal/corpus"
	"github.com/vectorspace/docsearch/internal/engine"
	"github.com/vectorspace/docsearch/internal/index"
	"github.com/vectorspace/docsearch/internal/ranker"
	"github.com/vectorspace/docsearch/pkg/config"
	"github.com/vectorspace/docsearch/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	corpusDir := flag.String("corpus", "", "corpus directory (overrides config)")
	stopWordsFile := flag.String("stopwords", "", "stop-word list (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *corpusDir != "" {
		cfg.Corpus.Dir = *corpusDir
	}
	if *stopWordsFile != "" {
		cfg.Corpus.StopWordsFile = *stopWordsFile
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	docs, err := corpus.LoadDir(cfg.Corpus.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load corpus: %v\n", err)
		os.Exit(1)
	}
	stopWords, err := corpus.LoadStopWords(cfg.Corpus.StopWordsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load stop words: %v\n", err)
		os.Exit(1)
	}
	idx, err := index.Build(context.Background(), docs, stopWords)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build index: %v\n", err)
		os.Exit(1)
	}
	eng := engine.New(idx, cfg.Search.TopK, nil)

	fmt.Printf("Vocabulary size is %d words.\n\n", idx.VocabularySize())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Enter command > ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		cmd, args, _ := strings.Cut(line, " ")
		switch cmd {
		case "query":
			runQuery(eng, args)
		case "results":
			if eng.ResultCount() == 0 {
				fmt.Println("No previous results found.")
			} else {
				printResults(eng.LastResults())
			}
		case "type":
			runType(eng, args)
		case "exit":
			return
		case "":
		default:
			fmt.Println("Unknown command.")
		}
		fmt.Println()
	}
}

func runQuery(eng *engine.Engine, args string) {
	terms := eng.QueryTerms(args)
	results := eng.Search(context.Background(), args, 0)
	fmt.Printf("Query is: [%s]\n", strings.Join(terms, ", "))
	fmt.Println("Top 10 results:")
	printResults(results)
}

func runType(eng *engine.Engine, args string) {
	i, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		fmt.Println("Expected argument is the index of a query result.")
		return
	}
	result, err := eng.ResultAt(i)
	if err != nil {
		fmt.Println("The requested result is not available.")
		return
	}
	text, err := corpus.ReadDocument(result.DocID)
	if err != nil {
		fmt.Printf("Error opening document: %v\n", err)
		return
	}
	rule := strings.Repeat("-", len(result.DocID))
	fmt.Println(rule)
	fmt.Printf("Document: %s\n", result.DocID)
	fmt.Print(text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Println()
	}
	fmt.Println(rule)
}

func printResults(results []ranker.Result) {
	for i, r := range results {
		fmt.Printf("[%2d](%.4f) %s\n", i, r.Score, r.DocID)
	}
}
