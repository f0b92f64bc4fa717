// attune-cli feeds exchanges through the learning engine.
//
// Input is JSONL, one exchange per line:
//
//	{"user_id":"u1","conversation_id":"c1","user_text":"...","assistant_text":"..."}
//
// read from --input or stdin. Each result is summarized on stdout; shared
// stats print at the end.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/cognicore/attune/pkg/attune"
	"github.com/cognicore/attune/pkg/attune/config"
)

type exchange struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
	UserText       string `json:"user_text"`
	AssistantText  string `json:"assistant_text"`
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (overrides --root)")
		root       = flag.String("root", "", "Data root directory")
		inputPath  = flag.String("input", "", "Exchange JSONL file (default stdin)")
		jsonOut    = flag.Bool("json", false, "Print full results as JSON")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath, *root)
	if err != nil {
		log.Fatal(err)
	}

	if os.Getenv(config.EnvNoRemote) != "" {
		log.Printf("%s set: confirming no remote calls are made by this tool", config.EnvNoRemote)
	}

	ctx := context.Background()
	engine, err := attune.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	in := io.Reader(os.Stdin)
	if *inputPath != "" {
		f, err := os.Open(*inputPath)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	processed := 0
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var ex exchange
		if err := json.Unmarshal([]byte(line), &ex); err != nil {
			log.Printf("skipping unparseable line: %v", err)
			continue
		}

		res := engine.ProcessExchange(ctx, ex.UserID, ex.ConversationID, ex.UserText, ex.AssistantText, nil, nil)
		processed++

		if *jsonOut {
			out, err := json.Marshal(res)
			if err != nil {
				log.Printf("marshal result: %v", err)
				continue
			}
			fmt.Println(string(out))
			continue
		}

		fmt.Printf("[%d] user=%s signals=%d reason=%s shared+%d composites=%d\n",
			processed,
			attune.HashUserID(ex.UserID),
			res.Learning.SignalsCount,
			res.Learning.Reason,
			len(res.Learning.SharedAdded),
			len(res.NewComposites),
		)
		for _, c := range res.NewComposites {
			fmt.Printf("      %s %s (%s + %s)\n", c.Symbol, c.Name, c.CoreSignals[0], c.CoreSignals[1])
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatal(err)
	}

	stats, err := engine.GetSharedStats()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nprocessed %d exchanges; shared lexicon %d entries; %d log entries\n",
		processed, stats.SignalsCount, stats.LogEntriesCount)
}

func loadConfig(configPath, root string) (config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	if root == "" {
		return config.Config{}, fmt.Errorf("--config or --root required")
	}
	return config.Default(root), nil
}
