// compare_modes.go - Compare filter output across table id and tag strategies
//
// Usage: go run scripts/compare_modes.go <url-or-file>
//
// Example:
//
//	go run scripts/compare_modes.go https://www.boisestate.edu/news/
//	go run scripts/compare_modes.go post.html
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jmylchreest/a11yfix/pkg/cleaner/a11y"
	"github.com/jmylchreest/a11yfix/pkg/fetcher"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/compare_modes.go <url-or-file>")
		os.Exit(1)
	}

	html, err := load(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Input size: %d bytes\n\n", len(html))

	tree := a11y.DefaultConfig()
	tree.TagMode = a11y.TagModeTree

	modes := []struct {
		name string
		cfg  *a11y.Config
	}{
		{"token/serialized (default)", a11y.DefaultConfig()},
		{"offset/serialized (legacy)", a11y.PresetLegacy()},
		{"token/tree", tree},
	}

	outputs := make([]string, len(modes))
	for i, m := range modes {
		result := a11y.New(m.cfg).CleanWithStats(html)
		outputs[i] = result.Content

		fmt.Println(strings.Repeat("=", 61))
		fmt.Println(m.name)
		fmt.Println(strings.Repeat("=", 61))
		fmt.Print(result.Stats)
		for _, w := range result.Warnings {
			fmt.Println("  warning:", w)
		}
		fmt.Println()
	}

	for i := 1; i < len(outputs); i++ {
		fmt.Printf("%s vs %s: identical=%v\n", modes[0].name, modes[i].name, outputs[i] == outputs[0])
	}
}

func load(src string) (string, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		data, err := os.ReadFile(src)
		return string(data), err
	}
	content, err := fetcher.NewStatic(fetcher.Config{}).Fetch(context.Background(), src, fetcher.Options{})
	if err != nil {
		return "", err
	}
	return content.Body, nil
}
