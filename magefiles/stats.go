//go:build mage

package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// docFiles are the markdown files counted by Stats.
var docFiles = []string{"README.md", "DESIGN.md", "SPEC_FULL.md"}

// Stats prints Go lines of code and documentation word counts. Pass --json
// after the target for a single JSON record.
func Stats() error {
	flags := flag.NewFlagSet("stats", flag.ContinueOnError)
	asJSON := flags.Bool("json", false, "print one JSON record")
	parseTargetFlags(flags)

	var prodLines, testLines int
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			switch path {
			case "vendor", ".git", binaryDir, "magefiles", "_examples":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		count, countErr := countLines(path)
		if countErr != nil {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") {
			testLines += count
		} else {
			prodLines += count
		}
		return nil
	})
	if err != nil {
		return err
	}

	docWords := 0
	for _, path := range docFiles {
		words, wordErr := countWordsInFile(path)
		if wordErr != nil {
			continue
		}
		docWords += words
	}

	if *asJSON {
		line, err := json.Marshal(map[string]int{
			"go_loc_prod": prodLines,
			"go_loc_test": testLines,
			"go_loc":      prodLines + testLines,
			"doc_words":   docWords,
		})
		if err != nil {
			return err
		}
		fmt.Println(string(line))
		return nil
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Lines of code (Go, total):      %d\n", prodLines+testLines)
	fmt.Printf("Words (documentation):          %d\n", docWords)
	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}

func countWordsInFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	count := 0
	inWord := false
	for _, r := range string(data) {
		if unicode.IsSpace(r) {
			inWord = false
		} else if !inWord {
			inWord = true
			count++
		}
	}
	return count, nil
}
