//go:build mage

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// packageLines counts production and test lines in one directory.
type packageLines struct {
	Dir  string `json:"dir"`
	Prod int    `json:"prod"`
	Test int    `json:"test"`
}

// Stats prints Go source statistics per package directory as JSON lines.
func Stats() error {
	counts := map[string]*packageLines{}

	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			name := info.Name()
			if path != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
				name == "vendor" || name == binaryDir || name == "magefiles") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		n, countErr := countLines(path)
		if countErr != nil {
			return nil
		}
		dir := filepath.Dir(path)
		pl, ok := counts[dir]
		if !ok {
			pl = &packageLines{Dir: dir}
			counts[dir] = pl
		}
		if strings.HasSuffix(path, "_test.go") {
			pl.Test += n
		} else {
			pl.Prod += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(counts))
	for dir := range counts {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	total := packageLines{Dir: "total"}
	for _, dir := range dirs {
		pl := counts[dir]
		total.Prod += pl.Prod
		total.Test += pl.Test
		if err := printRecord(pl); err != nil {
			return err
		}
	}
	return printRecord(&total)
}

func printRecord(pl *packageLines) error {
	line, err := json.Marshal(pl)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
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
