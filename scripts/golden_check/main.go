package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

// goldenCase posts Request to Path and expects the envelope's data to equal Expected.
type goldenCase struct {
	Name     string          `json:"name"`
	Path     string          `json:"path"`
	Request  json.RawMessage `json:"request"`
	Expected json.RawMessage `json:"expected"`
	Critical bool            `json:"critical"`
}

type caseFile struct {
	Cases []goldenCase `json:"cases"`
}

type result struct {
	Case     goldenCase
	Status   int
	Match    bool
	Got      json.RawMessage
	Err      error
	Duration time.Duration
}

func main() {
	var (
		base      string
		casesPath string
		timeout   time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.StringVar(&casesPath, "cases", filepath.Join("scripts", "golden_check", "cases.json"), "Path to JSON cases file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	cases, err := loadCases(casesPath)
	if err != nil {
		log.Fatalf("failed to load cases: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	results := make([]result, 0, len(cases))
	breaking, optional := 0, 0
	for _, c := range cases {
		res := runCase(client, base, c)
		if res.Err != nil || !res.Match {
			if c.Critical {
				breaking++
			} else {
				optional++
			}
		}
		results = append(results, res)
	}

	printReport(os.Stdout, results)
	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadCases(path string) ([]goldenCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file caseFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Cases) == 0 {
		return nil, fmt.Errorf("no cases defined in %s", path)
	}
	return file.Cases, nil
}

func runCase(client *http.Client, base string, c goldenCase) result {
	res := result{Case: c}
	path := c.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	start := time.Now()
	resp, err := client.Post(strings.TrimRight(base, "/")+path, "application/json", bytes.NewReader(c.Request))
	if err != nil {
		res.Err = fmt.Errorf("request failed: %w", err)
		return res
	}
	defer resp.Body.Close()
	res.Duration = time.Since(start)
	res.Status = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Err = fmt.Errorf("read body: %w", err)
		return res
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		res.Err = fmt.Errorf("decode envelope: %w", err)
		return res
	}
	res.Got = envelope.Data
	res.Match = resp.StatusCode == http.StatusOK && bodiesEqual(envelope.Data, c.Expected)
	return res
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	return reflect.DeepEqual(aj, bj)
}

func printReport(w io.Writer, results []result) {
	fmt.Fprintln(w, "Golden Check Report")
	fmt.Fprintln(w, "===================")
	for _, res := range results {
		status := "OK"
		if res.Err != nil {
			status = "ERROR"
		} else if !res.Match {
			status = "DIFF"
		}
		fmt.Fprintf(w, "[%s] %s (%s)\n", status, res.Case.Name, res.Case.Path)
		if res.Err != nil {
			fmt.Fprintf(w, "  Error: %v\n", res.Err)
			continue
		}
		fmt.Fprintf(w, "  Status: %d (%s) | Critical: %t\n", res.Status, res.Duration, res.Case.Critical)
		if !res.Match {
			fmt.Fprintf(w, "  Expected: %s\n  Got:      %s\n", res.Case.Expected, res.Got)
		}
	}
}
