// Command validate checks the game configurations in a directory (default
// ../configs). For every .json, .yaml and .yml file it checks:
//   - the document against the embedded JSON schema
//   - engine rules: player count, markers, scoring, message formats
//   - that the start tile and every tile_counts entry name real tiles
//   - compatibility: every tile in the pool shares an edge terrain with some
//     other tile, so it can be placed at least in principle
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/logrusorgru/aurora"

	"github.com/wricardo/mcp-training/tilekingdoms/game/config"
	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	ext := filepath.Ext(filePath)
	if err := config.ValidateDocument(data, ext); err != nil {
		result.fail("Schema: %v", err)
		return result
	}

	cfg, err := engine.ParseGameConfig(data, ext)
	if err != nil {
		result.fail("Invalid document: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(cfg); err != nil {
		result.fail("%v", err)
		return result
	}

	catalog := engine.DefaultCatalog().WithCounts(cfg.TileCounts)
	compat := validateCompatibility(catalog, catalog.IndexOf(cfg.StartTile))
	if !compat.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, compat.Errors...)

	if result.Valid {
		ai := 0
		for _, p := range cfg.Players {
			if p.AI {
				ai++
			}
		}
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", cfg.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Players: %d (%d AI)", len(cfg.Players), ai))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Markers: %d per player", cfg.MarkersPerPlayer))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Pool: %d tiles, start %s", catalog.TotalTiles(), cfg.StartTile))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Edges: %s", edgeSummary(catalog)))
	}

	return result
}

// validateCompatibility reports pool tiles that can never be placed because
// no other tile (the start tile included) shows any of their edge terrains.
func validateCompatibility(catalog engine.Catalog, startIdx int) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	if !catalog.Valid(startIdx) {
		result.fail("Cannot validate compatibility: unknown start tile")
		return result
	}

	var stuck []string
	for i, def := range catalog {
		if def.Count == 0 {
			continue
		}

		others := terrainsOf(catalog[startIdx])
		for j, other := range catalog {
			if other.Count == 0 || (j == i && def.Count < 2) {
				continue
			}
			for t := range terrainsOf(other) {
				others[t] = true
			}
		}

		fits := false
		for t := range terrainsOf(def) {
			if others[t] {
				fits = true
				break
			}
		}
		if !fits {
			stuck = append(stuck, def.ID)
		}
	}

	if len(stuck) > 0 {
		result.fail("Compatibility failure: %d tile type(s) can never be placed", len(stuck))
		for _, id := range stuck {
			result.Errors = append(result.Errors, fmt.Sprintf("Unplaceable: %s", id))
		}
	} else {
		result.Errors = append(result.Errors, "✓ Compatibility: every tile type can attach to another")
	}

	return result
}

func terrainsOf(def engine.TileArchetype) map[engine.Terrain]bool {
	out := make(map[engine.Terrain]bool, 3)
	for _, t := range def.Edges {
		out[t] = true
	}
	return out
}

// edgeSummary counts pool edges per terrain, e.g. "C=40 F=86 R=70"
func edgeSummary(catalog engine.Catalog) string {
	counts := map[engine.Terrain]int{}
	for _, def := range catalog {
		for _, t := range def.Edges {
			counts[t] += def.Count
		}
	}
	keys := make([]string, 0, len(counts))
	for t := range counts {
		keys = append(keys, string(t))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[engine.Terrain(k)]))
	}
	return strings.Join(parts, " ")
}

// configFiles lists the JSON and YAML documents in dir
func configFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates every config in the directory given as the first argument
// (default ../configs), printing a concise report and exiting with non-zero
// status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := configFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	au := aurora.NewAurora(os.Getenv("NO_COLOR") == "")
	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println(au.Green("✅ VALID"))
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println(au.Red("❌ INVALID"))
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println(au.Bold(au.Green("✅ All configurations are valid!")))
	} else {
		fmt.Println(au.Bold(au.Red("❌ Some configurations have errors")))
		os.Exit(1)
	}
}
