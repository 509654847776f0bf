// Command analyze plays headless AI-only matches for a configuration and
// prints scoring statistics: average points per seat, win share, discards
// and how many regions of each kind were completed during play.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/logrusorgru/aurora"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/tilekingdoms/game/ai"
	"github.com/wricardo/mcp-training/tilekingdoms/game/config"
	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
)

// maxTurnsPerMatch guards against a runaway loop if the engine never ends
const maxTurnsPerMatch = 1000

// MatchResult is the outcome of one simulated match
type MatchResult struct {
	ID        string
	Seed      int64
	Scores    []int
	Winners   []int
	Turns     int
	Discarded int
	Completed map[engine.FeatureType]int
}

// Summary aggregates a batch of matches
type Summary struct {
	Config     string
	Seats      []string
	Games      int
	AvgScore   []float64
	WinShare   []float64
	AvgTurns   float64
	AvgDiscard float64
	Completed  map[engine.FeatureType]float64
	Best       *MatchResult
	Closest    *MatchResult
}

// seatConfig returns a copy of cfg with every seat AI controlled. players > 0
// replaces the seats with that many bots.
func seatConfig(cfg *engine.GameConfig, players int) *engine.GameConfig {
	out := *cfg
	if players > 0 {
		out.Players = make([]engine.PlayerConfig, players)
		for i := range out.Players {
			out.Players[i] = engine.PlayerConfig{Name: fmt.Sprintf("Bot %d", i+1)}
		}
	} else {
		out.Players = append([]engine.PlayerConfig(nil), cfg.Players...)
	}
	for i := range out.Players {
		out.Players[i].AI = true
	}
	return &out
}

// playMatch runs one match to the end with a seeded evaluator per seat
func playMatch(cfg *engine.GameConfig, seed int64) (*MatchResult, error) {
	matchCfg := *cfg
	matchCfg.Seed = seed

	g, err := engine.NewEngine(&matchCfg)
	if err != nil {
		return nil, err
	}

	evaluators := make([]*ai.Evaluator, len(cfg.Players))
	for i := range evaluators {
		evaluators[i] = ai.NewEvaluator(cfg.AI, rand.New(rand.NewSource(seed*31+int64(i))))
	}

	for turns := 0; !g.IsGameOver(); turns++ {
		if turns >= maxTurnsPerMatch {
			return nil, fmt.Errorf("match %d did not finish after %d turns", seed, maxTurnsPerMatch)
		}
		if _, err := evaluators[g.CurrentPlayer()].PlayTurn(g); err != nil {
			return nil, fmt.Errorf("seed %d turn %d: %w", seed, turns, err)
		}
	}

	state := g.GetState()
	result := &MatchResult{
		ID:        uuid.NewString(),
		Seed:      seed,
		Winners:   state.Winners,
		Turns:     state.Turn,
		Discarded: state.Discarded,
		Completed: make(map[engine.FeatureType]int),
	}
	for _, p := range state.Players {
		result.Scores = append(result.Scores, p.Score)
	}
	for _, r := range state.Regions {
		if r.Complete {
			result.Completed[r.Type]++
		}
	}
	return result, nil
}

// simulate plays games matches with consecutive seeds. progress, if set, is
// called after each match.
func simulate(cfg *engine.GameConfig, games int, seed int64, progress func()) (*Summary, error) {
	seats := make([]string, len(cfg.Players))
	for i, p := range cfg.Players {
		seats[i] = p.Name
	}

	sum := &Summary{
		Config:    cfg.Name,
		Seats:     seats,
		AvgScore:  make([]float64, len(seats)),
		WinShare:  make([]float64, len(seats)),
		Completed: make(map[engine.FeatureType]float64),
	}

	for i := 0; i < games; i++ {
		m, err := playMatch(cfg, seed+int64(i))
		if err != nil {
			return nil, err
		}
		sum.Games++
		for p, s := range m.Scores {
			sum.AvgScore[p] += float64(s)
		}
		for _, w := range m.Winners {
			sum.WinShare[w] += 1 / float64(len(m.Winners))
		}
		sum.AvgTurns += float64(m.Turns)
		sum.AvgDiscard += float64(m.Discarded)
		for t, n := range m.Completed {
			sum.Completed[t] += float64(n)
		}
		if sum.Best == nil || topScore(m) > topScore(sum.Best) {
			sum.Best = m
		}
		if sum.Closest == nil || margin(m) < margin(sum.Closest) {
			sum.Closest = m
		}
		if progress != nil {
			progress()
		}
	}

	if sum.Games == 0 {
		return sum, nil
	}
	n := float64(sum.Games)
	for p := range seats {
		sum.AvgScore[p] /= n
		sum.WinShare[p] /= n
	}
	sum.AvgTurns /= n
	sum.AvgDiscard /= n
	for t := range sum.Completed {
		sum.Completed[t] /= n
	}
	return sum, nil
}

func topScore(m *MatchResult) int {
	best := 0
	for _, s := range m.Scores {
		best = max(best, s)
	}
	return best
}

// margin is the gap between the top two scores
func margin(m *MatchResult) int {
	scores := append([]int(nil), m.Scores...)
	sort.Sort(sort.Reverse(sort.IntSlice(scores)))
	if len(scores) < 2 {
		return 0
	}
	return scores[0] - scores[1]
}

func formatSummary(sum *Summary, au aurora.Aurora) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%d games)\n", au.Bold("Config:"), sum.Config, sum.Games)
	if sum.Games == 0 {
		return b.String()
	}

	leader := 0
	for p := range sum.Seats {
		if sum.WinShare[p] > sum.WinShare[leader] {
			leader = p
		}
	}

	b.WriteString("\nSeats:\n")
	for p, name := range sum.Seats {
		line := fmt.Sprintf("  %-10s avg %6.1f pts  wins %5.1f%%", name, sum.AvgScore[p], sum.WinShare[p]*100)
		if p == leader {
			b.WriteString(au.Green(line).String() + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	fmt.Fprintf(&b, "\nAvg turns: %.1f  Avg discards: %.2f\n", sum.AvgTurns, sum.AvgDiscard)
	fmt.Fprintf(&b, "Completed per game: cities %.1f  roads %.1f  monasteries %.1f\n",
		sum.Completed[engine.City], sum.Completed[engine.Road], sum.Completed[engine.Cloister])

	if sum.AvgDiscard > 1 {
		b.WriteString(au.Yellow("⚠️  Pool discards often; check tile_counts for edge balance\n").String())
	}

	if sum.Best != nil {
		fmt.Fprintf(&b, "\nHighest score: %d (match %s, seed %d)\n", topScore(sum.Best), sum.Best.ID, sum.Best.Seed)
	}
	if sum.Closest != nil {
		fmt.Fprintf(&b, "Closest match: margin %d (match %s, seed %d)\n", margin(sum.Closest), sum.Closest.ID, sum.Closest.Seed)
	}
	return b.String()
}

func run(ctx context.Context, cmd *cli.Command) error {
	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}
	cfg, err := manager.LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	games := cmd.Int("games")
	if games < 1 {
		return fmt.Errorf("--games must be at least 1, got %d", games)
	}
	players := cmd.Int("players")
	if players != 0 && (players < engine.MinPlayers || players > engine.MaxPlayers) {
		return fmt.Errorf("--players must be between %d and %d, got %d", engine.MinPlayers, engine.MaxPlayers, players)
	}

	bar := progressbar.NewOptions(games,
		progressbar.OptionSetDescription("simulating "+cfg.Name),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	sum, err := simulate(seatConfig(cfg, players), games, int64(cmd.Int("seed")), func() { bar.Add(1) })
	bar.Finish()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	fmt.Print(formatSummary(sum, aurora.NewAurora(!cmd.Bool("no-color"))))
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "play AI-only Tile Kingdoms matches and report scoring statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "directory containing game configurations"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "classic", Usage: "configuration to analyze"},
			&cli.IntFlag{Name: "games", Aliases: []string{"n"}, Value: 100, Usage: "number of matches to play"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "seed of the first match; later matches use consecutive seeds"},
			&cli.IntFlag{Name: "players", Value: 0, Usage: "replace the config seats with this many bots (0 keeps them)"},
			&cli.BoolFlag{Name: "no-color", Usage: "disable colored output"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
