// Command perft counts leaf positions of the move tree below a position.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/pkg/profile"
	"golang.org/x/exp/maps"
)

func main() {
	fen := flag.String("fen", model.StartFEN, "position to search from")
	depth := flag.Int("depth", 4, "search depth in plies")
	divide := flag.Bool("divide", false, "print the count below each root move")
	prof := flag.String("profile", "", "write a cpu or mem profile")
	flag.Parse()

	switch *prof {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		fmt.Fprintf(os.Stderr, "unknown profile %q\n", *prof)
		os.Exit(2)
	}

	gs, err := model.LoadFEN(*fen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	start := time.Now()
	var nodes uint64
	if *divide {
		counts := gs.Divide(*depth)
		keys := maps.Keys(counts)
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s: %d\n", k, counts[k])
			nodes += counts[k]
		}
		fmt.Println()
	} else {
		nodes = gs.Perft(*depth)
	}
	elapsed := time.Since(start)

	fmt.Printf("nodes %d  depth %d  time %s  nps %.0f\n",
		nodes, *depth, elapsed.Round(time.Millisecond), float64(nodes)/elapsed.Seconds())
}
