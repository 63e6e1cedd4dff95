package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/codegangsta/cli"
	"golang.org/x/sync/errgroup"

	"github.com/yirenWang/myVelib/internal/bike"
	"github.com/yirenWang/myVelib/internal/clui"
	"github.com/yirenWang/myVelib/internal/geo"
	"github.com/yirenWang/myVelib/internal/logger"
	"github.com/yirenWang/myVelib/internal/network"
	"github.com/yirenWang/myVelib/internal/rideplan"
)

func main() {
	logger.Init()

	app := cli.NewApp()
	app.Name = "myvelib"
	app.Usage = "command-line interface for the myVelib bike sharing simulator"
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "run scenario commands from a file, or interactively from stdin",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "file, f", Usage: "scenario file; omit for interactive mode"},
				cli.StringFlag{Name: "output, o", Usage: "result file; defaults to stdout"},
			},
			Action: runScenario,
		},
		{
			Name:  "simulate",
			Usage: "drive concurrent riders through a random network",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "riders", Value: 10, Usage: "number of concurrent riders"},
				cli.IntFlag{Name: "rides", Value: 5, Usage: "rides attempted per rider"},
				cli.IntFlag{Name: "stations", Value: 10},
				cli.IntFlag{Name: "slots", Value: 10},
				cli.Float64Flag{Name: "side", Value: 10},
				cli.Int64Flag{Name: "seed", Value: 0, Usage: "rng seed; 0 picks one"},
			},
			Action: simulate,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatalf("%v", err)
	}
}

func runScenario(c *cli.Context) error {
	in := os.Stdin
	if path := c.String("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("could not open scenario file: %w", err)
		}
		defer f.Close()
		in = f
	}

	out := os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("could not create result file: %w", err)
		}
		defer f.Close()
		out = f
	}

	interp := clui.NewInterpreter()
	if in == os.Stdin {
		return repl(interp)
	}
	return interp.RunScript(in, out)
}

func repl(interp *clui.Interpreter) error {
	fmt.Println("myVelib interactive mode. Type commands, or 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := scanner.Text()
		if line == "exit" || line == "quit" {
			return nil
		}
		if msg := interp.Execute(line); msg != "" {
			fmt.Println(msg)
		}
	}
}

// simulate seeds a network and lets riders plan, rent and return
// concurrently. Failed attempts are part of normal operation: a rider may
// race another one to the last bike or the last free slot.
func simulate(c *cli.Context) error {
	seed := c.Int64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	net, err := network.NewRandom("simulation", c.Float64("side"), network.SeedSpec{
		Stations:        c.Int("stations"),
		SlotsPerStation: c.Int("slots"),
		BikeFill:        0.6,
		PlusShare:       0.3,
		ElectricShare:   0.3,
	}, seed, time.Now())
	if err != nil {
		return err
	}

	riders := c.Int("riders")
	rides := c.Int("rides")
	cards := []string{"NO_CARD", "VLIBRE", "VMAX"}
	console := network.NewConsole(net)
	for i := 0; i < riders; i++ {
		console.AddUser(fmt.Sprintf("rider%d", i+1), cards[i%len(cards)])
	}

	var g errgroup.Group
	for _, u := range net.Users() {
		u := u
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed + int64(u.ID())))
			at := net.CreatedAt()
			for i := 0; i < rides; i++ {
				at = at.Add(time.Duration(10+rng.Intn(110)) * time.Minute)
				if err := ride(net, u.ID(), rng, at); err != nil {
					logger.Debugf("rider %d: %v", u.ID(), err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Println(console.Display())
	for _, u := range net.Users() {
		fmt.Println(console.DisplayUser(u.ID()))
	}
	return nil
}

func ride(net *network.Network, userID int, rng *rand.Rand, at time.Time) error {
	side := net.Side()
	src := geo.Point{X: rng.Float64() * side, Y: rng.Float64() * side}
	dst := geo.Point{X: rng.Float64() * side, Y: rng.Float64() * side}
	t := bike.Mechanical
	if rng.Intn(2) == 0 {
		t = bike.Electric
	}

	plan, err := net.PlanRide(userID, src, dst, rideplan.Shortest, t)
	if err != nil {
		return err
	}
	if _, err := net.RentBike(userID, plan.SourceStation.ID(), t, at); err != nil {
		return err
	}
	back := at.Add(time.Duration(5+rng.Intn(175)) * time.Minute)
	if _, err := net.ReturnBike(userID, plan.DestStation.ID(), back); err != nil {
		// The planned destination may have filled up meanwhile; fall back
		// to any station with room.
		for _, s := range net.Stations() {
			if _, retryErr := net.ReturnBike(userID, s.ID(), back); retryErr == nil {
				return nil
			}
		}
		return err
	}
	return nil
}
