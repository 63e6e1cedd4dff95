// Package clui implements the line-oriented command interface of the
// simulator. Each input line maps to one network operation and produces one
// human-readable message; errors are messages like any other, never
// failures.
package clui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yirenWang/myVelib/internal/network"
)

// TimeLayout is the timestamp format accepted by rentBike/returnBike.
const TimeLayout = "2006-01-02T15:04"

// Interpreter holds the simulated networks, keyed by name. A setup command
// creates or replaces a network; every other command addresses one by name.
type Interpreter struct {
	consoles map[string]*network.Console
}

func NewInterpreter() *Interpreter {
	return &Interpreter{consoles: make(map[string]*network.Console)}
}

// Register makes an existing network addressable by the interpreter.
func (i *Interpreter) Register(name string, c *network.Console) {
	i.consoles[name] = c
}

// Console looks up a registered network.
func (i *Interpreter) Console(name string) (*network.Console, bool) {
	c, ok := i.consoles[name]
	return c, ok
}

// Execute parses one command line and returns its message. Empty lines and
// #-comments return the empty string.
func (i *Interpreter) Execute(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}
	args := strings.Fields(line)
	cmd, args := args[0], args[1:]

	switch cmd {
	case "setup":
		return i.setup(args)
	case "addUser":
		return i.addUser(args)
	case "addStation":
		return i.addStation(args)
	case "addBike":
		return i.addBike(args)
	case "offline":
		return i.withConsole(args, 2, func(c *network.Console, a []string) string {
			id, err := strconv.Atoi(a[1])
			if err != nil {
				return badArgument("station id", a[1])
			}
			return c.SetOffline(id)
		})
	case "online":
		return i.withConsole(args, 2, func(c *network.Console, a []string) string {
			id, err := strconv.Atoi(a[1])
			if err != nil {
				return badArgument("station id", a[1])
			}
			return c.SetOnline(id)
		})
	case "rentBike":
		return i.rentBike(args)
	case "returnBike":
		return i.returnBike(args)
	case "displayStation":
		return i.withConsole(args, 2, func(c *network.Console, a []string) string {
			id, err := strconv.Atoi(a[1])
			if err != nil {
				return badArgument("station id", a[1])
			}
			return c.DisplayStation(id)
		})
	case "displayUser":
		return i.withConsole(args, 2, func(c *network.Console, a []string) string {
			id, err := strconv.Atoi(a[1])
			if err != nil {
				return badArgument("user id", a[1])
			}
			return c.DisplayUser(id)
		})
	case "sortStation":
		return i.withConsole(args, 2, func(c *network.Console, a []string) string {
			return c.SortStations(a[1])
		})
	case "planRide":
		return i.planRide(args)
	case "display":
		return i.withConsole(args, 1, func(c *network.Console, a []string) string {
			return c.Display()
		})
	case "reset":
		return i.withConsole(args, 1, func(c *network.Console, a []string) string {
			return c.Reset()
		})
	default:
		return fmt.Sprintf("Unknown command %q. Commands: setup, addUser, addStation, addBike, online, offline, rentBike, returnBike, displayStation, displayUser, sortStation, planRide, display, reset.", cmd)
	}
}

// setup <name> [<stations> <slotsPerStation> <side> <bikes>]
func (i *Interpreter) setup(args []string) string {
	if len(args) != 1 && len(args) != 5 {
		return "Usage: setup <name> [<stations> <slotsPerStation> <sideKm> <bikes>]"
	}
	name := args[0]
	spec := network.SeedSpec{
		Stations:        10,
		SlotsPerStation: 10,
		BikeFill:        0.75,
		PlusShare:       0.3,
		ElectricShare:   0.3,
	}
	side := 10.0
	if len(args) == 5 {
		stations, err1 := strconv.Atoi(args[1])
		slots, err2 := strconv.Atoi(args[2])
		sideKm, err3 := strconv.ParseFloat(args[3], 64)
		bikes, err4 := strconv.Atoi(args[4])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || stations <= 0 || slots <= 0 || sideKm <= 0 {
			return "Usage: setup <name> [<stations> <slotsPerStation> <sideKm> <bikes>]"
		}
		spec.Stations = stations
		spec.SlotsPerStation = slots
		spec.BikeFill = float64(bikes) / float64(stations*slots)
		side = sideKm
	}
	n, err := network.NewRandom(name, side, spec, 0, time.Now())
	if err != nil {
		return "Could not create network: " + err.Error()
	}
	i.consoles[name] = network.NewConsole(n)
	return fmt.Sprintf("Network %s was created: %d stations with %d parking slots each, on a %.1fkm square.",
		name, spec.Stations, spec.SlotsPerStation, side)
}

// addUser <userName> <cardType> <networkName>
func (i *Interpreter) addUser(args []string) string {
	if len(args) != 3 {
		return "Usage: addUser <userName> <cardType> <networkName>"
	}
	c, ok := i.consoles[args[2]]
	if !ok {
		return unknownNetwork(args[2])
	}
	return c.AddUser(args[0], args[1])
}

// addStation <networkName> <kind> <capacity> [<x> <y> <online>]
func (i *Interpreter) addStation(args []string) string {
	if len(args) != 3 && len(args) != 6 {
		return "Usage: addStation <networkName> <kind> <capacity> [<x> <y> <online>]"
	}
	c, ok := i.consoles[args[0]]
	if !ok {
		return unknownNetwork(args[0])
	}
	capacity, err := strconv.Atoi(args[2])
	if err != nil || capacity <= 0 {
		return badArgument("capacity", args[2])
	}
	if len(args) == 3 {
		return c.AddStation(args[1], capacity)
	}
	x, err1 := strconv.ParseFloat(args[3], 64)
	y, err2 := strconv.ParseFloat(args[4], 64)
	online, err3 := strconv.ParseBool(args[5])
	if err1 != nil || err2 != nil || err3 != nil {
		return "Usage: addStation <networkName> <kind> <capacity> [<x> <y> <online>]"
	}
	return c.AddStationAt(args[1], x, y, capacity, online)
}

// addBike <networkName> <stationID> <bikeType>
func (i *Interpreter) addBike(args []string) string {
	if len(args) != 3 {
		return "Usage: addBike <networkName> <stationID> <bikeType>"
	}
	c, ok := i.consoles[args[0]]
	if !ok {
		return unknownNetwork(args[0])
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return badArgument("station id", args[1])
	}
	return c.AddBike(id, args[2])
}

// rentBike <userID> <stationID> <networkName> <bikeType> <dateTime>
func (i *Interpreter) rentBike(args []string) string {
	if len(args) != 5 {
		return "Usage: rentBike <userID> <stationID> <networkName> <bikeType> <" + TimeLayout + ">"
	}
	c, ok := i.consoles[args[2]]
	if !ok {
		return unknownNetwork(args[2])
	}
	userID, err1 := strconv.Atoi(args[0])
	stationID, err2 := strconv.Atoi(args[1])
	at, err3 := time.Parse(TimeLayout, args[4])
	if err1 != nil || err2 != nil {
		return badArgument("id", args[0]+" "+args[1])
	}
	if err3 != nil {
		return badArgument("date", args[4])
	}
	return c.RentBike(userID, stationID, args[3], at)
}

// returnBike <userID> <stationID> <networkName> <dateTime>
func (i *Interpreter) returnBike(args []string) string {
	if len(args) != 4 {
		return "Usage: returnBike <userID> <stationID> <networkName> <" + TimeLayout + ">"
	}
	c, ok := i.consoles[args[2]]
	if !ok {
		return unknownNetwork(args[2])
	}
	userID, err1 := strconv.Atoi(args[0])
	stationID, err2 := strconv.Atoi(args[1])
	at, err3 := time.Parse(TimeLayout, args[3])
	if err1 != nil || err2 != nil {
		return badArgument("id", args[0]+" "+args[1])
	}
	if err3 != nil {
		return badArgument("date", args[3])
	}
	return c.ReturnBike(userID, stationID, at)
}

// planRide <networkName> <userID> <sourceX> <sourceY> <destX> <destY> <policy> <bikeType>
func (i *Interpreter) planRide(args []string) string {
	if len(args) != 8 {
		return "Usage: planRide <networkName> <userID> <sourceX> <sourceY> <destX> <destY> <policy> <bikeType>"
	}
	c, ok := i.consoles[args[0]]
	if !ok {
		return unknownNetwork(args[0])
	}
	userID, err := strconv.Atoi(args[1])
	if err != nil {
		return badArgument("user id", args[1])
	}
	coords := make([]float64, 4)
	for idx, raw := range args[2:6] {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return badArgument("coordinate", raw)
		}
		coords[idx] = f
	}
	return c.PlanRide(coords[0], coords[1], coords[2], coords[3], userID, args[6], args[7])
}

func (i *Interpreter) withConsole(args []string, want int, fn func(*network.Console, []string) string) string {
	if len(args) != want {
		return fmt.Sprintf("Expected %d argument(s), got %d.", want, len(args))
	}
	c, ok := i.consoles[args[0]]
	if !ok {
		return unknownNetwork(args[0])
	}
	return fn(c, args)
}

func unknownNetwork(name string) string {
	return fmt.Sprintf("No network named %q. Create one with: setup <name>.", name)
}

func badArgument(what, raw string) string {
	return fmt.Sprintf("Could not read %s from %q.", what, raw)
}
