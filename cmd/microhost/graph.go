package main

import (
	"context"
	"fmt"

	"github.com/atlanticdynamic/microhost/internal/fancy"
	"github.com/atlanticdynamic/microhost/internal/host"
	"github.com/urfave/cli/v3"
)

var graphCmd = &cli.Command{
	Name:   "graph",
	Usage:  "Print the host lifecycle state graph",
	Action: graphAction,
}

func graphAction(_ context.Context, cmd *cli.Command) error {
	_, err := fmt.Fprintln(output(cmd), renderStateGraph())
	return err
}

func styleState(s host.State) string {
	switch {
	case s == host.StateFaulted:
		return fancy.FaultStateStyle.Render(s.String())
	case s.Transient():
		return fancy.TransientStateStyle.Render(s.String())
	default:
		return fancy.StableStateStyle.Render(s.String())
	}
}

// renderStateGraph lists each state with the triggers it accepts.
func renderStateGraph() string {
	byState := make(map[host.State][]host.Transition)
	for _, tr := range host.Transitions() {
		byState[tr.From] = append(byState[tr.From], tr)
	}

	t := fancy.Tree()
	t.Root(fancy.RootStyle.Render("Microservice lifecycle"))
	for _, s := range host.States() {
		node := fancy.NewComponentTree(styleState(s))
		edges := byState[s]
		if len(edges) == 0 {
			node.AddBranch(fancy.InfoStyle.Render("no outgoing transitions"))
		}
		for _, tr := range edges {
			node.AddBranch(fmt.Sprintf("%s → %s", fancy.TriggerStyle.Render(tr.Trigger.String()), styleState(tr.To)))
		}
		t.Child(node.Tree())
	}
	return t.String()
}
