package features

import (
	"context"
	"fmt"
	"io"

	"github.com/atlanticdynamic/microhost/internal/container"
	"github.com/atlanticdynamic/microhost/internal/fancy"
	"github.com/atlanticdynamic/microhost/internal/host"
)

// ComponentReport returns a batch job that writes the host's component
// container to w as a tree.
func ComponentReport(h *host.Host, w io.Writer) host.BatchJob {
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		c := h.GetContainer()
		if c == nil {
			return container.ErrClosed
		}

		tree := fancy.NewComponentTree(fancy.RootStyle.Render(
			fmt.Sprintf("%s (%s)", h.String(), h.CurrentState())))
		for _, name := range c.Names() {
			component, err := c.Get(name)
			if err != nil {
				return err
			}
			node := fancy.NewComponentTree(fancy.ComponentStyle.Render(name))
			node.AddBranch(fmt.Sprintf("%T", component))
			if _, ok := component.(host.LifecycleComponent); ok {
				node.AddBranch(fancy.InfoStyle.Render("lifecycle component"))
			}
			tree.AddChild(node.Tree())
		}

		_, err := fmt.Fprintln(w, tree.Tree().String())
		return err
	}
}
