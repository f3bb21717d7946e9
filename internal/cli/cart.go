package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/gomarket/pkg/cart"
	"github.com/mesh-intelligence/gomarket/pkg/types"
)

var errNotInCart = errors.New("product is not in the cart")

// cartCmd marks cmd as running against an open cart.
func cartCmd(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationCart] = "true"
	return cmd
}

func (a *app) newAddCmd() *cobra.Command {
	var in types.ProductInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one unit of a product to the cart",
		Long: "Add one unit of a product to the cart. A product already in the cart\n" +
			"gets its quantity incremented and moves to the front.\n" +
			"When --id is omitted a new product ID is generated.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.ID == "" {
				id, err := uuid.NewV7()
				if err != nil {
					return fmt.Errorf("generate product id: %w", err)
				}
				in.ID = id.String()
			}
			if err := in.Validate(); err != nil {
				return err
			}
			return a.mutate(cmd, in.ID, func(c types.Cart) error {
				return c.AddToCart(cmd.Context(), in)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.ID, "id", "", "product ID")
	f.StringVar(&in.Title, "title", "", "product title")
	f.StringVar(&in.ImageURL, "image-url", "", "product image URL")
	f.Float64Var(&in.Price, "price", 0, "unit price")
	_ = cmd.MarkFlagRequired("title")
	return cartCmd(cmd)
}

func (a *app) newIncrementCmd() *cobra.Command {
	return cartCmd(&cobra.Command{
		Use:   "increment <id>",
		Short: "Add one unit to a product already in the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, args[0], func(c types.Cart) error {
				return c.Increment(cmd.Context(), args[0])
			})
		},
	})
}

func (a *app) newDecrementCmd() *cobra.Command {
	return cartCmd(&cobra.Command{
		Use:   "decrement <id>",
		Short: "Remove one unit of a product, dropping it at zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, args[0], func(c types.Cart) error {
				return c.Decrement(cmd.Context(), args[0])
			})
		},
	})
}

func (a *app) newListCmd() *cobra.Command {
	return cartCmd(&cobra.Command{
		Use:   "list",
		Short: "List the products in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := cart.FromContext(cmd.Context())
			if err != nil {
				return err
			}
			return a.printProducts(cmd.OutOrStdout(), c.Products())
		},
	})
}

// mutate applies fn to the cart in cmd's context and prints the resulting
// line item for id as delivered to a subscribed listener.
func (a *app) mutate(cmd *cobra.Command, id string, fn func(types.Cart) error) error {
	c, err := cart.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	known := findProduct(c.Products(), id) != nil

	var snapshot []types.Product
	unsubscribe := c.Subscribe(func(products []types.Product) {
		snapshot = products
	})
	defer unsubscribe()

	if err := fn(c); err != nil {
		return err
	}
	a.log.WithField("id", id).WithField("cmd", cmd.Name()).Debug("cart updated")

	p := findProduct(snapshot, id)
	if p == nil && !known {
		return fmt.Errorf("%w: %s", errNotInCart, id)
	}

	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		return writeJSON(out, snapshot)
	}
	if p == nil {
		fmt.Fprintf(out, "Removed %s\n", id)
		return nil
	}
	fmt.Fprintf(out, "%s (%s): quantity %d\n", p.Title, p.ID, p.Quantity)
	return nil
}

func (a *app) printProducts(out io.Writer, products []types.Product) error {
	if a.flags.jsonMode {
		return writeJSON(out, products)
	}
	if len(products) == 0 {
		fmt.Fprintln(out, "Cart is empty")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tQTY\tSUBTOTAL")
	var total float64
	var units int
	for _, p := range products {
		subtotal := p.Price * float64(p.Quantity)
		total += subtotal
		units += p.Quantity
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%.2f\n", p.ID, p.Title, p.Price, p.Quantity, subtotal)
	}
	fmt.Fprintf(w, "\t\t\t%d\t%.2f\n", units, total)
	return w.Flush()
}

func writeJSON(out io.Writer, products []types.Product) error {
	if products == nil {
		products = []types.Product{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(products)
}

func findProduct(products []types.Product, id string) *types.Product {
	for i := range products {
		if products[i].ID == id {
			return &products[i]
		}
	}
	return nil
}
