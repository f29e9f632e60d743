package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"storefront/internal/cart"

	"github.com/spf13/cobra"
)

func (c *cli) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local cart",
	}
	cmd.AddCommand(c.cartShowCmd())
	cmd.AddCommand(c.cartAddCmd())
	cmd.AddCommand(c.cartSetCmd())
	cmd.AddCommand(c.cartRemoveCmd())
	cmd.AddCommand(c.cartClearCmd())
	return cmd
}

func (c *cli) cartShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cart and its order summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.cartStore(cmd.Context())
			if err != nil {
				return err
			}
			return printCart(c.out, store)
		},
	}
}

func (c *cli) cartAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [product-id] [quantity]",
		Short: "Add a catalog product to the cart",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty := 1
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid quantity %q", args[1])
				}
				qty = n
			}

			product, err := c.client().Product(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			store, err := c.cartStore(cmd.Context())
			if err != nil {
				return err
			}
			item := cart.Item{
				ID:       product.ID,
				Name:     product.Name,
				Price:    product.Price,
				Image:    product.Image,
				Category: product.Category,
			}
			if err := store.Add(cmd.Context(), item, qty); err != nil {
				return err
			}
			c.printf("Added %s to cart (%d items)\n", product.Name, store.Count())
			return nil
		},
	}
}

func (c *cli) cartSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [product-id] [quantity]",
		Short: "Change the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			store, err := c.cartStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.SetQuantity(cmd.Context(), args[0], qty); err != nil {
				return err
			}
			return printCart(c.out, store)
		},
	}
}

func (c *cli) cartRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [product-id]",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.cartStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			return printCart(c.out, store)
		},
	}
}

func (c *cli) cartClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.cartStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			c.printf("Cart cleared\n")
			return nil
		},
	}
}

func printCart(out io.Writer, store *cart.Store) error {
	items := store.Items()
	if len(items) == 0 {
		fmt.Fprintln(out, "Your cart is empty")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tQTY\tPRICE")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", it.ID, it.Name, it.Quantity, it.Price.StringFixed(2))
	}
	s := store.Summary()
	fmt.Fprintf(w, "\t\tSubtotal\t%s\n", s.Subtotal.StringFixed(2))
	fmt.Fprintf(w, "\t\tTax\t%s\n", s.Tax.StringFixed(2))
	fmt.Fprintf(w, "\t\tShipping\t%s\n", s.Shipping.StringFixed(2))
	fmt.Fprintf(w, "\t\tTotal\t%s\n", s.Total.StringFixed(2))
	return w.Flush()
}
