package main

import (
	"fmt"
	"text/tabwriter"

	"storefront/internal/models"

	"github.com/spf13/cobra"
)

func (c *cli) ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "View and manage your orders",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := c.client().MyOrders(cmd.Context())
			if err != nil {
				return describe(err)
			}
			if len(orders) == 0 {
				c.printf("No orders yet\n")
				return nil
			}

			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPLACED\tSTATUS\tPAYMENT\tTOTAL")
			for _, o := range orders {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					o.ID, o.CreatedAt.Format("2006-01-02"), o.OrderStatus, o.PaymentStatus, o.TotalPrice.StringFixed(2))
			}
			return w.Flush()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get [order-id]",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := c.client().Order(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			c.printOrder(order)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "cancel [order-id]",
		Short: "Cancel an order that has not shipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := c.client().CancelOrder(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			c.printf("Order %s is now %s\n", order.ID, order.OrderStatus)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete [order-id]",
		Short: "Delete a delivered or cancelled order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := c.client()
			order, err := api.Order(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			if err := api.DeleteOrder(cmd.Context(), *order); err != nil {
				return describe(err)
			}
			c.printf("Order %s deleted\n", order.ID)
			return nil
		},
	})
	return cmd
}

func (c *cli) printOrder(o *models.Order) {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Order\t%s\n", o.ID)
	fmt.Fprintf(w, "Placed\t%s\n", o.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Status\t%s\n", o.OrderStatus)
	fmt.Fprintf(w, "Payment\t%s\n", o.PaymentStatus)
	fmt.Fprintf(w, "Ship to\t%s, %s, %s %s\n", o.ShippingInfo.FullName, o.ShippingInfo.City, o.ShippingInfo.ZipCode, o.ShippingInfo.Country)
	for _, it := range o.OrderItems {
		fmt.Fprintf(w, "  %d x %s\t%s\n", it.Quantity, it.Title, it.Price.StringFixed(2))
	}
	fmt.Fprintf(w, "Items\t%s\n", o.ItemsPrice.StringFixed(2))
	fmt.Fprintf(w, "Tax\t%s\n", o.TaxPrice.StringFixed(2))
	fmt.Fprintf(w, "Shipping\t%s\n", o.ShippingPrice.StringFixed(2))
	fmt.Fprintf(w, "Total\t%s\n", o.TotalPrice.StringFixed(2))
	_ = w.Flush()
}
