package main

import (
	"fmt"
	"text/tabwriter"

	"storefront/internal/models"

	"github.com/spf13/cobra"
)

func (c *cli) registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register [username] [email] [password]",
		Short: "Create a customer account",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.client().Register(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return describe(err)
			}
			c.printf("Registered %s (%s)\n", user.Username, user.Email)
			return nil
		},
	}
}

func (c *cli) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [username] [password]",
		Short: "Log in and save the token for later commands",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := c.client().Login(cmd.Context(), args[0], args[1])
			if err != nil {
				return describe(err)
			}
			if err := c.saveToken(token); err != nil {
				return err
			}
			c.printf("Logged in as %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) productsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := c.client().Products(cmd.Context())
			if err != nil {
				return describe(err)
			}
			if len(products) == 0 {
				c.printf("No products\n")
				return nil
			}

			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
			for _, p := range products {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, p.Price.StringFixed(2), p.Stock)
			}
			return w.Flush()
		},
	}
}

func (c *cli) contactCmd() *cobra.Command {
	var req models.ContactRequest

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to support",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.client().Contact(cmd.Context(), req); err != nil {
				return describe(err)
			}
			c.printf("Message sent. A confirmation was emailed to %s\n", req.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Your name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Your email address")
	cmd.Flags().StringVar(&req.Subject, "subject", "", "Subject")
	cmd.Flags().StringVarP(&req.Message, "message", "m", "", "Message")
	return cmd
}
