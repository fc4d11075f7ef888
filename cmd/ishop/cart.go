package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fjod/ishop4u/internal/api"
	"github.com/fjod/ishop4u/internal/domain"
	"github.com/fjod/ishop4u/internal/service"
	"github.com/spf13/cobra"
)

var (
	cartUser  string
	cartNotes string
)

// cartCmd works on one user's remote cart without starting the API.
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Inspect or change a user's cart",
	Long: `Operate on the remote cart of --user.

Available subcommands:
  show                   - Print the cart with subtotals
  add <product-id>       - Add one unit of a product
  qty <line-id> <n>      - Set a line's quantity (0 removes it)
  notes <line-id> <text> - Replace a line's notes
  rm <line-id>           - Remove a line
  clear                  - Remove every line
  links                  - Print the affiliate checkout list`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if strings.TrimSpace(cartUser) == "" {
			return fmt.Errorf("--user is required")
		}
		return nil
	},
}

// withCart binds a fresh synchronizer to --user, loads the cart and runs fn.
// Pending notes are written before returning.
func withCart(cmd *cobra.Command, fn func(ctx context.Context, cart *service.CartSynchronizer) error) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	client, err := api.NewClient(cfg.API.Client(), log)
	if err != nil {
		return err
	}
	cart := newCart(cfg, client, log)
	cart.Bind(strings.TrimSpace(cartUser))

	ctx := cmd.Context()
	if err := cart.Refresh(ctx); err != nil {
		return err
	}
	err = fn(ctx, cart)
	cart.Close()
	return err
}

func printCart(w io.Writer, snap domain.Snapshot) {
	if snap.IsEmpty() {
		fmt.Fprintf(w, "cart of %s is empty\n", snap.UserID)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tPRODUCT\tQTY\tPRICE\tSUBTOTAL\tNOTES")
	for _, l := range snap.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			l.ID, l.Product.Title, l.Quantity, l.Product.Price.StringFixed(2), l.Subtotal().StringFixed(2), l.NotesText())
	}
	fmt.Fprintf(tw, "\t\t\t\tTOTAL %s\t\n", snap.Total().StringFixed(2))
	_ = tw.Flush()
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCart(cmd, func(_ context.Context, cart *service.CartSynchronizer) error {
			printCart(cmd.OutOrStdout(), cart.Snapshot())
			return nil
		})
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add one unit of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(ctx context.Context, cart *service.CartSynchronizer) error {
			var notes *string
			if cmd.Flags().Changed("notes") {
				notes = &cartNotes
			}
			if err := cart.AddItem(ctx, domain.Product{ID: args[0]}, notes); err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), cart.Snapshot())
			return nil
		})
	},
}

var cartQtyCmd = &cobra.Command{
	Use:   "qty <line-id> <quantity>",
	Short: "Set a line's quantity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity must be an integer: %w", err)
		}
		return withCart(cmd, func(ctx context.Context, cart *service.CartSynchronizer) error {
			if err := cart.SetQuantity(ctx, domain.LineID(args[0]), quantity); err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), cart.Snapshot())
			return nil
		})
	},
}

var cartNotesCmd = &cobra.Command{
	Use:   "notes <line-id> <text>",
	Short: "Replace a line's notes",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(ctx context.Context, cart *service.CartSynchronizer) error {
			if err := cart.SaveNotes(ctx, domain.LineID(args[0]), strings.Join(args[1:], " ")); err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), cart.Snapshot())
			return nil
		})
	},
}

var cartRmCmd = &cobra.Command{
	Use:   "rm <line-id>",
	Short: "Remove a line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(ctx context.Context, cart *service.CartSynchronizer) error {
			if err := cart.RemoveItem(ctx, domain.LineID(args[0])); err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), cart.Snapshot())
			return nil
		})
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCart(cmd, func(ctx context.Context, cart *service.CartSynchronizer) error {
			err := cart.Clear(ctx)
			printCart(cmd.OutOrStdout(), cart.Snapshot())
			return err
		})
	},
}

var cartLinksCmd = &cobra.Command{
	Use:   "links",
	Short: "Print the affiliate checkout list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCart(cmd, func(_ context.Context, cart *service.CartSynchronizer) error {
			if list := cart.Snapshot().CheckoutList(); list != "" {
				fmt.Fprintln(cmd.OutOrStdout(), list)
			}
			return nil
		})
	},
}

func init() {
	cartCmd.PersistentFlags().StringVarP(&cartUser, "user", "u", "", "User whose cart to operate on")
	cartAddCmd.Flags().StringVar(&cartNotes, "notes", "", "Notes for the new line")

	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartQtyCmd, cartNotesCmd, cartRmCmd, cartClearCmd, cartLinksCmd)
	rootCmd.AddCommand(cartCmd)
}
