package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"GameCatalog/internal/games"
)

const envBaseURL = "GAMES_URL"

type options struct {
	baseURL string
	timeout time.Duration
	out     io.Writer
	service games.Service
}

func (o *options) client() games.Service {
	if o.service != nil {
		return o.service
	}
	c := games.NewClient(o.baseURL)
	c.Client.Timeout = o.timeout
	return c
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&options{out: os.Stdout})
}

func newRootCmdWith(opts *options) *cobra.Command {
	defaultURL := os.Getenv(envBaseURL)
	if defaultURL == "" {
		defaultURL = "http://localhost:8082"
	}

	root := &cobra.Command{
		Use:          "gamesctl",
		Short:        "Manage the video game catalog",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.baseURL, "url", defaultURL, "games API base URL (env "+envBaseURL+")")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "request timeout")

	root.AddCommand(
		listCmd(opts),
		getCmd(opts),
		addCmd(opts),
		updateCmd(opts),
		setPriceCmd(opts),
		deleteCmd(opts),
	)
	return root
}

func listCmd(opts *options) *cobra.Command {
	page := games.DefaultPageRequest()
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := opts.client().List(cmd.Context(), page)
			if err != nil {
				return err
			}
			return printJSON(opts.out, out)
		},
	}
	cmd.Flags().IntVar(&page.Number, "page", games.DefaultPage, "page number (>= 1)")
	cmd.Flags().IntVar(&page.Size, "size", games.DefaultPageSize, "page size (1..50)")
	return cmd
}

func getCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			g, ok, err := opts.client().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("game %s: %w", id, games.ErrNotFound)
			}
			return printJSON(opts.out, g)
		},
	}
}

func inputFlags(cmd *cobra.Command, in *games.Input) {
	cmd.Flags().StringVar(&in.Name, "name", "", "game name")
	cmd.Flags().StringVar(&in.Producer, "producer", "", "producer / publisher")
	cmd.Flags().Float64Var(&in.Price, "price", 0, "price (1..1000)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("producer")
	_ = cmd.MarkFlagRequired("price")
}

func addCmd(opts *options) *cobra.Command {
	var in games.Input
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Insert a game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := opts.client().Insert(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(opts.out, g)
		},
	}
	inputFlags(cmd, &in)
	return cmd
}

func updateCmd(opts *options) *cobra.Command {
	var in games.Input
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace every field of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.client().Update(cmd.Context(), id, in)
		},
	}
	inputFlags(cmd, &in)
	return cmd
}

func setPriceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set-price <id> <price>",
		Short: "Change only the price of a game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			price, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", args[1], err)
			}
			return opts.client().UpdatePrice(cmd.Context(), id, price)
		},
	}
}

func deleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a game",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.client().Remove(cmd.Context(), id)
		},
	}
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
