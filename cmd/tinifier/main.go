package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"github.com/tinifier/tinifier/internal/analytics"
	"github.com/tinifier/tinifier/internal/config"
	"github.com/tinifier/tinifier/internal/container"
	"github.com/tinifier/tinifier/internal/shortener"
	"go.uber.org/zap"
)

var (
	labelColor = color.RGB(135, 135, 135)
	codeColor  = color.New(color.FgGreen)
	addedColor = color.New(color.FgGreen, color.Bold)
	missColor  = color.New(color.FgRed, color.Bold)
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	injector := do.New()
	do.ProvideValue(injector, cfg)
	container.LoggerPackage(injector)
	container.StorePackage(injector)
	container.AnalyticsPackage(injector)
	container.ShortenerPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)
	defer func() { _ = logger.Sync() }()

	consumer := do.MustInvoke[*analytics.Consumer](injector)
	if err := consumer.Start(context.Background()); err != nil {
		return err
	}

	defer func() {
		if err := injector.Shutdown(); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	return newRootCmd(injector).Execute()
}

func newRootCmd(injector *do.Injector) *cobra.Command {
	root := &cobra.Command{
		Use:           "tinifier",
		Short:         "Shorten, look up, edit and remove URLs from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAddCmd(injector),
		newViewCmd(injector),
		newEditCmd(injector),
		newRemoveCmd(injector),
	)

	return root
}

func newAddCmd(injector *do.Injector) *cobra.Command {
	return &cobra.Command{
		Use:   "add <long-url>",
		Short: "Shorten a URL and store the mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := do.MustInvoke[*shortener.Service](injector)

			entry, err := svc.Add(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, shortener.ErrCollision) {
					return fmt.Errorf("could not add %q: %w", args[0], err)
				}

				return err
			}

			fmt.Println(addedColor.Sprint("ADDED:"))
			printEntry(entry)

			return nil
		},
	}
}

func newViewCmd(injector *do.Injector) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "view <short-url>",
		Short: "Look up the URL stored under a short code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := do.MustInvoke[*shortener.Service](injector)

			entry, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, shortener.ErrNotFound) {
					fmt.Println(missColor.Sprint("Not Found"))

					return nil
				}

				return err
			}

			if full {
				fmt.Printf("%s =>\n", codeColor.Sprint(args[0]))
				printEntry(entry)
			} else {
				fmt.Printf("%s => %s\n", codeColor.Sprint(args[0]), entry.LongURL)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&full, "long", "l", false, "show full entry information")

	return cmd
}

func newEditCmd(injector *do.Injector) *cobra.Command {
	var (
		longURL string
		expires string
		author  string
	)

	cmd := &cobra.Command{
		Use:   "edit <short-url>",
		Short: "Update the entry stored under a short code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := do.MustInvoke[*shortener.Service](injector)

			// Without mutation flags, just display the current entry.
			if !cmd.Flags().Changed("url") && !cmd.Flags().Changed("expires") &&
				!cmd.Flags().Changed("author") {
				entry, err := svc.Get(cmd.Context(), args[0])
				if err != nil {
					if errors.Is(err, shortener.ErrNotFound) {
						fmt.Println(missColor.Sprint("Not Found"))

						return nil
					}

					return err
				}

				fmt.Printf("%s =>\n", codeColor.Sprint(args[0]))
				printEntry(entry)

				return nil
			}

			req := shortener.UpdateRequest{}
			if cmd.Flags().Changed("author") {
				req.Author = author
			}

			if cmd.Flags().Changed("url") {
				req.LongURL = &longURL
			}

			if cmd.Flags().Changed("expires") {
				t, err := time.Parse(time.RFC3339, expires)
				if err != nil {
					return fmt.Errorf("invalid expiration date: %w", err)
				}

				req.ExpiresAt = &t
			}

			entry, err := svc.Edit(cmd.Context(), args[0], req)
			if err != nil {
				if errors.Is(err, shortener.ErrNotFound) {
					fmt.Println(missColor.Sprint("Not Found"))

					return nil
				}

				return err
			}

			fmt.Println(addedColor.Sprint("UPDATED:"))
			printEntry(entry)

			return nil
		},
	}

	cmd.Flags().StringVar(&longURL, "url", "", "replace the long URL")
	cmd.Flags().StringVar(&expires, "expires", "", "set the expiration date (RFC 3339)")
	cmd.Flags().StringVar(&author, "author", "", "record a different author on the update")

	return cmd
}

func newRemoveCmd(injector *do.Injector) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <short-url>",
		Short: "Delete the entry stored under a short code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := do.MustInvoke[*shortener.Service](injector)

			entry, err := svc.Remove(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, shortener.ErrNotFound) {
					fmt.Println(missColor.Sprint("Not Found"))

					return nil
				}

				return err
			}

			fmt.Printf("Removed %s => %s\n", codeColor.Sprint(entry.ShortURL), entry.LongURL)

			return nil
		},
	}
}

func printEntry(e *shortener.Entry) {
	expiration := "never"
	if e.ExpiresAt != nil {
		expiration = e.ExpiresAt.Format(time.RFC3339)
	}

	fmt.Printf("%s%s\n", labelColor.Sprint("\tLong URL: "), e.LongURL)
	fmt.Printf("%s%s\n", labelColor.Sprint("\tShort URL: "), e.ShortURL)
	fmt.Printf("%s%s\n", labelColor.Sprint("\tExpiration Date: "), expiration)
	fmt.Printf("%s%s\n", labelColor.Sprint("\tCreation Date: "), e.CreatedAt.Format(time.RFC3339))
	fmt.Printf("%s%s\n", labelColor.Sprint("\tAuthor: "), e.Author)
}
