package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vitelis_backend/internal/auth"
	"vitelis_backend/internal/credits"
	"vitelis_backend/internal/events"
	"vitelis_backend/platform/validator"
)

var creditsCmd = &cobra.Command{
	Use:   "credits",
	Short: "Adjust a user's credit balance",
}

var creditsSetCmd = &cobra.Command{
	Use:   "set <user-id|email> <credits>",
	Short: "Overwrite a user's balance",
	Args:  cobra.ExactArgs(2),
	RunE:  runCreditsSet,
}

var creditsAddCmd = &cobra.Command{
	Use:   "add <user-id|email> <amount>",
	Short: "Grant additional credits",
	Args:  cobra.ExactArgs(2),
	RunE:  runCreditsAdd,
}

func init() {
	creditsCmd.AddCommand(creditsSetCmd, creditsAddCmd)
	rootCmd.AddCommand(creditsCmd)
}

func runCreditsSet(cmd *cobra.Command, args []string) error {
	return withCredits(cmd, args, func(ctx context.Context, mod *credits.Module, userID uuid.UUID, n int) (int, error) {
		balance, err := mod.Service().SetCredits(ctx, userID, n)
		return balance.Credits, err
	})
}

func runCreditsAdd(cmd *cobra.Command, args []string) error {
	return withCredits(cmd, args, func(ctx context.Context, mod *credits.Module, userID uuid.UUID, n int) (int, error) {
		balance, err := mod.Service().AddCredits(ctx, userID, n)
		return balance.Credits, err
	})
}

type creditsOp func(ctx context.Context, mod *credits.Module, userID uuid.UUID, n int) (int, error)

func withCredits(cmd *cobra.Command, args []string, op creditsOp) error {
	n, err := parseAmount(args[1])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rt, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	bus := events.NewInMemoryBus(rt.log)
	val := validator.New()
	authModule, err := auth.NewModule(rt.pool, rt.cfg, bus, val, rt.log)
	if err != nil {
		return err
	}

	userID, err := resolveUser(ctx, authModule, args[0])
	if err != nil {
		return err
	}

	balance, err := op(ctx, credits.NewModule(rt.pool, bus, val, rt.log), userID, n)
	if err != nil {
		return err
	}
	bus.Wait()
	fmt.Fprintf(cmd.OutOrStdout(), "user %s now has %d credit(s)\n", userID, balance)
	return nil
}

// resolveUser accepts either a user id or an account email.
func resolveUser(ctx context.Context, authModule *auth.Module, ref string) (uuid.UUID, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	if !strings.Contains(ref, "@") {
		return uuid.Nil, fmt.Errorf("%q is neither a user id nor an email", ref)
	}
	user, err := authModule.Service().LookupByEmail(ctx, ref)
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup %s: %w", ref, err)
	}
	return user.ID, nil
}

func parseAmount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	return n, nil
}
