package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/bigbadman-lab/onesol/internal/device"
	"github.com/bigbadman-lab/onesol/internal/game"
	"github.com/bigbadman-lab/onesol/internal/interfaces"
	"github.com/bigbadman-lab/onesol/internal/keystore"
	"github.com/bigbadman-lab/onesol/internal/leaderboard"
	"github.com/bigbadman-lab/onesol/internal/logger"
	"github.com/bigbadman-lab/onesol/internal/tradelog"
	"github.com/bigbadman-lab/onesol/internal/types"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		fmt.Println("\nShutting down...")
		cancel()
		os.Exit(0)
	}()

	cfg, err := loadConfig(ctx)
	must(err)

	compressOldLogs(ctx)

	kv, err := keystore.OpenSQLite(cfg.Keystore.Path)
	must(err)
	defer kv.Close()

	seen := keystore.NewDaySet(kv)
	cat, probe := initializeCatalog(ctx, cfg)
	sess := initializeSession(cfg, cat, probe, seen)
	lb := initializeLeaderboard(cfg)

	in := bufio.NewScanner(os.Stdin)

	if len(os.Args) > 1 && os.Args[1] == "settings" {
		runSettings(ctx, in, kv, lb)
		return
	}

	ident := ensureConsentAndIdentity(ctx, in, kv)

	for {
		if err := sess.StartRun(ctx); err != nil {
			switch {
			case errors.Is(err, game.ErrOffline):
				fmt.Println("You appear to be offline. Check your connection and try again.")
			case errors.Is(err, game.ErrExhausted):
				fmt.Println("You've played every trade available today. Come back tomorrow!")
			default:
				fmt.Println("Could not start a run:", err)
			}
			if !promptYesNo(in, "Try again? [y/N]: ") {
				return
			}
			continue
		}

		playRun(ctx, in, sess, cfg.Game.BetOptions)
		finishRun(ctx, sess, lb, kv, ident)

		if !promptYesNo(in, "\nPlay again? [y/N]: ") {
			return
		}
		sess.ResetRun()
	}
}

// ensureConsentAndIdentity asks for leaderboard consent on first launch and
// returns the device identity, or nil when the user declined.
func ensureConsentAndIdentity(ctx context.Context, in *bufio.Scanner, kv interfaces.KeyValue) *device.Identity {
	ok, err := device.HasConsent(ctx, kv)
	if err != nil {
		logger.Warn(ctx, "Consent check failed", "error", err)
		return nil
	}
	if !ok {
		fmt.Println("Scores can be submitted to the daily leaderboard under a random name.")
		if !promptYesNo(in, "Opt in? [y/N]: ") {
			return nil
		}
		if err := device.GrantConsent(ctx, kv); err != nil {
			logger.Warn(ctx, "Failed to record consent", "error", err)
			return nil
		}
	}

	ident, err := device.EnsureIdentity(ctx, kv)
	if err != nil {
		logger.Warn(ctx, "Failed to load device identity", "error", err)
		return nil
	}
	fmt.Println("Playing as", ident.FriendlyName)
	return ident
}

func playRun(ctx context.Context, in *bufio.Scanner, sess interfaces.Session, betOptions []float64) {
	for sess.Active() {
		t := sess.CurrentTrade()
		if t == nil {
			fmt.Println("No more trades today.")
			return
		}
		stats := sess.Stats()

		fmt.Printf("\n--- Trade %d ---\n", stats.TradeCount+1)
		fmt.Printf("Balance: %.2f SOL\n", stats.Balance)
		fmt.Printf("Chart: %s  (%s, cut at %s, difficulty %s)\n",
			t.ChartCutImage, t.Timeframe, t.CutType, t.Difficulty)

		bet, ok := promptBet(in, betOptions, stats.Balance)
		if !ok {
			fmt.Println("Cashing out.")
			return
		}
		sess.SelectWager(bet)

		pred, ok := promptPrediction(in)
		if !ok {
			fmt.Println("Cashing out.")
			return
		}

		result, err := sess.SubmitPrediction(ctx, pred)
		if err != nil {
			switch {
			case errors.Is(err, game.ErrExhausted):
				fmt.Println("That was the last trade available today!")
			case errors.Is(err, game.ErrOffline):
				fmt.Println("Connection lost. Your balance is safe; try the same trade again.")
				continue
			default:
				fmt.Println("Something went wrong:", err)
				continue
			}
			return
		}
		if result == nil {
			continue
		}

		showResult(result)

		if err := tradelog.Append(tradelog.Entry{
			TradeID:    result.TradeID,
			Prediction: string(result.Prediction),
			Outcome:    string(result.Outcome),
			Reason:     result.Reason,
			Bet:        result.BetAmount,
			PNL:        result.PNL,
			Balance:    sess.Stats().Balance,
			ReturnPct:  result.ReturnPct,
			Correct:    result.IsCorrect,
		}); err != nil {
			logger.Warn(ctx, "Failed to append trade journal", "error", err)
		}

		if sess.Stats().Balance <= 0 {
			fmt.Println("\nYou're busted! Balance hit zero.")
			return
		}
	}
}

func showResult(r *types.TradeResult) {
	if r.IsCorrect {
		fmt.Printf("\nCORRECT! The token went %s (%+.0f%%). You won %.2f SOL.\n",
			r.Outcome, r.ReturnPct, r.PNL)
	} else {
		fmt.Printf("\nWRONG. The token went %s (%+.0f%%). You lost %.2f SOL.\n",
			r.Outcome, r.ReturnPct, -r.PNL)
	}
	if r.Reason != "" {
		fmt.Println("Why:", r.Reason)
	}
}

func finishRun(ctx context.Context, sess interfaces.Session, lb *leaderboard.Client, kv interfaces.KeyValue, ident *device.Identity) {
	sess.CompleteRun()
	stats := sess.Stats()

	outcome := "CASHED_OUT"
	if stats.Balance <= 0 {
		outcome = "BUSTED"
	}
	fmt.Printf("\nRun over: %d trades, %d correct, final balance %.2f SOL\n",
		stats.TradeCount, stats.CorrectCount, stats.Balance)

	if err := tradelog.AppendRun(tradelog.RunEntry{
		Outcome:      outcome,
		FinalBalance: stats.Balance,
		TradeCount:   stats.TradeCount,
		CorrectCount: stats.CorrectCount,
	}); err != nil {
		logger.Warn(ctx, "Failed to append run journal", "error", err)
	}

	if lb == nil || ident == nil || stats.TradeCount == 0 {
		return
	}

	email, _ := kv.Get(ctx, device.EmailKey)
	sub := types.ScoreSubmission{
		UUID:         ident.UUID,
		FriendlyName: ident.FriendlyName,
		FinalSol:     stats.Balance,
		CorrectCount: stats.CorrectCount,
		Email:        email,
	}

	err := lb.SubmitScore(ctx, sub)
	if errors.Is(err, leaderboard.ErrInvalidEmail) {
		// Server rejected the stored email; drop it and resubmit clean.
		if derr := kv.Delete(ctx, device.EmailKey); derr != nil {
			logger.Warn(ctx, "Failed to clear rejected email", "error", derr)
		}
		sub.Email = ""
		err = lb.SubmitScore(ctx, sub)
	}
	if err != nil {
		fmt.Println("Could not submit your score:", err)
		return
	}
	fmt.Println("Score submitted to the leaderboard!")

	entries, err := lb.Today(ctx)
	if err != nil {
		logger.Warn(ctx, "Failed to fetch leaderboard", "error", err)
		return
	}
	fmt.Println("\nToday's top runs:")
	for i, e := range entries {
		if i >= 10 {
			break
		}
		name := e.FriendlyName
		if e.Nickname != "" {
			name = e.Nickname
		}
		fmt.Printf("%2d. %-20s %8.2f SOL  (%d correct)\n", e.Rank, name, e.FinalSol, e.CorrectCount)
	}
}

// promptBet returns the chosen wager, or false to cash out. Only options the
// balance can cover are offered.
func promptBet(in *bufio.Scanner, options []float64, balance float64) (float64, bool) {
	var affordable []float64
	for _, o := range options {
		if o <= balance {
			affordable = append(affordable, o)
		}
	}
	if len(affordable) == 0 {
		return 0, false
	}

	for {
		labels := make([]string, len(affordable))
		for i, o := range affordable {
			labels[i] = strconv.FormatFloat(o, 'g', -1, 64)
		}
		fmt.Printf("Bet [%s] or 'q' to cash out: ", strings.Join(labels, ", "))
		if !in.Scan() {
			return 0, false
		}
		input := strings.TrimSpace(in.Text())
		if strings.EqualFold(input, "q") {
			return 0, false
		}
		v, err := strconv.ParseFloat(input, 64)
		if err != nil {
			fmt.Println("Not a number.")
			continue
		}
		for _, o := range affordable {
			if o == v {
				return v, true
			}
		}
		fmt.Println("Pick one of the listed amounts.")
	}
}

func promptPrediction(in *bufio.Scanner) (types.Prediction, bool) {
	for {
		fmt.Print("Your call, RICH or RUG ('q' to cash out): ")
		if !in.Scan() {
			return "", false
		}
		switch strings.ToUpper(strings.TrimSpace(in.Text())) {
		case "RICH":
			return types.OutcomeRich, true
		case "RUG":
			return types.OutcomeRug, true
		case "Q":
			return "", false
		default:
			fmt.Println("Type RICH or RUG.")
		}
	}
}
