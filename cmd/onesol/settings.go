package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bigbadman-lab/onesol/internal/device"
	"github.com/bigbadman-lab/onesol/internal/interfaces"
	"github.com/bigbadman-lab/onesol/internal/leaderboard"
	"github.com/bigbadman-lab/onesol/internal/logger"
	"github.com/bigbadman-lab/onesol/internal/types"
)

// runSettings is the `onesol settings` flow: consent, profile, reminders,
// data deletion.
func runSettings(ctx context.Context, in *bufio.Scanner, kv interfaces.KeyValue, lb *leaderboard.Client) {
	ok, err := device.HasConsent(ctx, kv)
	if err != nil {
		fmt.Println("Could not read settings:", err)
		return
	}
	if !ok {
		fmt.Println("Leaderboard participation is currently off.")
		if !promptYesNo(in, "Opt in? [y/N]: ") {
			return
		}
		if err := device.GrantConsent(ctx, kv); err != nil {
			fmt.Println("Could not record consent:", err)
			return
		}
	}

	ident, err := device.EnsureIdentity(ctx, kv)
	if err != nil {
		fmt.Println("Could not load identity:", err)
		return
	}
	fmt.Println("Device name:", ident.FriendlyName)

	if lb != nil {
		editProfile(ctx, in, kv, lb, ident)
	}

	notify, err := device.NotificationsEnabled(ctx, kv)
	if err == nil {
		state := "off"
		if notify {
			state = "on"
		}
		fmt.Printf("Daily reminders are %s.\n", state)
		if promptYesNo(in, "Toggle reminders? [y/N]: ") {
			if err := device.SetNotificationsEnabled(ctx, kv, !notify); err != nil {
				fmt.Println("Could not save preference:", err)
			}
		}
	}

	if promptYesNo(in, "Delete all your data (scores, profile, identity)? [y/N]: ") {
		deleteEverything(ctx, kv, lb, ident)
	}
}

func editProfile(ctx context.Context, in *bufio.Scanner, kv interfaces.KeyValue, lb *leaderboard.Client, ident *device.Identity) {
	profile, err := lb.Profile(ctx, ident.UUID)
	if err != nil {
		logger.Warn(ctx, "Failed to fetch profile", "error", err)
		profile = &types.Profile{UUID: ident.UUID}
	}
	if profile.Nickname != "" {
		fmt.Println("Nickname:", profile.Nickname)
	}
	if profile.Email != "" {
		fmt.Println("Email:", profile.Email)
	}

	nickname := promptLine(in, "New nickname (enter to keep): ")
	email := promptLine(in, "New email (enter to keep): ")
	if nickname == "" && email == "" {
		return
	}

	err = lb.SaveProfile(ctx, types.Profile{UUID: ident.UUID, Nickname: nickname, Email: email})
	if errors.Is(err, leaderboard.ErrInvalidEmail) {
		fmt.Println("That email was rejected; nothing saved.")
		return
	}
	if err != nil {
		fmt.Println("Could not save profile:", err)
		return
	}
	if email != "" {
		if err := kv.Set(ctx, device.EmailKey, email); err != nil {
			logger.Warn(ctx, "Failed to store email locally", "error", err)
		}
	}
	fmt.Println("Profile saved.")
}

func deleteEverything(ctx context.Context, kv interfaces.KeyValue, lb *leaderboard.Client, ident *device.Identity) {
	if lb != nil {
		if err := lb.DeleteUser(ctx, ident.UUID); err != nil {
			fmt.Println("Could not delete server-side data:", err)
			return
		}
	}
	if err := device.RevokeConsent(ctx, kv); err != nil {
		fmt.Println("Could not clear local identity:", err)
		return
	}
	fmt.Println("All data deleted.")
}

func promptLine(in *bufio.Scanner, prompt string) string {
	fmt.Print(prompt)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

func promptYesNo(in *bufio.Scanner, prompt string) bool {
	fmt.Print(prompt)
	if !in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(in.Text()))
	return answer == "y" || answer == "yes"
}
