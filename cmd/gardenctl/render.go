package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/osse101/idlegarden/internal/cooldown"
	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/growth"
	"github.com/osse101/idlegarden/internal/reconcile"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	readyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	growingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("2")).Padding(0, 1)

	titleCase = cases.Title(language.English)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Fprintln(os.Stderr, msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

// displayName turns ids like "growth_boost" into "Growth Boost"
func displayName(id string) string {
	return titleCase.String(strings.ReplaceAll(id, "_", " "))
}

func progressBar(progress float64, width int) string {
	if width <= 0 {
		return ""
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func formatRemaining(seconds int64) string {
	if seconds <= 0 {
		return "ready"
	}
	return (time.Duration(seconds) * time.Second).String()
}

// catalogNames maps plant type ids to their display names
func catalogNames(catalog []domain.PlantTypeDef) map[string]string {
	names := make(map[string]string, len(catalog))
	for _, def := range catalog {
		name := def.Name
		if name == "" {
			name = displayName(def.ID)
		}
		names[def.ID] = name
	}
	return names
}

func plotLine(plot domain.PlotState, st growth.Status, names map[string]string) string {
	label := fmt.Sprintf("Plot %d", plot.PlotID)
	switch {
	case !plot.Unlocked:
		return dimStyle.Render(label + "  locked")
	case plot.IsEmpty():
		return dimStyle.Render(label + "  empty")
	}

	name := names[*plot.PlantTypeID]
	if name == "" {
		name = displayName(*plot.PlantTypeID)
	}
	bar := progressBar(st.Progress, ProgressBarWidth)
	if st.Ready {
		return readyStyle.Render(fmt.Sprintf("%s  %-12s %s ready", label, name, bar))
	}
	return growingStyle.Render(fmt.Sprintf("%s  %-12s %s %s", label, name, bar, formatRemaining(st.RemainingSeconds)))
}

func cooldownLine(st domain.CooldownState) string {
	name := displayName(st.RewardType)
	quota := fmt.Sprintf("%d/%d today", st.DailyCount, st.MaxDaily)
	if st.Available {
		return readyStyle.Render(fmt.Sprintf("%-13s available  %s", name, quota))
	}
	if st.DailyLimitReached() {
		return dimStyle.Render(fmt.Sprintf("%-13s exhausted  %s, resets in %s", name, quota, formatRemaining(st.TimeUntilNextSeconds)))
	}
	return growingStyle.Render(fmt.Sprintf("%-13s cooling    %s, next in %s", name, quota, formatRemaining(st.TimeUntilNextSeconds)))
}

func balanceLine(d reconcile.Display) string {
	line := fmt.Sprintf("Coins %d   Gems %d", d.Coins, d.Gems)
	if d.PendingCoins != 0 {
		line += dimStyle.Render(fmt.Sprintf("   (%+d pending)", d.PendingCoins))
	}
	return line
}

func multiplierLine(m domain.MultiplierSet) string {
	return fmt.Sprintf("Harvest x%.2f  Growth x%.2f  Exp x%.2f  Cost x%.2f  Gem %.0f%%",
		m.Harvest, m.Growth, m.Exp, m.PlantCostReduction, m.GemChance*100)
}

// gardenView is the state command's output
type gardenView struct {
	Snapshot    *domain.GardenSnapshot `json:"snapshot"`
	Display     reconcile.Display      `json:"display"`
	Multipliers domain.MultiplierSet   `json:"multipliers"`
	Plots       []growth.Status        `json:"plots"`
	Cooldowns   []domain.CooldownState `json:"cooldowns"`
}

func renderGarden(w io.Writer, v gardenView) {
	econ := v.Snapshot.Economy
	names := catalogNames(v.Snapshot.Catalog)

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s's garden", econ.UserID)))
	b.WriteString("\n")
	b.WriteString(balanceLine(v.Display))
	b.WriteString(fmt.Sprintf("\nLevel %d   Exp %d   Harvests %d", econ.Level, econ.Experience, econ.HarvestCount))
	if v.Snapshot.Tier != nil {
		b.WriteString(fmt.Sprintf("   Tier %s", displayName(v.Snapshot.Tier.Name)))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(multiplierLine(v.Multipliers)))
	b.WriteString("\n")

	statuses := make(map[int]growth.Status, len(v.Plots))
	for _, st := range v.Plots {
		statuses[st.PlotID] = st
	}
	for _, plot := range v.Snapshot.Plots {
		b.WriteString("\n")
		b.WriteString(plotLine(plot, statuses[plot.PlotID], names))
	}
	if len(v.Cooldowns) > 0 {
		b.WriteString("\n")
		for _, st := range v.Cooldowns {
			b.WriteString("\n")
			b.WriteString(cooldownLine(st))
		}
	}

	fmt.Fprintln(w, panelStyle.Render(b.String()))
}

// describeError adds a recovery hint for the failure classes a player can act on
func describeError(err error) string {
	var onCooldown cooldown.ErrOnCooldown
	if errors.As(err, &onCooldown) {
		return fmt.Sprintf("%s is cooling down, try again in %s", displayName(onCooldown.RewardType), onCooldown.Remaining.Truncate(time.Second))
	}
	var quota cooldown.ErrQuotaExceeded
	if errors.As(err, &quota) {
		return fmt.Sprintf("%s limit reached (%d/%d), resets in %s", displayName(quota.RewardType), quota.DailyCount, quota.MaxDaily, quota.TimeUntilNext.Truncate(time.Second))
	}

	switch domain.KindOf(err) {
	case domain.KindConcurrencyConflict:
		return fmt.Sprintf("%v (garden changed elsewhere, run state and retry)", err)
	case domain.KindCostMismatch:
		return fmt.Sprintf("%v (prices changed, state reloaded)", err)
	case domain.KindAuthorityUnavailable:
		return fmt.Sprintf("%v (server unreachable, the change may still land)", err)
	default:
		return err.Error()
	}
}
